// internal/simulator/bridge.go
package simulator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/goldium-io/gold-core/internal/events"
	"github.com/goldium-io/gold-core/internal/ledger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SourceSolana: единственная поддерживаемая сеть-источник.
const SourceSolana = "solana"

const settleTimeout = 10 * time.Second

// Bridge списывает GOLD сразу и добавляет pending-запись; завершение происходит
// через bridgeDelay по таймеру или при следующем SweepBridges.
func (s *Simulator) Bridge(ctx context.Context, owner, source, target string, amount float64) (domain.Result, error) {
	source = strings.ToLower(strings.TrimSpace(source))
	target = strings.ToLower(strings.TrimSpace(target))

	var rec domain.BridgeRecord
	res, err := s.ledger.Update(ctx, owner, "bridge", func(st *ledger.WalletState) domain.Result {
		if source != SourceSolana {
			return domain.Fail(domain.KindUnsupportedNetwork, "bridging is only supported from %s", SourceSolana)
		}
		if target == "" || target == source {
			return domain.Fail(domain.KindUnsupportedNetwork, "invalid target network %q", target)
		}
		if !validAmount(amount) {
			return domain.Fail(domain.KindInvalidAmount, "bridge amount must be greater than zero")
		}
		if st.GoldBalance < amount {
			return domain.Insufficient("GOLD", amount, st.GoldBalance)
		}

		rec = domain.BridgeRecord{
			ID:            uuid.New().String(),
			SourceNetwork: source,
			TargetNetwork: target,
			Amount:        amount,
			Status:        domain.BridgePending,
			Timestamp:     s.now().Unix(),
		}
		st.GoldBalance -= amount
		st.BridgeHistory = append(st.BridgeHistory, rec)

		return domain.Ok("bridging "+domain.FormatAmount(amount)+" GOLD to "+target,
			map[string]interface{}{"id": rec.ID, "status": string(rec.Status)})
	})
	if err != nil || !res.Success {
		return res, err
	}

	s.schedule(owner, rec.ID)
	return res, nil
}

// BridgeHistory возвращает записи бриджей кошелька.
func (s *Simulator) BridgeHistory(ctx context.Context, owner string) ([]domain.BridgeRecord, error) {
	return s.ledger.BridgeHistory(ctx, owner)
}

func (s *Simulator) schedule(owner, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.timers[id] = time.AfterFunc(s.bridgeDelay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
		defer cancel()
		if _, err := s.settle(ctx, owner, id); err != nil {
			s.logger.Warn("bridge settlement failed, left for sweeper",
				zap.String("owner", owner),
				zap.String("id", id),
				zap.Error(err))
		}
	})
}

// settle переводит pending-запись в completed. Повторный вызов ничего не меняет.
func (s *Simulator) settle(ctx context.Context, owner, id string) (bool, error) {
	var settled domain.BridgeRecord
	res, err := s.ledger.Update(ctx, owner, "bridge_settle", func(st *ledger.WalletState) domain.Result {
		for i := range st.BridgeHistory {
			r := &st.BridgeHistory[i]
			if r.ID != id {
				continue
			}
			if r.Status != domain.BridgePending {
				return domain.Fail(domain.KindNoPosition, "bridge %s already %s", id, r.Status)
			}
			r.Status = domain.BridgeCompleted
			r.CompletedAt = s.now().Unix()
			settled = *r
			return domain.Ok("bridge "+id+" completed", nil)
		}
		return domain.Fail(domain.KindNoPosition, "bridge %s not found", id)
	})
	if err != nil {
		return false, fmt.Errorf("settle bridge %s: %w", id, err)
	}
	if !res.Success {
		return false, nil
	}

	if err := s.bus.Publish(events.NewBridgeSettled(owner, settled.ID, settled.Amount, string(settled.Status))); err != nil {
		s.logger.Debug("bridge settled event dropped", zap.Error(err))
	}
	return true, nil
}

// SweepBridges завершает pending-записи старше bridgeDelay у всех кошельков.
// Возвращает число завершённых записей.
func (s *Simulator) SweepBridges(ctx context.Context) (int, error) {
	owners, err := s.ledger.Owners(ctx, ledger.FieldBridgeHistory)
	if err != nil {
		return 0, fmt.Errorf("list bridge owners: %w", err)
	}

	now := s.now()
	completed := 0
	for _, owner := range owners {
		hist, err := s.ledger.BridgeHistory(ctx, owner)
		if err != nil {
			return completed, err
		}
		for _, r := range hist {
			if r.Status != domain.BridgePending || r.Age(now) < s.bridgeDelay {
				continue
			}
			ok, err := s.settle(ctx, owner, r.ID)
			if err != nil {
				return completed, err
			}
			if ok {
				completed++
			}
		}
	}
	return completed, nil
}
