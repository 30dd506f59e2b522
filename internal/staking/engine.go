// internal/staking/engine.go
package staking

import (
	"context"
	"math"
	"time"

	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/goldium-io/gold-core/internal/ledger"
	"go.uber.org/zap"
)

const (
	// DefaultAPY: годовая доходность в процентах.
	DefaultAPY = 15.0
	// LockPeriod: блокировка после первого стейка.
	LockPeriod = 7 * 24 * time.Hour

	secondsPerDay = 86400.0
	// dust ниже этого порога считается нулём
	dust = 1e-9
)

// Engine: стейкинг поверх симулированного леджера.
type Engine struct {
	ledger     *ledger.Ledger
	logger     *zap.Logger
	apy        float64
	lockPeriod time.Duration
	now        func() time.Time
}

type Option func(*Engine)

func WithAPY(percent float64) Option {
	return func(e *Engine) { e.apy = percent }
}

func WithLockPeriod(d time.Duration) Option {
	return func(e *Engine) { e.lockPeriod = d }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(l *ledger.Ledger, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		ledger:     l,
		logger:     logger.Named("staking"),
		apy:        DefaultAPY,
		lockPeriod: LockPeriod,
		now:        l.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// APY возвращает текущую годовую ставку в процентах.
func (e *Engine) APY() float64 {
	return e.apy
}

// PendingReward считает награду непрерывно: staked * apy/100/365 * дни.
func PendingReward(staked, apyPercent float64, elapsed time.Duration) float64 {
	if staked <= 0 || elapsed <= 0 {
		return 0
	}
	days := elapsed.Seconds() / secondsPerDay
	return staked * (apyPercent / 100 / 365) * days
}

func validAmount(amount float64) bool {
	return amount > 0 && !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// Stake переводит GOLD в стейк. Время старта и блокировки ставится только при переходе 0 -> >0.
func (e *Engine) Stake(ctx context.Context, owner string, amount float64) (domain.Result, error) {
	return e.ledger.Update(ctx, owner, "stake", func(s *ledger.WalletState) domain.Result {
		if !validAmount(amount) {
			return domain.Fail(domain.KindInvalidAmount, "stake amount must be greater than zero")
		}
		if s.GoldBalance < amount {
			return domain.Insufficient("GOLD", amount, s.GoldBalance)
		}

		now := e.now().Unix()
		if s.StakedAmount <= 0 {
			s.StakeStartTime = now
			s.StakeLockStart = now
		}
		s.GoldBalance -= amount
		s.StakedAmount += amount

		return domain.Ok("staked "+domain.FormatAmount(amount)+" GOLD", map[string]interface{}{
			"stakedAmount": s.StakedAmount,
			"goldBalance":  s.GoldBalance,
		})
	})
}

// Unstake возвращает GOLD из стейка; запрещено, пока идёт блокировка.
func (e *Engine) Unstake(ctx context.Context, owner string, amount float64) (domain.Result, error) {
	return e.ledger.Update(ctx, owner, "unstake", func(s *ledger.WalletState) domain.Result {
		if !validAmount(amount) {
			return domain.Fail(domain.KindInvalidAmount, "unstake amount must be greater than zero")
		}
		if s.StakedAmount <= 0 {
			return domain.Fail(domain.KindNoPosition, "no staked GOLD to unstake")
		}
		if remaining := e.lockRemaining(s); remaining > 0 {
			return domain.Fail(domain.KindLockActive,
				"tokens are locked for another %s", domain.FormatDuration(remaining))
		}
		if s.StakedAmount < amount {
			return domain.Insufficient("staked GOLD", amount, s.StakedAmount)
		}

		s.StakedAmount -= amount
		s.GoldBalance += amount
		if s.StakedAmount < dust {
			s.StakedAmount = 0
			s.StakeStartTime = 0
			s.StakeLockStart = 0
		}

		return domain.Ok("unstaked "+domain.FormatAmount(amount)+" GOLD", map[string]interface{}{
			"stakedAmount": s.StakedAmount,
			"goldBalance":  s.GoldBalance,
		})
	})
}

// ClaimRewards начисляет накопленную награду и сбрасывает точку отсчёта награды.
// Блокировка при этом не продлевается.
func (e *Engine) ClaimRewards(ctx context.Context, owner string) (domain.Result, error) {
	return e.ledger.Update(ctx, owner, "claim_rewards", func(s *ledger.WalletState) domain.Result {
		if s.StakedAmount <= 0 {
			return domain.Fail(domain.KindNoPosition, "no staked GOLD, nothing to claim")
		}

		now := e.now()
		reward := PendingReward(s.StakedAmount, e.apy, e.elapsed(s.StakeStartTime, now))
		s.GoldBalance += reward
		s.StakeStartTime = now.Unix()
		if s.StakeLockStart == 0 {
			s.StakeLockStart = s.StakeStartTime
		}

		e.logger.Debug("rewards claimed",
			zap.String("owner", owner),
			zap.Float64("reward", reward))
		return domain.Ok("claimed "+domain.FormatAmount(reward)+" GOLD", map[string]interface{}{
			"reward":      reward,
			"goldBalance": s.GoldBalance,
		})
	})
}

// Position возвращает текущее состояние стейка с наградой, посчитанной на момент чтения.
func (e *Engine) Position(ctx context.Context, owner string) (domain.StakePosition, error) {
	s, err := e.ledger.Load(ctx, owner)
	if err != nil {
		return domain.StakePosition{}, err
	}

	pos := domain.StakePosition{
		Owner:        owner,
		StakedAmount: s.StakedAmount,
		StakeStart:   s.StakeStartTime,
		LockStart:    lockAnchor(&s),
		APYPercent:   e.apy,
		LockPeriod:   e.lockPeriod,
		State:        domain.StateUnstaked,
	}
	if s.StakedAmount <= 0 {
		return pos, nil
	}

	pos.PendingReward = PendingReward(s.StakedAmount, e.apy, e.elapsed(s.StakeStartTime, e.now()))
	pos.LockRemaining = e.lockRemaining(&s)
	if pos.LockRemaining > 0 {
		pos.State = domain.StateStakedLocked
	} else {
		pos.State = domain.StateStakedUnlockable
	}
	return pos, nil
}

func (e *Engine) elapsed(startUnix int64, now time.Time) time.Duration {
	if startUnix == 0 {
		return 0
	}
	return now.Sub(time.Unix(startUnix, 0))
}

func (e *Engine) lockRemaining(s *ledger.WalletState) time.Duration {
	start := lockAnchor(s)
	if start == 0 {
		return 0
	}
	remaining := e.lockPeriod - e.elapsed(start, e.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// lockAnchor: записи без stakeLockStart блокируются от stakeStartTime.
func lockAnchor(s *ledger.WalletState) int64 {
	if s.StakeLockStart != 0 {
		return s.StakeLockStart
	}
	return s.StakeStartTime
}
