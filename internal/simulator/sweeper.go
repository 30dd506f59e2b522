// internal/simulator/sweeper.go
package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// BridgeSweeper периодически завершает зависшие бриджи (например, после рестарта).
type BridgeSweeper struct {
	sim     *Simulator
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration
}

// NewBridgeSweeper принимает стандартное cron-выражение или дескриптор вида "@every 30s".
func NewBridgeSweeper(sim *Simulator, spec string, logger *zap.Logger) (*BridgeSweeper, error) {
	s := &BridgeSweeper{
		sim:     sim,
		logger:  logger.Named("bridge-sweeper"),
		timeout: 30 * time.Second,
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *BridgeSweeper) Start() {
	s.cron.Start()
	s.logger.Info("bridge sweeper started")
}

// Stop останавливает расписание и ждёт текущий прогон или отмены ctx.
func (s *BridgeSweeper) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *BridgeSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.sim.SweepBridges(ctx)
	if err != nil {
		s.logger.Error("bridge sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("stale bridges completed", zap.Int("count", n))
	}
}
