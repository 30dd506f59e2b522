// internal/simulator/simulator.go
package simulator

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/goldium-io/gold-core/internal/events"
	"github.com/goldium-io/gold-core/internal/ledger"
	"go.uber.org/zap"
)

// DefaultBridgeDelay: через сколько pending-бридж считается завершённым.
const DefaultBridgeDelay = 10 * time.Second

// Simulator: swap, ликвидность, бридж и фаусет поверх симулированного леджера.
type Simulator struct {
	ledger      *ledger.Ledger
	bus         events.Publisher
	logger      *zap.Logger
	bridgeDelay time.Duration
	now         func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

type Option func(*Simulator)

func WithPublisher(p events.Publisher) Option {
	return func(s *Simulator) { s.bus = p }
}

func WithBridgeDelay(d time.Duration) Option {
	return func(s *Simulator) { s.bridgeDelay = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

func New(l *ledger.Ledger, logger *zap.Logger, opts ...Option) *Simulator {
	s := &Simulator{
		ledger:      l,
		bus:         events.NopPublisher{},
		logger:      logger.Named("simulator"),
		bridgeDelay: DefaultBridgeDelay,
		now:         l.Now,
		timers:      make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close останавливает отложенные завершения бриджей. Незавершённые записи
// остаются pending и будут подобраны SweepBridges.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func validAmount(amount float64) bool {
	return amount > 0 && !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
