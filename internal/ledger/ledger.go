// internal/ledger/ledger.go
package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/goldium-io/gold-core/internal/events"
	"go.uber.org/zap"
)

// Ledger: симулированное состояние кошельков поверх Store.
// Все изменения одного кошелька сериализуются; разные кошельки работают параллельно.
type Ledger struct {
	store  Store
	bus    events.Publisher
	logger *zap.Logger
	locks  *keyedMutex
	now    func() time.Time
}

type Option func(*Ledger)

// WithPublisher подключает шину событий.
func WithPublisher(p events.Publisher) Option {
	return func(l *Ledger) { l.bus = p }
}

// WithClock подменяет источник времени (тесты).
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(store Store, logger *zap.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		bus:    events.NopPublisher{},
		logger: logger.Named("ledger"),
		locks:  newKeyedMutex(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now возвращает текущее время леджера.
func (l *Ledger) Now() time.Time {
	return l.now()
}

// Load возвращает снимок состояния без блокировки.
func (l *Ledger) Load(ctx context.Context, owner string) (WalletState, error) {
	return l.load(ctx, owner)
}

// Update выполняет read-modify-write одного кошелька под его блокировкой.
// fn меняет снимок; при Success=false ничего не записывается.
// Изменённые поля фиксируются одной транзакцией хранилища.
func (l *Ledger) Update(ctx context.Context, owner, op string, fn func(*WalletState) domain.Result) (domain.Result, error) {
	if err := l.locks.Lock(ctx, owner); err != nil {
		return domain.Result{}, err
	}
	defer l.locks.Unlock(owner)

	before, err := l.load(ctx, owner)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%s: load %s: %w", op, owner, err)
	}
	after := before.clone()

	res := fn(&after)
	if !res.Success {
		l.logger.Debug("operation rejected",
			zap.String("operation", op),
			zap.String("owner", owner),
			zap.String("kind", string(res.Kind)),
			zap.String("message", res.Message))
		l.publish(events.NewOperationFailed(owner, op, string(res.Kind), res.Message))
		return res, nil
	}

	ops, changes, err := diff(&before, &after)
	if err != nil {
		return domain.Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(ops) > 0 {
		if err := l.store.Transaction(ctx, ops); err != nil {
			return domain.Result{}, fmt.Errorf("%s: commit %s: %w", op, owner, err)
		}
	}

	for _, c := range changes {
		l.publish(events.NewBalanceChanged(owner, c.field, c.old, c.new))
	}
	l.publish(events.NewOperationCompleted(owner, op, res.Message))
	l.logger.Info("operation applied",
		zap.String("operation", op),
		zap.String("owner", owner),
		zap.Int("writes", len(ops)))
	return res, nil
}

func (l *Ledger) publish(e events.Event) {
	if err := l.bus.Publish(e); err != nil {
		l.logger.Debug("event not published",
			zap.String("event_type", string(e.Type())),
			zap.Error(err))
	}
}

// InitializeTestEnvironment засевает значения по умолчанию только для отсутствующих полей.
func (l *Ledger) InitializeTestEnvironment(ctx context.Context, owner string) error {
	if err := l.locks.Lock(ctx, owner); err != nil {
		return err
	}
	defer l.locks.Unlock(owner)

	var ops []Op
	for _, d := range defaults {
		_, ok, err := l.store.Get(ctx, Key(owner, d.field))
		if err != nil {
			return fmt.Errorf("initialize %s: %w", owner, err)
		}
		if !ok {
			ops = append(ops, SetOp(Key(owner, d.field), d.value))
		}
	}
	if len(ops) == 0 {
		return nil
	}
	if err := l.store.Transaction(ctx, ops); err != nil {
		return fmt.Errorf("initialize %s: %w", owner, err)
	}
	l.logger.Info("test environment initialized",
		zap.String("owner", owner),
		zap.Int("seeded_fields", len(ops)))
	return nil
}

// ResetTestEnvironment удаляет все поля кошелька и засевает значения по умолчанию
// в одной транзакции.
func (l *Ledger) ResetTestEnvironment(ctx context.Context, owner string) error {
	if err := l.locks.Lock(ctx, owner); err != nil {
		return err
	}
	defer l.locks.Unlock(owner)

	keys, err := l.store.Keys(ctx, owner+"_")
	if err != nil {
		return fmt.Errorf("reset %s: %w", owner, err)
	}
	ops := make([]Op, 0, len(keys)+len(defaults))
	for _, k := range keys {
		ops = append(ops, DeleteOp(k))
	}
	for _, d := range defaults {
		ops = append(ops, SetOp(Key(owner, d.field), d.value))
	}
	if err := l.store.Transaction(ctx, ops); err != nil {
		return fmt.Errorf("reset %s: %w", owner, err)
	}
	l.logger.Info("test environment reset",
		zap.String("owner", owner),
		zap.Int("deleted_fields", len(keys)))
	return nil
}

// GetUserBalances: проекция балансов; отсутствующие поля дают 0.
func (l *Ledger) GetUserBalances(ctx context.Context, owner string) (domain.Balances, error) {
	st, err := l.load(ctx, owner)
	if err != nil {
		return domain.Balances{}, err
	}
	return domain.Balances{
		GOLD:   st.GoldBalance,
		SOL:    st.SOLBalance,
		LP:     st.LPTokens,
		STAKED: st.StakedAmount,
	}, nil
}

// BridgeHistory возвращает историю бриджей кошелька, новые записи последними.
func (l *Ledger) BridgeHistory(ctx context.Context, owner string) ([]domain.BridgeRecord, error) {
	st, err := l.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return st.BridgeHistory, nil
}

// Owners перечисляет кошельки, у которых задано поле field.
func (l *Ledger) Owners(ctx context.Context, field string) ([]string, error) {
	keys, err := l.store.Keys(ctx, "")
	if err != nil {
		return nil, err
	}
	var owners []string
	for _, k := range keys {
		if !strings.HasSuffix(k, "_"+field) {
			continue
		}
		if owner, _, ok := SplitKey(k); ok {
			owners = append(owners, owner)
		}
	}
	sort.Strings(owners)
	return owners, nil
}
