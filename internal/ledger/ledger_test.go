package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/goldium-io/gold-core/internal/events"
	"github.com/goldium-io/gold-core/internal/ledger"
	"github.com/goldium-io/gold-core/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const alice = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

func newLedger(t *testing.T, opts ...ledger.Option) (*ledger.Ledger, *memory.Store) {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { _ = store.Close() })
	return ledger.New(store, zap.NewNop(), opts...), store
}

func TestInitializeTestEnvironment(t *testing.T) {
	ctx := context.Background()
	l, store := newLedger(t)

	require.NoError(t, l.InitializeTestEnvironment(ctx, alice))
	b, err := l.GetUserBalances(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.Balances{GOLD: 1000, SOL: 10}, b)

	// повторная инициализация не трогает существующие значения
	require.NoError(t, store.Set(ctx, ledger.Key(alice, ledger.FieldGoldBalance), "42"))
	require.NoError(t, l.InitializeTestEnvironment(ctx, alice))
	b, err = l.GetUserBalances(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 42.0, b.GOLD)

	hist, err := l.BridgeHistory(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestResetTestEnvironment(t *testing.T) {
	ctx := context.Background()
	l, store := newLedger(t)

	require.NoError(t, store.Set(ctx, ledger.Key(alice, ledger.FieldGoldBalance), "5"))
	require.NoError(t, store.Set(ctx, ledger.Key(alice, ledger.FieldStakeStartTime), "1700000000"))
	require.NoError(t, store.Set(ctx, ledger.Key("bob", ledger.FieldGoldBalance), "7"))

	require.NoError(t, l.ResetTestEnvironment(ctx, alice))

	st, err := l.Load(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, st.GoldBalance)
	assert.Zero(t, st.StakeStartTime)

	v, ok, err := store.Get(ctx, ledger.Key("bob", ledger.FieldGoldBalance))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "7", v)
}

func TestGetUserBalancesUnknownOwner(t *testing.T) {
	l, _ := newLedger(t)
	b, err := l.GetUserBalances(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, domain.Balances{}, b)
}

func TestUpdateRejectedWritesNothing(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	l, store := newLedger(t, ledger.WithPublisher(rec))
	require.NoError(t, l.InitializeTestEnvironment(ctx, alice))

	res, err := l.Update(ctx, alice, "swap", func(s *ledger.WalletState) domain.Result {
		s.GoldBalance = 0
		return domain.Insufficient("GOLD", 2000, 1000)
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, domain.KindInsufficientBalance, res.Kind)

	v, _, err := store.Get(ctx, ledger.Key(alice, ledger.FieldGoldBalance))
	require.NoError(t, err)
	assert.Equal(t, "1000", v)

	failed := rec.ofType(events.OperationFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "swap", failed[0].(events.OperationFailedEvent).Operation)
	assert.Empty(t, rec.ofType(events.BalanceChanged))
}

func TestUpdateCommitsAndPublishes(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	now := time.Unix(1_700_000_000, 0)
	l, store := newLedger(t, ledger.WithPublisher(rec), ledger.WithClock(func() time.Time { return now }))
	require.NoError(t, l.InitializeTestEnvironment(ctx, alice))

	res, err := l.Update(ctx, alice, "stake", func(s *ledger.WalletState) domain.Result {
		s.GoldBalance -= 100
		s.StakedAmount += 100
		s.StakeStartTime = l.Now().Unix()
		return domain.Ok("staked", nil)
	})
	require.NoError(t, err)
	assert.True(t, res.Success)

	v, _, _ := store.Get(ctx, ledger.Key(alice, ledger.FieldStakedAmount))
	assert.Equal(t, "100", v)
	v, _, _ = store.Get(ctx, ledger.Key(alice, ledger.FieldStakeStartTime))
	assert.Equal(t, "1700000000", v)

	changed := rec.ofType(events.BalanceChanged)
	require.Len(t, changed, 2)
	first := changed[0].(events.BalanceChangedEvent)
	assert.Equal(t, ledger.FieldGoldBalance, first.Field)
	assert.Equal(t, -100.0, first.Delta())
	assert.Len(t, rec.ofType(events.OperationCompleted), 1)

	// обнуление времени удаляет ключ
	_, err = l.Update(ctx, alice, "unstake", func(s *ledger.WalletState) domain.Result {
		s.StakeStartTime = 0
		return domain.Ok("done", nil)
	})
	require.NoError(t, err)
	_, ok, _ := store.Get(ctx, ledger.Key(alice, ledger.FieldStakeStartTime))
	assert.False(t, ok)
}

func TestUpdateConcurrentNoLostWrites(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t)
	require.NoError(t, l.InitializeTestEnvironment(ctx, alice))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Update(ctx, alice, "inc", func(s *ledger.WalletState) domain.Result {
				s.GoldBalance++
				return domain.Ok("", nil)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	b, err := l.GetUserBalances(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1000.0+n, b.GOLD)
}

func TestUpdateCancelledWhileWaiting(t *testing.T) {
	l, _ := newLedger(t)
	hold := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_, _ = l.Update(context.Background(), alice, "slow", func(*ledger.WalletState) domain.Result {
			close(started)
			<-hold
			return domain.Ok("", nil)
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := l.Update(ctx, alice, "blocked", func(*ledger.WalletState) domain.Result {
		return domain.Ok("", nil)
	})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	close(hold)
}

func TestMalformedValuesReadAsZero(t *testing.T) {
	ctx := context.Background()
	l, store := newLedger(t)
	require.NoError(t, store.Set(ctx, ledger.Key(alice, ledger.FieldGoldBalance), "abc"))
	require.NoError(t, store.Set(ctx, ledger.Key(alice, ledger.FieldLastClaimTime), "yesterday"))
	require.NoError(t, store.Set(ctx, ledger.Key(alice, ledger.FieldBridgeHistory), "{oops"))

	st, err := l.Load(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, st.GoldBalance)
	assert.Zero(t, st.LastClaimTime)
	assert.Empty(t, st.BridgeHistory)
}

func TestBridgeHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t)

	rec := domain.BridgeRecord{ID: "r1", SourceNetwork: "solana", TargetNetwork: "ethereum", Amount: 5, Status: domain.BridgePending, Timestamp: 1}
	_, err := l.Update(ctx, alice, "bridge", func(s *ledger.WalletState) domain.Result {
		s.BridgeHistory = append(s.BridgeHistory, rec)
		return domain.Ok("", nil)
	})
	require.NoError(t, err)

	hist, err := l.BridgeHistory(ctx, alice)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, rec, hist[0])
}

func TestOwners(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger(t)
	require.NoError(t, l.InitializeTestEnvironment(ctx, "carol"))
	require.NoError(t, l.InitializeTestEnvironment(ctx, alice))

	owners, err := l.Owners(ctx, ledger.FieldBridgeHistory)
	require.NoError(t, err)
	assert.Equal(t, []string{alice, "carol"}, owners)
}

func TestSplitKey(t *testing.T) {
	owner, field, ok := ledger.SplitKey(ledger.Key(alice, ledger.FieldLPTokens))
	require.True(t, ok)
	assert.Equal(t, alice, owner)
	assert.Equal(t, ledger.FieldLPTokens, field)

	for _, bad := range []string{"", "nounderscore", "_field", "owner_"} {
		_, _, ok := ledger.SplitKey(bad)
		assert.False(t, ok, bad)
	}
}
