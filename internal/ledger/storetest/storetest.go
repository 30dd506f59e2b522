// Package storetest is a conformance suite shared by ledger.Store backends.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/goldium-io/gold-core/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run прогоняет общие проверки; newStore должен возвращать пустое хранилище.
func Run(t *testing.T, newStore func(t *testing.T) ledger.Store) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, ok, err := s.Get(context.Background(), "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("SetGetDelete", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Set(ctx, "w1_goldBalance", "1000"))
		v, ok, err := s.Get(ctx, "w1_goldBalance")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "1000", v)

		require.NoError(t, s.Set(ctx, "w1_goldBalance", "900.5"))
		v, _, _ = s.Get(ctx, "w1_goldBalance")
		assert.Equal(t, "900.5", v)

		require.NoError(t, s.Delete(ctx, "w1_goldBalance"))
		_, ok, err = s.Get(ctx, "w1_goldBalance")
		require.NoError(t, err)
		assert.False(t, ok)

		// удаление отсутствующего ключа не ошибка
		require.NoError(t, s.Delete(ctx, "w1_goldBalance"))
	})

	t.Run("KeysByPrefix", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Transaction(ctx, []ledger.Op{
			ledger.SetOp("alice_goldBalance", "1"),
			ledger.SetOp("alice_solBalance", "2"),
			ledger.SetOp("bob_goldBalance", "3"),
			ledger.SetOp("alice%_x", "4"),
		}))

		keys, err := s.Keys(ctx, "alice_")
		require.NoError(t, err)
		sort.Strings(keys)
		assert.Equal(t, []string{"alice_goldBalance", "alice_solBalance"}, keys)

		all, err := s.Keys(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("TransactionAppliesAll", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "w_stakeStartTime", "100"))

		require.NoError(t, s.Transaction(ctx, []ledger.Op{
			ledger.SetOp("w_goldBalance", "0"),
			ledger.SetOp("w_stakedAmount", "1000"),
			ledger.DeleteOp("w_stakeStartTime"),
		}))

		v, _, _ := s.Get(ctx, "w_goldBalance")
		assert.Equal(t, "0", v)
		v, _, _ = s.Get(ctx, "w_stakedAmount")
		assert.Equal(t, "1000", v)
		_, ok, _ := s.Get(ctx, "w_stakeStartTime")
		assert.False(t, ok)
	})

	t.Run("TransactionLaterOpWins", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Transaction(ctx, []ledger.Op{
			ledger.DeleteOp("w_goldBalance"),
			ledger.SetOp("w_goldBalance", "1000"),
		}))
		v, ok, _ := s.Get(ctx, "w_goldBalance")
		assert.True(t, ok)
		assert.Equal(t, "1000", v)
	})

	t.Run("ConcurrentWriters", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					assert.NoError(t, s.Set(ctx, fmt.Sprintf("w%d_f%d", i, j), "1"))
				}
			}(i)
		}
		wg.Wait()

		keys, err := s.Keys(ctx, "")
		require.NoError(t, err)
		assert.Len(t, keys, 80)
	})
}
