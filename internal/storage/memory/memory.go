// internal/storage/memory/memory.go
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/goldium-io/gold-core/internal/ledger"
)

// Store: ledger.Store в памяти процесса.
type Store struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

func New() *Store {
	return &Store{data: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ledger.ErrStoreClosed
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.Transaction(ctx, []ledger.Op{ledger.SetOp(key, value)})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.Transaction(ctx, []ledger.Op{ledger.DeleteOp(key)})
}

func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ledger.ErrStoreClosed
	}
	keys := make([]string, 0)
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Transaction применяет операции под одной блокировкой записи.
func (s *Store) Transaction(ctx context.Context, ops []ledger.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ledger.ErrStoreClosed
	}
	apply(s.data, ops)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func apply(data map[string]string, ops []ledger.Op) {
	for _, op := range ops {
		switch op.Kind {
		case ledger.OpSet:
			data[op.Key] = op.Value
		case ledger.OpDelete:
			delete(data, op.Key)
		}
	}
}

var _ ledger.Store = (*Store)(nil)
