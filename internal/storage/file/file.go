// internal/storage/file/file.go
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goldium-io/gold-core/internal/ledger"
	"go.uber.org/zap"
)

// Store хранит леджер одним JSON-объектом на диске.
// Каждая запись перезаписывает файл через временный файл и rename,
// поэтому после сбоя на диске остаётся либо старое, либо новое состояние.
type Store struct {
	mu     sync.RWMutex
	path   string
	data   map[string]string
	logger *zap.Logger
	closed bool
}

// Open загружает файл, если он существует, иначе начинает с пустого состояния.
func Open(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		data:   make(map[string]string),
		logger: logger.Named("file-store"),
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("read ledger file: %w", err)
	case len(raw) > 0:
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("decode ledger file %s: %w", path, err)
		}
	}

	s.logger.Info("ledger file opened",
		zap.String("path", path),
		zap.Int("keys", len(s.data)))
	return s, nil
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

// Transaction применяет операции к копии, сохраняет её и только затем подменяет состояние.
func (s *Store) Transaction(ctx context.Context, ops []ledger.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ledger.ErrStoreClosed
	}

	next := make(map[string]string, len(s.data)+len(ops))
	for k, v := range s.data {
		next[k] = v
	}
	for _, op := range ops {
		switch op.Kind {
		case ledger.OpSet:
			next[op.Key] = op.Value
		case ledger.OpDelete:
			delete(next, op.Key)
		}
	}

	if err := s.persist(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

func (s *Store) persist(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after successful rename

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ ledger.Store = (*Store)(nil)
