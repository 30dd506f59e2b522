// internal/ledger/store.go
package ledger

import (
	"context"
	"errors"
)

// ErrStoreClosed возвращается хранилищем после Close.
var ErrStoreClosed = errors.New("ledger store closed")

// OpKind: тип операции в транзакции хранилища.
type OpKind int

const (
	OpSet OpKind = iota
	OpDelete
)

// Op is one write inside Store.Transaction.
type Op struct {
	Kind  OpKind
	Key   string
	Value string
}

// SetOp строит операцию записи.
func SetOp(key, value string) Op {
	return Op{Kind: OpSet, Key: key, Value: value}
}

// DeleteOp строит операцию удаления.
func DeleteOp(key string) Op {
	return Op{Kind: OpDelete, Key: key}
}

// Store: персистентное key-value хранилище симулированного леджера.
// Transaction применяет все операции атомарно: либо все, либо ни одной.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Transaction(ctx context.Context, ops []Op) error
	Close() error
}
