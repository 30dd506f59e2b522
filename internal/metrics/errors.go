package metrics

import (
	"context"
	"errors"

	"github.com/goldium-io/gold-core/internal/blockchain"
)

// errorReason сводит ошибку RPC к метке с ограниченным набором значений.
func errorReason(err error) string {
	switch {
	case errors.Is(err, blockchain.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, blockchain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, blockchain.ErrRateLimit):
		return "rate_limit"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, blockchain.ErrTransactionFailed):
		return "tx_failed"
	default:
		return "other"
	}
}
