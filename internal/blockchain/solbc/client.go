// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/goldium-io/gold-core/internal/blockchain"
	"go.uber.org/zap"
)

const (
	defaultConfirmTimeout = 30 * time.Second
	defaultPollInterval   = 500 * time.Millisecond
)

// Observer получает длительность и исход каждого RPC-вызова (метрики).
type Observer interface {
	ObserveRPC(method, endpoint string, d time.Duration, err error)
}

// Option настраивает Client.
type Option func(*Client)

// WithObserver подключает сборщик метрик.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithConfirmTimeout задаёт предельное время ожидания подтверждения транзакции.
func WithConfirmTimeout(d time.Duration) Option {
	return func(c *Client) { c.confirmTimeout = d }
}

// WithPollInterval задаёт интервал опроса статуса подписи.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// Client: тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
type Client struct {
	rpc            *rpc.Client
	endpoint       string
	logger         *zap.Logger
	observer       Observer
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
func NewClient(rpcURL string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		rpc:            rpc.New(rpcURL),
		endpoint:       rpcURL,
		logger:         logger.Named("solbc-client"),
		confirmTimeout: defaultConfirmTimeout,
		pollInterval:   defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint возвращает URL узла.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) observe(method string, start time.Time, err error) {
	if c.observer != nil {
		c.observer.ObserveRPC(method, c.endpoint, time.Since(start), err)
	}
}

// wrap классифицирует ошибку узла и добавляет контекст вызова.
func (c *Client) wrap(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		err = fmt.Errorf("%w: %w", blockchain.ErrTimeout, err)
	case strings.Contains(err.Error(), "429"), strings.Contains(strings.ToLower(err.Error()), "too many requests"):
		err = fmt.Errorf("%w: %w", blockchain.ErrRateLimit, err)
	}
	return blockchain.NewError(err, c.endpoint, method)
}

// GetRecentBlockhash получает последний blockhash с использованием стандартного метода solana-go.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	start := time.Now()
	result, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	c.observe("getLatestBlockhash", start, err)
	if err != nil {
		c.logger.Error("GetRecentBlockhash error", zap.Error(err))
		return solana.Hash{}, c.wrap(ctx, "getLatestBlockhash", err)
	}
	return result.Value.Blockhash, nil
}

// SendTransaction отправляет транзакцию.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	start := time.Now()
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	c.observe("sendTransaction", start, err)
	if err != nil {
		c.logger.Error("SendTransaction error", zap.Error(err))
		return solana.Signature{}, c.wrap(ctx, "sendTransaction", err)
	}
	return sig, nil
}

// GetAccountInfo получает информацию об аккаунте на заданном уровне commitment.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetAccountInfoResult, error) {
	start := time.Now()
	result, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
		Commitment: commitment,
		Encoding:   solana.EncodingBase64,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		c.observe("getAccountInfo", start, nil)
		return nil, blockchain.ErrAccountNotFound
	}
	c.observe("getAccountInfo", start, err)
	if err != nil {
		c.logger.Debug("GetAccountInfo error",
			zap.String("pubkey", pubkey.String()),
			zap.String("commitment", string(commitment)),
			zap.Error(err))
		return nil, c.wrap(ctx, "getAccountInfo", err)
	}
	if result == nil || result.Value == nil {
		return nil, blockchain.ErrAccountNotFound
	}
	return result, nil
}

// GetProgramAccountsWithOpts получает все аккаунты программы с опциями фильтрации
func (c *Client) GetProgramAccountsWithOpts(
	ctx context.Context,
	programID solana.PublicKey,
	opts *rpc.GetProgramAccountsOpts,
) (rpc.GetProgramAccountsResult, error) {
	start := time.Now()
	accounts, err := c.rpc.GetProgramAccountsWithOpts(ctx, programID, opts)
	c.observe("getProgramAccounts", start, err)
	if err != nil {
		c.logger.Debug("GetProgramAccountsWithOpts error",
			zap.String("program_id", programID.String()),
			zap.Error(err))
		return nil, c.wrap(ctx, "getProgramAccounts", err)
	}
	return accounts, nil
}

// GetSignatureStatuses получает статусы транзакций.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	start := time.Now()
	result, err := c.rpc.GetSignatureStatuses(ctx, false, signatures...)
	c.observe("getSignatureStatuses", start, err)
	if err != nil {
		c.logger.Error("GetSignatureStatuses error", zap.Error(err))
		return nil, c.wrap(ctx, "getSignatureStatuses", err)
	}
	return result, nil
}

// GetBalance получает баланс аккаунта.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	start := time.Now()
	result, err := c.rpc.GetBalance(ctx, pubkey, commitment)
	c.observe("getBalance", start, err)
	if err != nil {
		c.logger.Debug("GetBalance error",
			zap.String("pubkey", pubkey.String()),
			zap.String("commitment", string(commitment)),
			zap.Error(err))
		return 0, c.wrap(ctx, "getBalance", err)
	}
	return result.Value, nil
}

// WaitForTransactionConfirmation ожидает подтверждения транзакции (с простым polling‑механизмом).
// Finalized удовлетворяет любому запрошенному уровню, confirmed: всем, кроме finalized.
func (c *Client) WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	timeout := time.After(c.confirmTimeout)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("%w: confirmation of %s", blockchain.ErrTimeout, signature)
		case <-ticker.C:
			statuses, err := c.GetSignatureStatuses(ctx, signature)
			if err != nil {
				c.logger.Warn("Error getting signature statuses", zap.Error(err))
				continue
			}
			if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
				continue
			}
			status := statuses.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %s: %v", blockchain.ErrTransactionFailed, signature, status.Err)
			}
			if reached(status.ConfirmationStatus, commitment) {
				return nil
			}
		}
	}
}

func reached(got rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	switch got {
	case rpc.ConfirmationStatusFinalized:
		return true
	case rpc.ConfirmationStatusConfirmed:
		return want != rpc.CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		return want == rpc.CommitmentProcessed
	}
	return false
}

// Гарантируем, что Client реализует интерфейс blockchain.Client.
var _ blockchain.Client = (*Client)(nil)
