// internal/transfer/builder.go
package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/goldium-io/gold-core/internal/blockchain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrWalletNotConnected   = errors.New("wallet not connected")
	ErrSenderAccountMissing = errors.New("you don't have a token account for this token")
	ErrInvalidAmount        = errors.New("invalid amount")
)

// Signer: адаптер кошелька. Ключи не покидают реализацию.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
	SignAllTransactions(ctx context.Context, txs []*solana.Transaction) error
}

// Chain is the part of the RPC client the builder needs.
type Chain interface {
	blockchain.Reader
	blockchain.Submitter
}

// Recorder получает исход каждой отправки (метрики).
type Recorder interface {
	RecordTransfer(kind string, d time.Duration, err error)
}

type Option func(*Builder)

// WithBackOff подменяет стратегию повторов отправки.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(b *Builder) { b.newBackOff = newBackOff }
}

func WithMaxElapsed(d time.Duration) Option {
	return func(b *Builder) { b.maxElapsed = d }
}

func WithRecorder(r Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// Builder строит, подписывает и отправляет SPL/SOL транзакции.
type Builder struct {
	client     Chain
	logger     *zap.Logger
	group      singleflight.Group
	newBackOff func() backoff.BackOff
	maxElapsed time.Duration
	recorder   Recorder
}

func NewBuilder(client Chain, logger *zap.Logger, opts ...Option) *Builder {
	b := &Builder{
		client: client,
		logger: logger.Named("transfer"),
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		maxElapsed: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// accountExists различает "нет аккаунта" и ошибку чтения.
func (b *Builder) accountExists(ctx context.Context, addr solana.PublicKey) (bool, error) {
	_, err := b.client.GetAccountInfo(ctx, addr, rpc.CommitmentConfirmed)
	switch {
	case err == nil:
		return true, nil
	case blockchain.IsAccountNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("check account %s: %w", addr, err)
	}
}

// submit строит транзакцию, подписывает и отправляет её с повторами.
func (b *Builder) submit(ctx context.Context, signer Signer, kind string, instructions []solana.Instruction) (solana.Signature, error) {
	start := time.Now()
	op := func() (solana.Signature, error) {
		tx, err := b.createSignedTransaction(ctx, signer, instructions)
		if err != nil {
			return solana.Signature{}, err
		}
		return b.submitAndConfirmTransaction(ctx, tx)
	}

	sig, err := backoff.Retry(
		ctx,
		op,
		backoff.WithBackOff(b.newBackOff()),
		backoff.WithMaxElapsedTime(b.maxElapsed),
	)
	if b.recorder != nil {
		b.recorder.RecordTransfer(kind, time.Since(start), err)
	}
	if err != nil {
		b.logger.Error("transaction failed",
			zap.String("kind", kind),
			zap.String("payer", signer.PublicKey().String()),
			zap.Error(err))
		return solana.Signature{}, err
	}
	b.logger.Info("transaction confirmed",
		zap.String("kind", kind),
		zap.String("signature", sig.String()),
		zap.Duration("elapsed", time.Since(start)))
	return sig, nil
}

func (b *Builder) createSignedTransaction(ctx context.Context, signer Signer, instructions []solana.Instruction) (*solana.Transaction, error) {
	blockhash, err := b.client.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to get recent blockhash: %w", err))
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(signer.PublicKey()))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create transaction: %w", err))
	}

	if err := signer.SignTransaction(ctx, tx); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to sign transaction: %w", err))
	}
	return tx, nil
}

func (b *Builder) submitAndConfirmTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := b.client.SendTransaction(ctx, tx)
	if err != nil {
		if blockchain.IsBlockhashNotFound(err) {
			b.logger.Debug("blockhash expired, rebuilding transaction", zap.Error(err))
			return solana.Signature{}, err // Временная ошибка для retry
		}
		return solana.Signature{}, backoff.Permanent(fmt.Errorf("transaction failed: %w", err))
	}

	// после успешной отправки повтор запрещён: иначе возможна двойная отправка
	if err := b.client.WaitForTransactionConfirmation(ctx, sig, rpc.CommitmentConfirmed); err != nil {
		return sig, backoff.Permanent(fmt.Errorf("transaction %s not confirmed: %w", sig, err))
	}
	return sig, nil
}
