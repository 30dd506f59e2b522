// internal/chain/accessor.go
package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/goldium-io/gold-core/internal/blockchain"
	"github.com/goldium-io/gold-core/internal/domain"
	"go.uber.org/zap"
)

const lamportsPerSOL = 1_000_000_000

// ErrRPCUnavailable: обе попытки чтения (confirmed и processed) не удались.
var ErrRPCUnavailable = errors.New("rpc unavailable")

// Timeouts задаёт ограничения на отдельные RPC-вызовы.
type Timeouts struct {
	SolPrimary   time.Duration
	SolFallback  time.Duration
	TokenAccount time.Duration
	Mint         time.Duration
}

// DefaultTimeouts возвращает значения по умолчанию.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		SolPrimary:   10 * time.Second,
		SolFallback:  5 * time.Second,
		TokenAccount: 15 * time.Second,
		Mint:         10 * time.Second,
	}
}

// Option настраивает Accessor.
type Option func(*Accessor)

func WithTimeouts(t Timeouts) Option {
	return func(a *Accessor) { a.timeouts = t }
}

// Accessor читает SOL и SPL балансы с повтором на пониженном commitment.
type Accessor struct {
	client   blockchain.Reader
	logger   *zap.Logger
	timeouts Timeouts
}

func NewAccessor(client blockchain.Reader, logger *zap.Logger, opts ...Option) *Accessor {
	a := &Accessor{
		client:   client,
		logger:   logger.Named("chain"),
		timeouts: DefaultTimeouts(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Accessor) balance(ctx context.Context, owner solana.PublicKey, commitment rpc.CommitmentType, timeout time.Duration) (uint64, error) {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.client.GetBalance(tctx, owner, commitment)
}

// GetSolBalance возвращает баланс в SOL. При сбое на confirmed делается ровно одна
// повторная попытка на processed; если и она не удалась, возвращается исходная ошибка.
func (a *Accessor) GetSolBalance(ctx context.Context, owner solana.PublicKey) (float64, error) {
	lamports, err := a.balance(ctx, owner, rpc.CommitmentConfirmed, a.timeouts.SolPrimary)
	if err == nil {
		return lamportsToSOL(lamports), nil
	}
	if ctx.Err() != nil {
		return 0, fmt.Errorf("%w: get SOL balance of %s: %w", ErrRPCUnavailable, owner, err)
	}

	a.logger.Warn("SOL balance read failed, retrying at processed",
		zap.String("owner", owner.String()),
		zap.Error(err))

	lamports, retryErr := a.balance(ctx, owner, rpc.CommitmentProcessed, a.timeouts.SolFallback)
	if retryErr != nil {
		a.logger.Error("SOL balance unavailable",
			zap.String("owner", owner.String()),
			zap.NamedError("primary", err),
			zap.NamedError("fallback", retryErr))
		return 0, fmt.Errorf("%w: get SOL balance of %s: %w", ErrRPCUnavailable, owner, err)
	}
	return lamportsToSOL(lamports), nil
}

// GetTokenBalance возвращает баланс SPL-токена в десятичных единицах.
// Отсутствие ATA означает нулевой баланс, а не ошибку.
func (a *Accessor) GetTokenBalance(ctx context.Context, owner, mint solana.PublicKey) (float64, error) {
	bal, err := a.GetTokenBalanceRaw(ctx, owner, mint)
	return bal.UIAmount(), err
}

// GetTokenBalanceRaw как GetTokenBalance, но в базовых единицах.
func (a *Accessor) GetTokenBalanceRaw(ctx context.Context, owner, mint solana.PublicKey) (domain.TokenBalance, error) {
	bal := domain.TokenBalance{Owner: owner, Mint: mint}

	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return bal, fmt.Errorf("derive associated token account: %w", err)
	}

	raw, decimals, err := a.readTokenAccount(ctx, ata, mint, rpc.CommitmentConfirmed)
	if err == nil {
		bal.RawAmount, bal.Decimals = raw, decimals
		return bal, nil
	}
	if ctx.Err() != nil {
		return bal, fmt.Errorf("%w: token balance of %s: %w", ErrRPCUnavailable, ata, err)
	}

	a.logger.Warn("token balance read failed, retrying at processed",
		zap.String("owner", owner.String()),
		zap.String("mint", mint.String()),
		zap.Error(err))

	raw, decimals, retryErr := a.readTokenAccount(ctx, ata, mint, rpc.CommitmentProcessed)
	if retryErr != nil {
		a.logger.Error("token balance unavailable",
			zap.String("ata", ata.String()),
			zap.NamedError("primary", err),
			zap.NamedError("fallback", retryErr))
		return bal, fmt.Errorf("%w: token balance of %s: %w", ErrRPCUnavailable, ata, err)
	}
	bal.RawAmount, bal.Decimals = raw, decimals
	return bal, nil
}

// readTokenAccount выполняет одну попытку чтения ATA и decimals минта.
func (a *Accessor) readTokenAccount(ctx context.Context, ata, mint solana.PublicKey, commitment rpc.CommitmentType) (uint64, uint8, error) {
	tctx, cancel := context.WithTimeout(ctx, a.timeouts.TokenAccount)
	info, err := a.client.GetAccountInfo(tctx, ata, commitment)
	cancel()
	if err != nil {
		if blockchain.IsAccountNotFound(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	if info == nil || info.Value == nil {
		return 0, 0, nil
	}

	amount, err := parseTokenAmount(accountData(info.Value))
	if err != nil {
		// битый буфер трактуется как ноль и не показывается пользователю
		a.logger.Warn("malformed token account data",
			zap.String("ata", ata.String()),
			zap.Error(err))
		return 0, 0, nil
	}

	mi, err := a.GetMintInfo(ctx, mint, commitment)
	if err != nil {
		return 0, 0, err
	}
	return amount, mi.Decimals, nil
}

// GetMintInfo читает и декодирует mint-аккаунт.
func (a *Accessor) GetMintInfo(ctx context.Context, mint solana.PublicKey, commitment rpc.CommitmentType) (MintInfo, error) {
	tctx, cancel := context.WithTimeout(ctx, a.timeouts.Mint)
	defer cancel()

	info, err := a.client.GetAccountInfo(tctx, mint, commitment)
	if err != nil {
		return MintInfo{}, fmt.Errorf("get mint %s: %w", mint, err)
	}
	if info == nil || info.Value == nil {
		return MintInfo{}, fmt.Errorf("get mint %s: %w", mint, blockchain.ErrAccountNotFound)
	}
	mi, err := parseMint(accountData(info.Value))
	if err != nil {
		return MintInfo{}, fmt.Errorf("decode mint %s: %w", mint, err)
	}
	mi.Address = mint
	mi.Owner = info.Value.Owner
	return mi, nil
}

// TokenAccountStats: число токен-аккаунтов минта и из них с ненулевым балансом.
type TokenAccountStats struct {
	Accounts int `json:"accounts"`
	Holders  int `json:"holders"`
}

// CountTokenAccounts считает аккаунты SPL Token программы с полем mint == mint.
func (a *Accessor) CountTokenAccounts(ctx context.Context, mint solana.PublicKey) (TokenAccountStats, error) {
	offset, length := uint64(tokenAmountOffset), uint64(8)
	opts := &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Encoding:   solana.EncodingBase64,
		DataSlice: &rpc.DataSlice{
			Offset: &offset,
			Length: &length,
		},
		Filters: []rpc.RPCFilter{
			{DataSize: TokenAccountSize},
			{Memcmp: &rpc.RPCFilterMemcmp{Offset: 0, Bytes: mint.Bytes()}},
		},
	}

	accounts, err := a.client.GetProgramAccountsWithOpts(ctx, solana.TokenProgramID, opts)
	if err != nil {
		return TokenAccountStats{}, fmt.Errorf("count token accounts for %s: %w", mint, err)
	}

	stats := TokenAccountStats{Accounts: len(accounts)}
	for _, acc := range accounts {
		if acc == nil {
			continue
		}
		// DataSlice возвращает только поле amount
		amount, err := parseTokenAmount(append(make([]byte, tokenAmountOffset), accountData(acc.Account)...))
		if err == nil && amount > 0 {
			stats.Holders++
		}
	}
	return stats, nil
}

func accountData(acc *rpc.Account) []byte {
	if acc == nil || acc.Data == nil {
		return nil
	}
	return acc.Data.GetBinary()
}

func lamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / lamportsPerSOL
}
