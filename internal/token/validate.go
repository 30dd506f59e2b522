// internal/token/validate.go
package token

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/goldium-io/gold-core/internal/chain"
	"go.uber.org/zap"
)

// MintReader читает mint-аккаунт (реализуется chain.Accessor).
type MintReader interface {
	GetMintInfo(ctx context.Context, mint solana.PublicKey, commitment rpc.CommitmentType) (chain.MintInfo, error)
}

// HolderCounter считает токен-аккаунты минта (реализуется chain.Accessor).
type HolderCounter interface {
	CountTokenAccounts(ctx context.Context, mint solana.PublicKey) (chain.TokenAccountStats, error)
}

// MintValidation is the structured outcome of ValidateTokenMint.
type MintValidation struct {
	IsValid  bool            `json:"isValid"`
	MintInfo *chain.MintInfo `json:"mintInfo,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// ValidateTokenMint проверяет, что адрес указывает на инициализированный SPL mint.
// Ошибки никогда не возвращаются вызывающему, только в поле Error.
func (r *Registry) ValidateTokenMint(ctx context.Context, reader MintReader, address string) MintValidation {
	mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(address))
	if err != nil {
		return MintValidation{Error: fmt.Sprintf("invalid mint address: %v", err)}
	}

	info, err := reader.GetMintInfo(ctx, mint, rpc.CommitmentConfirmed)
	if err != nil {
		r.logger.Debug("mint validation failed",
			zap.String("mint", mint.String()),
			zap.Error(err))
		return MintValidation{Error: err.Error()}
	}

	switch {
	case !info.Owner.Equals(solana.TokenProgramID):
		return MintValidation{MintInfo: &info, Error: fmt.Sprintf("account is owned by %s, not the token program", info.Owner)}
	case !info.IsInitialized:
		return MintValidation{MintInfo: &info, Error: "mint is not initialized"}
	}

	if known, _, ok := r.FindByMint(mint); ok && known.Decimals != info.Decimals {
		return MintValidation{
			MintInfo: &info,
			Error:    fmt.Sprintf("decimals mismatch for %s: registry %d, chain %d", known.Symbol, known.Decimals, info.Decimals),
		}
	}

	return MintValidation{IsValid: true, MintInfo: &info}
}

// Activity сигнализирует, используется ли минт.
type Activity struct {
	HasActivity bool   `json:"hasActivity"`
	Holders     int    `json:"holders"`
	Accounts    int    `json:"accounts"`
	Error       string `json:"error,omitempty"`
}

// CheckTokenActivity считает токен-аккаунты минта. Любой сбой даёт HasActivity=false.
func CheckTokenActivity(ctx context.Context, counter HolderCounter, address string) Activity {
	mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(address))
	if err != nil {
		return Activity{Error: fmt.Sprintf("invalid mint address: %v", err)}
	}
	stats, err := counter.CountTokenAccounts(ctx, mint)
	if err != nil {
		return Activity{Error: err.Error()}
	}
	return Activity{
		HasActivity: stats.Accounts > 0,
		Holders:     stats.Holders,
		Accounts:    stats.Accounts,
	}
}
