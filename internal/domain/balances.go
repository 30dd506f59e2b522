// internal/domain/balances.go
package domain

import (
	"math"

	"github.com/gagliardetto/solana-go"
)

// Balances is the simulated ledger projection for one wallet.
type Balances struct {
	GOLD   float64 `json:"GOLD"`
	SOL    float64 `json:"SOL"`
	LP     float64 `json:"LP"`
	STAKED float64 `json:"STAKED"`
}

// TokenBalance: баланс SPL-токена в базовых единицах.
type TokenBalance struct {
	Owner     solana.PublicKey `json:"owner"`
	Mint      solana.PublicKey `json:"mint"`
	RawAmount uint64           `json:"raw_amount"`
	Decimals  uint8            `json:"decimals"`
}

// UIAmount переводит RawAmount в десятичное значение.
func (b TokenBalance) UIAmount() float64 {
	return float64(b.RawAmount) / math.Pow10(int(b.Decimals))
}
