// internal/transfer/instructions.go
package transfer

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// createATAIdempotentInstruction creates an instruction to create an associated token account.
// Idempotent variant: succeeds if the account already exists.
func createATAIdempotentInstruction(payer, wallet, mint, ata solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		[]*solana.AccountMeta{
			{PublicKey: payer, IsWritable: true, IsSigner: true},
			{PublicKey: ata, IsWritable: true, IsSigner: false},
			{PublicKey: wallet, IsWritable: false, IsSigner: false},
			{PublicKey: mint, IsWritable: false, IsSigner: false},
			{PublicKey: solana.SystemProgramID, IsWritable: false, IsSigner: false},
			{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
			{PublicKey: solana.SysVarRentPubkey, IsWritable: false, IsSigner: false},
		},
		[]byte{1}, // Instruction code 1 for create idempotent
	)
}

// ToBaseUnits переводит десятичную сумму в базовые единицы: floor(amount * 10^decimals).
func ToBaseUnits(amount float64, decimals uint8) (uint64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	units := decimal.NewFromFloat(amount).Shift(int32(decimals)).Floor()
	if !units.IsPositive() {
		return 0, fmt.Errorf("%w: %v rounds to zero base units", ErrInvalidAmount, amount)
	}
	bi := units.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("%w: %v overflows base units", ErrInvalidAmount, amount)
	}
	return bi.Uint64(), nil
}
