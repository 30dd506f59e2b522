// internal/blockchain/types.go
package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Reader: операции чтения состояния цепи.
type Reader interface {
	// Получить баланс аккаунта в лампортах.
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
	// Получить информацию об аккаунте. Отсутствующий аккаунт возвращает ErrAccountNotFound.
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetAccountInfoResult, error)
	// Получить аккаунты программы с фильтрами.
	GetProgramAccountsWithOpts(ctx context.Context, programID solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
}

// Submitter: отправка и подтверждение транзакций.
type Submitter interface {
	// Получить последний blockhash.
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	// Отправить транзакцию.
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// Ожидание подтверждения транзакции.
	WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error
}

// Client определяет общий интерфейс для взаимодействия с блокчейном.
type Client interface {
	Reader
	Submitter
	// Получить статусы подписей транзакций.
	GetSignatureStatuses(ctx context.Context, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}
