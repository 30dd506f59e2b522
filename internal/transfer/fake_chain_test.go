// internal/transfer/fake_chain_test.go
package transfer

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/goldium-io/gold-core/internal/blockchain"
)

// fakeChain хранит множество существующих аккаунтов и помечает как созданные
// все аккаунты отправленной транзакции.
type fakeChain struct {
	mu         sync.Mutex
	accounts   map[solana.PublicKey]bool
	sent       []*solana.Transaction
	sendErrs   []error
	sendDelay  time.Duration
	confirmErr error
	readErr    error
}

func newFakeChain(existing ...solana.PublicKey) *fakeChain {
	f := &fakeChain{accounts: make(map[solana.PublicKey]bool)}
	for _, k := range existing {
		f.accounts[k] = true
	}
	return f
}

func (f *fakeChain) GetBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (uint64, error) {
	return 0, nil
}

func (f *fakeChain) GetAccountInfo(_ context.Context, pubkey solana.PublicKey, _ rpc.CommitmentType) (*rpc.GetAccountInfoResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	if !f.accounts[pubkey] {
		return nil, blockchain.ErrAccountNotFound
	}
	return &rpc.GetAccountInfoResult{Value: &rpc.Account{Owner: solana.TokenProgramID}}, nil
}

func (f *fakeChain) GetProgramAccountsWithOpts(context.Context, solana.PublicKey, *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	return nil, nil
}

func (f *fakeChain) GetRecentBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{1, 2, 3}, nil
}

func (f *fakeChain) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if f.sendDelay > 0 {
		time.Sleep(f.sendDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		if err != nil {
			return solana.Signature{}, err
		}
	}
	for _, key := range tx.Message.AccountKeys {
		f.accounts[key] = true
	}
	return tx.Signatures[0], nil
}

func (f *fakeChain) WaitForTransactionConfirmation(context.Context, solana.Signature, rpc.CommitmentType) error {
	return f.confirmErr
}

func (f *fakeChain) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeChain) lastSent() *solana.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

// programs возвращает program id каждой инструкции транзакции.
func programs(tx *solana.Transaction) []solana.PublicKey {
	out := make([]solana.PublicKey, 0, len(tx.Message.Instructions))
	for _, ix := range tx.Message.Instructions {
		out = append(out, tx.Message.AccountKeys[ix.ProgramIDIndex])
	}
	return out
}
