// internal/chain/mocks_test.go
package chain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/goldium-io/gold-core/internal/utils/binary"
	"github.com/stretchr/testify/mock"
)

// MockReader реализует интерфейс blockchain.Reader
type MockReader struct {
	mock.Mock
}

func (m *MockReader) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	args := m.Called(ctx, pubkey, commitment)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockReader) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetAccountInfoResult, error) {
	args := m.Called(ctx, pubkey, commitment)
	if v := args.Get(0); v != nil {
		return v.(*rpc.GetAccountInfoResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReader) GetProgramAccountsWithOpts(ctx context.Context, programID solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	args := m.Called(ctx, programID, opts)
	if v := args.Get(0); v != nil {
		return v.(rpc.GetProgramAccountsResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func accountResult(owner solana.PublicKey, data []byte) *rpc.GetAccountInfoResult {
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{
			Owner: owner,
			Data:  rpc.DataBytesOrJSONFromBytes(data),
		},
	}
}

func tokenAccountData(mint, owner solana.PublicKey, amount uint64) []byte {
	data := make([]byte, TokenAccountSize)
	binary.WritePubKey(mint, data, 0)
	binary.WritePubKey(owner, data, 32)
	binary.WriteUint64LittleEndian(amount, data, tokenAmountOffset)
	binary.WriteUint8(1, data, 108)
	return data
}

func mintData(decimals uint8, supply uint64, authority *solana.PublicKey) []byte {
	data := make([]byte, MintAccountSize)
	if authority != nil {
		binary.WriteUint32LittleEndian(1, data, mintAuthorityOff)
		binary.WritePubKey(*authority, data, mintAuthorityOff+4)
	}
	binary.WriteUint64LittleEndian(supply, data, mintSupplyOffset)
	binary.WriteUint8(decimals, data, mintDecimalsOffset)
	binary.WriteBool(true, data, mintInitOffset)
	return data
}
