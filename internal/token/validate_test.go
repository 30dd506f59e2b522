package token

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/goldium-io/gold-core/internal/blockchain"
	"github.com/goldium-io/gold-core/internal/chain"
	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/goldium-io/gold-core/internal/utils/binary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMints map[solana.PublicKey]chain.MintInfo

func (f fakeMints) GetMintInfo(_ context.Context, mint solana.PublicKey, _ rpc.CommitmentType) (chain.MintInfo, error) {
	mi, ok := f[mint]
	if !ok {
		return chain.MintInfo{}, errors.New("account not found")
	}
	return mi, nil
}

type fakeCounter struct {
	stats chain.TokenAccountStats
	err   error
}

func (f fakeCounter) CountTokenAccounts(context.Context, solana.PublicKey) (chain.TokenAccountStats, error) {
	return f.stats, f.err
}

func TestValidateTokenMint(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	gold, err := r.MintFor(SymbolGOLD, domain.Devnet)
	require.NoError(t, err)
	foreign := solana.NewWallet().PublicKey()
	notMint := solana.NewWallet().PublicKey()
	uninit := solana.NewWallet().PublicKey()

	reader := fakeMints{
		gold:    {Address: gold, Owner: solana.TokenProgramID, Decimals: 9, IsInitialized: true},
		foreign: {Address: foreign, Owner: solana.TokenProgramID, Decimals: 2, IsInitialized: true},
		notMint: {Address: notMint, Owner: solana.SystemProgramID, IsInitialized: true},
		uninit:  {Address: uninit, Owner: solana.TokenProgramID},
	}

	v := r.ValidateTokenMint(context.Background(), reader, gold.String())
	assert.True(t, v.IsValid)
	require.NotNil(t, v.MintInfo)
	assert.Equal(t, uint8(9), v.MintInfo.Decimals)

	// неизвестный реестру минт проверяется только по цепи
	assert.True(t, r.ValidateTokenMint(context.Background(), reader, foreign.String()).IsValid)

	v = r.ValidateTokenMint(context.Background(), reader, notMint.String())
	assert.False(t, v.IsValid)
	assert.Contains(t, v.Error, "not the token program")

	v = r.ValidateTokenMint(context.Background(), reader, uninit.String())
	assert.False(t, v.IsValid)
	assert.Contains(t, v.Error, "not initialized")

	v = r.ValidateTokenMint(context.Background(), reader, solana.NewWallet().PublicKey().String())
	assert.False(t, v.IsValid)
	assert.NotEmpty(t, v.Error)

	v = r.ValidateTokenMint(context.Background(), reader, "xyz")
	assert.False(t, v.IsValid)
	assert.Contains(t, v.Error, "invalid mint address")
}

// rawAccounts отдаёт сырые данные аккаунтов для chain.Accessor.
type rawAccounts map[solana.PublicKey][]byte

func (f rawAccounts) GetBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (uint64, error) {
	return 0, nil
}

func (f rawAccounts) GetAccountInfo(_ context.Context, pubkey solana.PublicKey, _ rpc.CommitmentType) (*rpc.GetAccountInfoResult, error) {
	data, ok := f[pubkey]
	if !ok {
		return nil, blockchain.ErrAccountNotFound
	}
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{Owner: solana.TokenProgramID, Data: rpc.DataBytesOrJSONFromBytes(data)},
	}, nil
}

func (f rawAccounts) GetProgramAccountsWithOpts(context.Context, solana.PublicKey, *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	return nil, nil
}

func TestValidateTokenMintRejectsTokenAccount(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	gold, err := r.MintFor(SymbolGOLD, domain.Devnet)
	require.NoError(t, err)
	holder := solana.NewWallet().PublicKey()
	ata, _, err := solana.FindAssociatedTokenAddress(holder, gold)
	require.NoError(t, err)

	// токен-аккаунт: mint, владелец, amount, state=initialized
	account := make([]byte, chain.TokenAccountSize)
	binary.WritePubKey(gold, account, 0)
	binary.WritePubKey(holder, account, 32)
	binary.WriteUint64LittleEndian(5, account, 64)
	binary.WriteUint8(1, account, 108)

	mint := make([]byte, chain.MintAccountSize)
	binary.WriteUint8(9, mint, 44)
	binary.WriteBool(true, mint, 45)

	accessor := chain.NewAccessor(rawAccounts{ata: account, gold: mint}, zap.NewNop())

	v := r.ValidateTokenMint(context.Background(), accessor, ata.String())
	assert.False(t, v.IsValid)
	assert.Contains(t, v.Error, "not a mint account")

	v = r.ValidateTokenMint(context.Background(), accessor, gold.String())
	assert.True(t, v.IsValid)
}

func TestValidateTokenMintDecimalsMismatch(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	usdc, _ := r.MintFor(SymbolUSDC, domain.MainnetBeta)
	reader := fakeMints{
		usdc: {Address: usdc, Owner: solana.TokenProgramID, Decimals: 9, IsInitialized: true},
	}

	v := r.ValidateTokenMint(context.Background(), reader, usdc.String())
	assert.False(t, v.IsValid)
	assert.Contains(t, v.Error, "decimals mismatch")
}

func TestCheckTokenActivity(t *testing.T) {
	mint := solana.NewWallet().PublicKey().String()

	a := CheckTokenActivity(context.Background(), fakeCounter{stats: chain.TokenAccountStats{Accounts: 12, Holders: 7}}, mint)
	assert.True(t, a.HasActivity)
	assert.Equal(t, 7, a.Holders)
	assert.Equal(t, 12, a.Accounts)

	a = CheckTokenActivity(context.Background(), fakeCounter{}, mint)
	assert.False(t, a.HasActivity)

	a = CheckTokenActivity(context.Background(), fakeCounter{err: errors.New("rpc down")}, mint)
	assert.False(t, a.HasActivity)
	assert.Equal(t, "rpc down", a.Error)

	a = CheckTokenActivity(context.Background(), fakeCounter{}, "???")
	assert.False(t, a.HasActivity)
}
