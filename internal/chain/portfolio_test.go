package chain

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/goldium-io/gold-core/internal/blockchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetPortfolio(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	gold := solana.NewWallet().PublicKey()
	usdc := solana.NewWallet().PublicKey()
	goldATA, _, _ := solana.FindAssociatedTokenAddress(owner, gold)
	usdcATA, _, _ := solana.FindAssociatedTokenAddress(owner, usdc)

	m := new(MockReader)
	m.On("GetBalance", mock.Anything, owner, rpc.CommitmentConfirmed).Return(uint64(3_000_000_000), nil)
	m.On("GetAccountInfo", mock.Anything, goldATA, rpc.CommitmentConfirmed).
		Return(accountResult(solana.TokenProgramID, tokenAccountData(gold, owner, 7_000_000_000)), nil)
	m.On("GetAccountInfo", mock.Anything, gold, rpc.CommitmentConfirmed).
		Return(accountResult(solana.TokenProgramID, mintData(9, 0, nil)), nil)
	m.On("GetAccountInfo", mock.Anything, usdcATA, mock.Anything).Return(nil, blockchain.ErrConnectionFailed)

	p, err := newTestAccessor(m).GetPortfolio(context.Background(), owner, []TokenRef{
		{Symbol: "GOLD", Mint: gold},
		{Symbol: "USDC", Mint: usdc},
	})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, p.SOL, 1e-12)
	require.Len(t, p.Tokens, 2)
	assert.Equal(t, "GOLD", p.Tokens[0].Symbol)
	assert.InDelta(t, 7.0, p.Tokens[0].Balance, 1e-12)
	assert.Empty(t, p.Tokens[0].Error)
	assert.Equal(t, "USDC", p.Tokens[1].Symbol)
	assert.NotEmpty(t, p.Tokens[1].Error)
}

func TestGetPortfolioFailsOnSOL(t *testing.T) {
	owner := solana.NewWallet().PublicKey()

	m := new(MockReader)
	m.On("GetBalance", mock.Anything, owner, mock.Anything).Return(uint64(0), blockchain.ErrTimeout)

	_, err := newTestAccessor(m).GetPortfolio(context.Background(), owner, nil)
	assert.Error(t, err)
}
