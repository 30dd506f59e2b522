package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gin-gonic/gin"
	"github.com/goldium-io/gold-core/internal/chain"
	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/goldium-io/gold-core/internal/ledger"
	"github.com/goldium-io/gold-core/internal/simulator"
	"github.com/goldium-io/gold-core/internal/staking"
	"github.com/goldium-io/gold-core/internal/storage/memory"
	"github.com/goldium-io/gold-core/internal/token"
	"github.com/goldium-io/gold-core/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const owner = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeChain struct {
	sol     float64
	solErr  error
	balance domain.TokenBalance
	mint    chain.MintInfo
	stats   chain.TokenAccountStats
}

func (f *fakeChain) GetSolBalance(context.Context, solana.PublicKey) (float64, error) {
	return f.sol, f.solErr
}

func (f *fakeChain) GetTokenBalanceRaw(_ context.Context, owner, mint solana.PublicKey) (domain.TokenBalance, error) {
	b := f.balance
	b.Owner, b.Mint = owner, mint
	return b, nil
}

func (f *fakeChain) GetPortfolio(_ context.Context, owner solana.PublicKey, tokens []chain.TokenRef) (chain.Portfolio, error) {
	p := chain.Portfolio{Owner: owner.String(), SOL: f.sol}
	for _, t := range tokens {
		p.Tokens = append(p.Tokens, chain.Holding{Symbol: t.Symbol, Mint: t.Mint.String()})
	}
	return p, nil
}

func (f *fakeChain) GetMintInfo(_ context.Context, mint solana.PublicKey, _ rpc.CommitmentType) (chain.MintInfo, error) {
	info := f.mint
	info.Address = mint
	return info, nil
}

func (f *fakeChain) CountTokenAccounts(context.Context, solana.PublicKey) (chain.TokenAccountStats, error) {
	return f.stats, nil
}

type fakeTransfers struct {
	err       error
	lastOp    string
	lastMint  solana.PublicKey
	lastDec   uint8
	lastOwner solana.PublicKey
	lastRecip solana.PublicKey
}

func (f *fakeTransfers) CreateTokenAccountIfNeeded(_ context.Context, _ transfer.Signer, mint, owner solana.PublicKey) (solana.PublicKey, error) {
	f.lastMint, f.lastOwner = mint, owner
	ata, _, _ := solana.FindAssociatedTokenAddress(owner, mint)
	return ata, f.err
}

func (f *fakeTransfers) TransferTokens(_ context.Context, _ transfer.Signer, mint, _ solana.PublicKey, _ float64, decimals uint8) (solana.Signature, error) {
	f.lastMint, f.lastDec = mint, decimals
	return solana.Signature{1}, f.err
}

func (f *fakeTransfers) TransferSOL(context.Context, transfer.Signer, solana.PublicKey, float64) (solana.Signature, error) {
	return solana.Signature{2}, f.err
}

func (f *fakeTransfers) BurnTokens(_ context.Context, _ transfer.Signer, mint solana.PublicKey, _ float64, decimals uint8) (solana.Signature, error) {
	f.lastOp, f.lastMint, f.lastDec = "burn", mint, decimals
	return solana.Signature{3}, f.err
}

func (f *fakeTransfers) MintTokens(_ context.Context, _ transfer.Signer, mint, recipient solana.PublicKey, _ float64, decimals uint8) (solana.Signature, error) {
	f.lastOp, f.lastMint, f.lastRecip, f.lastDec = "mint", mint, recipient, decimals
	return solana.Signature{4}, f.err
}

type stubSigner struct{ key solana.PrivateKey }

func (s stubSigner) PublicKey() solana.PublicKey { return s.key.PublicKey() }

func (s stubSigner) SignTransaction(context.Context, *solana.Transaction) error { return nil }

func (s stubSigner) SignAllTransactions(context.Context, []*solana.Transaction) error { return nil }

type env struct {
	srv       *Server
	chain     *fakeChain
	transfers *fakeTransfers
	ledger    *ledger.Ledger
}

func newEnv(t *testing.T, withSigner bool) *env {
	t.Helper()
	l := ledger.New(memory.New(), zap.NewNop())
	sim := simulator.New(l, zap.NewNop(), simulator.WithBridgeDelay(time.Hour))
	t.Cleanup(sim.Close)

	e := &env{
		chain:     &fakeChain{sol: 1.5, balance: domain.TokenBalance{RawAmount: 2_500_000_000, Decimals: 9}},
		transfers: &fakeTransfers{},
		ledger:    l,
	}
	deps := Deps{
		Ledger:    l,
		Staking:   staking.NewEngine(l, zap.NewNop()),
		Simulator: sim,
		Registry:  token.NewRegistry(zap.NewNop()),
		Chain:     e.chain,
		Network:   domain.Devnet,
		RateLimit: RateLimiterConfig{RequestsPerSecond: 1000, Burst: 1000},
		Metrics:   http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# metrics")) }),
	}
	if withSigner {
		key, err := solana.NewRandomPrivateKey()
		require.NoError(t, err)
		deps.Transfers = e.transfers
		deps.Signer = stubSigner{key: key}
	}
	e.srv = NewServer(deps, zap.NewNop())
	t.Cleanup(func() { _ = e.srv.Shutdown(context.Background()) })
	return e
}

func (e *env) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func walletPath(suffix string) string {
	return fmt.Sprintf("/v1/wallets/%s/%s", owner, suffix)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t, false)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/health", nil).Code)

	rec := e.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}

func TestInitAndBalances(t *testing.T) {
	e := newEnv(t, false)

	rec := e.do(t, http.MethodGet, walletPath("balances"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Balances{}, decode[domain.Balances](t, rec))

	rec = e.do(t, http.MethodPost, walletPath("init"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Balances{GOLD: 1000, SOL: 10}, decode[domain.Balances](t, rec))
}

func TestInvalidAddress(t *testing.T) {
	e := newEnv(t, false)
	rec := e.do(t, http.MethodGet, "/v1/wallets/not-a-key/balances", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStakeFlowStatusCodes(t *testing.T) {
	e := newEnv(t, false)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, walletPath("init"), nil).Code)

	rec := e.do(t, http.MethodPost, walletPath("stake"), gin.H{"amount": 400})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[domain.Result](t, rec).Success)

	rec = e.do(t, http.MethodPost, walletPath("unstake"), gin.H{"amount": 400})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	res := decode[domain.Result](t, rec)
	assert.Equal(t, domain.KindLockActive, res.Kind)
	assert.Contains(t, res.Message, "tokens are locked for another")

	rec = e.do(t, http.MethodPost, walletPath("stake"), gin.H{"amount": 0})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, domain.KindInvalidAmount, decode[domain.Result](t, rec).Kind)

	rec = e.do(t, http.MethodPost, walletPath("stake"), gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, walletPath("stake"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Position domain.StakePosition `json:"position"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.StateStakedLocked, body.Position.State)
	assert.Equal(t, 400.0, body.Position.StakedAmount)
}

func TestSwapLiquidityAndBridgeRoutes(t *testing.T) {
	e := newEnv(t, false)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, walletPath("init"), nil).Code)

	rec := e.do(t, http.MethodPost, walletPath("swap"), gin.H{"from": "SOL", "to": "GOLD", "amount": 20})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, domain.KindInsufficientBalance, decode[domain.Result](t, rec).Kind)

	rec = e.do(t, http.MethodPost, walletPath("liquidity/add"), gin.H{"amount": 100})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodPost, walletPath("liquidity/claim"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodPost, walletPath("liquidity/remove"), gin.H{"amount": 1000})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, walletPath("bridge"), gin.H{"target": "ethereum", "amount": 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodGet, walletPath("bridge"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decode[[]domain.BridgeRecord](t, rec)
	require.Len(t, hist, 1)
	assert.Equal(t, domain.BridgePending, hist[0].Status)
}

func TestFaucetRoute(t *testing.T) {
	e := newEnv(t, false)

	rec := e.do(t, http.MethodPost, walletPath("faucet"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	b, err := e.ledger.GetUserBalances(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 100.0, b.GOLD)

	rec = e.do(t, http.MethodPost, walletPath("faucet"), gin.H{"network": "testnet"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, domain.KindCooldownActive, decode[domain.Result](t, rec).Kind)

	rec = e.do(t, http.MethodPost, walletPath("faucet"), gin.H{"network": "moon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChainRoutes(t *testing.T) {
	e := newEnv(t, false)

	rec := e.do(t, http.MethodGet, "/v1/chain/"+owner+"/sol", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.5, decode[map[string]interface{}](t, rec)["sol"])

	rec = e.do(t, http.MethodGet, "/v1/chain/"+owner+"/tokens/gold", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, 2.5, body["amount"])
	assert.Equal(t, "98nyBfyEQE2HiVyuxGUAqK4bQ38qCFrfVbAGtQTY2pQw", body["mint"])

	rec = e.do(t, http.MethodGet, "/v1/chain/"+owner+"/tokens/DOGE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodGet, "/v1/chain/"+owner+"/portfolio", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[chain.Portfolio](t, rec)
	assert.Len(t, p.Tokens, 2)

	e.chain.solErr = errors.New("rpc down")
	rec = e.do(t, http.MethodGet, "/v1/chain/"+owner+"/sol", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTokenRoutes(t *testing.T) {
	e := newEnv(t, false)
	e.chain.mint = chain.MintInfo{Owner: solana.TokenProgramID, Decimals: 9, IsInitialized: true}
	e.chain.stats = chain.TokenAccountStats{Accounts: 3, Holders: 2}

	rec := e.do(t, http.MethodGet, "/v1/tokens", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]token.Token](t, rec), 3)

	rec = e.do(t, http.MethodGet, "/v1/tokens/98nyBfyEQE2HiVyuxGUAqK4bQ38qCFrfVbAGtQTY2pQw/validate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[token.MintValidation](t, rec).IsValid)

	rec = e.do(t, http.MethodGet, "/v1/tokens/zzz/validate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[token.MintValidation](t, rec).IsValid)

	rec = e.do(t, http.MethodGet, "/v1/tokens/98nyBfyEQE2HiVyuxGUAqK4bQ38qCFrfVbAGtQTY2pQw/activity", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	act := decode[token.Activity](t, rec)
	assert.True(t, act.HasActivity)
	assert.Equal(t, 2, act.Holders)

	rec = e.do(t, http.MethodGet, "/v1/bridge/estimate?network=mainnet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTransferRoutes(t *testing.T) {
	e := newEnv(t, false)
	rec := e.do(t, http.MethodPost, "/v1/transfers/sol", gin.H{"recipient": owner, "amount": 1})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	e = newEnv(t, true)
	rec = e.do(t, http.MethodPost, "/v1/transfers/tokens", gin.H{"symbol": "USDC", "recipient": owner, "amount": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, uint8(6), e.transfers.lastDec)

	// минт вне реестра: decimals читаются с чейна
	e.chain.mint = chain.MintInfo{Decimals: 2}
	other := solana.NewWallet().PublicKey().String()
	rec = e.do(t, http.MethodPost, "/v1/transfers/tokens", gin.H{"mint": other, "recipient": owner, "amount": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint8(2), e.transfers.lastDec)

	rec = e.do(t, http.MethodPost, "/v1/transfers/tokens", gin.H{"recipient": owner, "amount": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/v1/transfers/accounts", gin.H{"symbol": "GOLD", "owner": owner})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, owner, e.transfers.lastOwner.String())

	e.transfers.err = fmt.Errorf("wrap: %w", transfer.ErrSenderAccountMissing)
	rec = e.do(t, http.MethodPost, "/v1/transfers/tokens", gin.H{"symbol": "GOLD", "recipient": owner, "amount": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	e.transfers.err = transfer.ErrInvalidAmount
	rec = e.do(t, http.MethodPost, "/v1/transfers/sol", gin.H{"recipient": owner, "amount": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBurnAndMintRoutes(t *testing.T) {
	e := newEnv(t, false)
	rec := e.do(t, http.MethodPost, "/v1/transfers/burn", gin.H{"symbol": "GOLD", "amount": 1})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	e = newEnv(t, true)
	rec = e.do(t, http.MethodPost, "/v1/transfers/burn", gin.H{"symbol": "GOLD", "amount": 2.5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "burn", e.transfers.lastOp)
	assert.Equal(t, uint8(9), e.transfers.lastDec)

	rec = e.do(t, http.MethodPost, "/v1/transfers/mint", gin.H{"symbol": "USDC", "recipient": owner, "amount": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "mint", e.transfers.lastOp)
	assert.Equal(t, owner, e.transfers.lastRecip.String())
	assert.Equal(t, uint8(6), e.transfers.lastDec)

	rec = e.do(t, http.MethodPost, "/v1/transfers/mint", gin.H{"symbol": "GOLD", "recipient": "nope", "amount": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/v1/transfers/burn", gin.H{"symbol": "GOLD"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e.transfers.err = fmt.Errorf("wrap: %w", transfer.ErrSenderAccountMissing)
	rec = e.do(t, http.MethodPost, "/v1/transfers/burn", gin.H{"symbol": "GOLD", "amount": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRateLimit(t *testing.T) {
	l := ledger.New(memory.New(), zap.NewNop())
	srv := NewServer(Deps{
		Ledger:    l,
		Network:   domain.Devnet,
		RateLimit: RateLimiterConfig{RequestsPerSecond: 0.001, Burst: 2},
	}, zap.NewNop())
	defer srv.Shutdown(context.Background())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, walletPath("balances"), nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterEvictsIdle(t *testing.T) {
	rl := newRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, Burst: 1})
	defer rl.Close()

	rl.getLimiter("10.0.0.1")
	rl.evict(time.Now().Add(time.Hour))
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.visitors)
}
