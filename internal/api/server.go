// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/goldium-io/gold-core/internal/chain"
	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/goldium-io/gold-core/internal/ledger"
	"github.com/goldium-io/gold-core/internal/simulator"
	"github.com/goldium-io/gold-core/internal/staking"
	"github.com/goldium-io/gold-core/internal/token"
	"github.com/goldium-io/gold-core/internal/transfer"
	"go.uber.org/zap"
)

// ChainReader: чтение on-chain данных (реализуется chain.Accessor).
type ChainReader interface {
	token.MintReader
	token.HolderCounter
	GetSolBalance(ctx context.Context, owner solana.PublicKey) (float64, error)
	GetTokenBalanceRaw(ctx context.Context, owner, mint solana.PublicKey) (domain.TokenBalance, error)
	GetPortfolio(ctx context.Context, owner solana.PublicKey, tokens []chain.TokenRef) (chain.Portfolio, error)
}

// Transfers: on-chain операции (реализуется transfer.Builder).
type Transfers interface {
	CreateTokenAccountIfNeeded(ctx context.Context, signer transfer.Signer, mint, owner solana.PublicKey) (solana.PublicKey, error)
	TransferTokens(ctx context.Context, signer transfer.Signer, mint, recipient solana.PublicKey, amount float64, decimals uint8) (solana.Signature, error)
	TransferSOL(ctx context.Context, signer transfer.Signer, recipient solana.PublicKey, sol float64) (solana.Signature, error)
	BurnTokens(ctx context.Context, signer transfer.Signer, mint solana.PublicKey, amount float64, decimals uint8) (solana.Signature, error)
	MintTokens(ctx context.Context, signer transfer.Signer, mint, recipient solana.PublicKey, amount float64, decimals uint8) (solana.Signature, error)
}

// Deps: всё, что нужно HTTP-слою. Transfers и Signer могут быть nil:
// тогда маршруты /v1/transfers отвечают 503.
type Deps struct {
	Ledger    *ledger.Ledger
	Staking   *staking.Engine
	Simulator *simulator.Simulator
	Registry  *token.Registry
	Chain     ChainReader
	Transfers Transfers
	Signer    transfer.Signer
	Metrics   http.Handler
	Network   domain.Network
	RateLimit RateLimiterConfig
}

type Server struct {
	deps    Deps
	logger  *zap.Logger
	engine  *gin.Engine
	limiter *rateLimiter

	mu       sync.Mutex
	http     *http.Server
	shutdown bool
}

func NewServer(deps Deps, logger *zap.Logger) *Server {
	s := &Server{
		deps:    deps,
		logger:  logger.Named("api"),
		engine:  gin.New(),
		limiter: newRateLimiter(deps.RateLimit),
	}
	s.engine.Use(recovery(s.logger), requestLogger(s.logger))
	s.routes()
	return s
}

// Handler отдаёт роутер (тесты, встраивание).
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "network": s.deps.Network})
	})
	if s.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.deps.Metrics))
	}

	v1 := r.Group("/v1", s.limiter.middleware())

	w := v1.Group("/wallets/:addr", requireAddress("addr"))
	w.GET("/balances", s.getBalances)
	w.POST("/init", s.initWallet)
	w.POST("/reset", s.resetWallet)
	w.GET("/stake", s.getStake)
	w.POST("/stake", s.stake)
	w.POST("/unstake", s.unstake)
	w.POST("/claim", s.claimRewards)
	w.POST("/swap", s.swap)
	w.POST("/liquidity/add", s.addLiquidity)
	w.POST("/liquidity/remove", s.removeLiquidity)
	w.POST("/liquidity/claim", s.claimLiquidityFees)
	w.POST("/bridge", s.bridge)
	w.GET("/bridge", s.bridgeHistory)
	w.POST("/faucet", s.faucet)

	ch := v1.Group("/chain/:addr", requireAddress("addr"))
	ch.GET("/sol", s.getSolBalance)
	ch.GET("/tokens/:symbol", s.getTokenBalance)
	ch.GET("/portfolio", s.getPortfolio)

	v1.GET("/tokens", s.listTokens)
	v1.GET("/tokens/:mint/validate", s.validateMint)
	v1.GET("/tokens/:mint/activity", s.tokenActivity)
	v1.GET("/bridge/estimate", s.bridgeEstimate)

	t := v1.Group("/transfers")
	t.POST("/tokens", s.transferTokens)
	t.POST("/sol", s.transferSOL)
	t.POST("/accounts", s.createTokenAccount)
	t.POST("/burn", s.burnTokens)
	t.POST("/mint", s.mintTokens)
}

// ListenAndServe блокируется до Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.http = srv
	s.mu.Unlock()

	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Close()

	s.mu.Lock()
	s.shutdown = true
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
