// internal/api/chain_handlers.go
package api

import (
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gin-gonic/gin"
	"github.com/goldium-io/gold-core/internal/chain"
	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/goldium-io/gold-core/internal/simulator"
	"github.com/goldium-io/gold-core/internal/token"
	"github.com/goldium-io/gold-core/internal/transfer"
)

func (s *Server) getSolBalance(c *gin.Context) {
	owner := address(c)
	sol, err := s.deps.Chain.GetSolBalance(c.Request.Context(), owner)
	if err != nil {
		s.fault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner": owner.String(), "sol": sol})
}

func (s *Server) getTokenBalance(c *gin.Context) {
	owner := address(c)
	tok, ok := s.deps.Registry.Lookup(c.Param("symbol"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown token symbol"})
		return
	}
	mint, ok := tok.Mint(s.deps.Network)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": tok.Symbol + " has no mint on " + s.deps.Network.String()})
		return
	}

	bal, err := s.deps.Chain.GetTokenBalanceRaw(c.Request.Context(), owner, mint)
	if err != nil {
		s.fault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"owner":    owner.String(),
		"symbol":   tok.Symbol,
		"mint":     mint.String(),
		"amount":   bal.UIAmount(),
		"raw":      bal.RawAmount,
		"decimals": bal.Decimals,
	})
}

func (s *Server) getPortfolio(c *gin.Context) {
	var refs []chain.TokenRef
	for _, t := range s.deps.Registry.All() {
		if t.Symbol == token.SymbolSOL {
			continue
		}
		if mint, ok := t.Mint(s.deps.Network); ok {
			refs = append(refs, chain.TokenRef{Symbol: t.Symbol, Mint: mint})
		}
	}

	p, err := s.deps.Chain.GetPortfolio(c.Request.Context(), address(c), refs)
	if err != nil {
		s.fault(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) listTokens(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Registry.All())
}

func (s *Server) validateMint(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Registry.ValidateTokenMint(c.Request.Context(), s.deps.Chain, c.Param("mint")))
}

func (s *Server) tokenActivity(c *gin.Context) {
	c.JSON(http.StatusOK, token.CheckTokenActivity(c.Request.Context(), s.deps.Chain, c.Param("mint")))
}

func (s *Server) bridgeEstimate(c *gin.Context) {
	network := s.deps.Network
	if q := c.Query("network"); q != "" {
		n, err := domain.ParseNetwork(q)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		network = n
	}
	fee, _ := simulator.BridgeGasEstimate(network)
	c.JSON(http.StatusOK, gin.H{"network": network, "feeSOL": fee})
}

type tokenTransferRequest struct {
	Symbol    string   `json:"symbol"`
	Mint      string   `json:"mint"`
	Recipient string   `json:"recipient" binding:"required"`
	Amount    *float64 `json:"amount" binding:"required"`
}

type burnRequest struct {
	Symbol string   `json:"symbol"`
	Mint   string   `json:"mint"`
	Amount *float64 `json:"amount" binding:"required"`
}

type solTransferRequest struct {
	Recipient string   `json:"recipient" binding:"required"`
	Amount    *float64 `json:"amount" binding:"required"`
}

type accountRequest struct {
	Symbol string `json:"symbol"`
	Mint   string `json:"mint"`
	Owner  string `json:"owner" binding:"required"`
}

// signerReady отвечает 503, если кошелёк для подписи не настроен.
func (s *Server) signerReady(c *gin.Context) bool {
	if s.deps.Transfers == nil || s.deps.Signer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": transfer.ErrWalletNotConnected.Error()})
		return false
	}
	return true
}

// resolveMint находит минт и decimals по символу реестра или адресу.
// Для минтов вне реестра decimals читаются с чейна.
func (s *Server) resolveMint(c *gin.Context, symbol, mintAddr string) (solana.PublicKey, uint8, bool) {
	if symbol != "" {
		tok, ok := s.deps.Registry.Lookup(symbol)
		if !ok {
			badRequest(c, "unknown token symbol")
			return solana.PublicKey{}, 0, false
		}
		mint, ok := tok.Mint(s.deps.Network)
		if !ok {
			badRequest(c, tok.Symbol+" has no mint on "+s.deps.Network.String())
			return solana.PublicKey{}, 0, false
		}
		return mint, tok.Decimals, true
	}

	mint, err := solana.PublicKeyFromBase58(mintAddr)
	if err != nil {
		badRequest(c, "symbol or a valid mint is required")
		return solana.PublicKey{}, 0, false
	}
	if tok, _, ok := s.deps.Registry.FindByMint(mint); ok {
		return mint, tok.Decimals, true
	}
	info, err := s.deps.Chain.GetMintInfo(c.Request.Context(), mint, rpc.CommitmentConfirmed)
	if err != nil {
		s.fault(c, err)
		return solana.PublicKey{}, 0, false
	}
	return mint, info.Decimals, true
}

func (s *Server) transferTokens(c *gin.Context) {
	if !s.signerReady(c) {
		return
	}
	var req tokenTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	recipient, err := solana.PublicKeyFromBase58(req.Recipient)
	if err != nil {
		badRequest(c, "invalid recipient address")
		return
	}
	mint, decimals, ok := s.resolveMint(c, req.Symbol, req.Mint)
	if !ok {
		return
	}

	sig, err := s.deps.Transfers.TransferTokens(c.Request.Context(), s.deps.Signer, mint, recipient, *req.Amount, decimals)
	if err != nil {
		s.transferError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature": sig.String()})
}

func (s *Server) transferSOL(c *gin.Context) {
	if !s.signerReady(c) {
		return
	}
	var req solTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	recipient, err := solana.PublicKeyFromBase58(req.Recipient)
	if err != nil {
		badRequest(c, "invalid recipient address")
		return
	}

	sig, err := s.deps.Transfers.TransferSOL(c.Request.Context(), s.deps.Signer, recipient, *req.Amount)
	if err != nil {
		s.transferError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature": sig.String()})
}

func (s *Server) createTokenAccount(c *gin.Context) {
	if !s.signerReady(c) {
		return
	}
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	owner, err := solana.PublicKeyFromBase58(req.Owner)
	if err != nil {
		badRequest(c, "invalid owner address")
		return
	}
	mint, _, ok := s.resolveMint(c, req.Symbol, req.Mint)
	if !ok {
		return
	}

	ata, err := s.deps.Transfers.CreateTokenAccountIfNeeded(c.Request.Context(), s.deps.Signer, mint, owner)
	if err != nil {
		s.transferError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": ata.String()})
}

// burnTokens сжигает токены с ATA подключённого кошелька.
func (s *Server) burnTokens(c *gin.Context) {
	if !s.signerReady(c) {
		return
	}
	var req burnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	mint, decimals, ok := s.resolveMint(c, req.Symbol, req.Mint)
	if !ok {
		return
	}

	sig, err := s.deps.Transfers.BurnTokens(c.Request.Context(), s.deps.Signer, mint, *req.Amount, decimals)
	if err != nil {
		s.transferError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature": sig.String()})
}

// mintTokens выпускает токены получателю; кошелёк должен быть mint authority.
func (s *Server) mintTokens(c *gin.Context) {
	if !s.signerReady(c) {
		return
	}
	var req tokenTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	recipient, err := solana.PublicKeyFromBase58(req.Recipient)
	if err != nil {
		badRequest(c, "invalid recipient address")
		return
	}
	mint, decimals, ok := s.resolveMint(c, req.Symbol, req.Mint)
	if !ok {
		return
	}

	sig, err := s.deps.Transfers.MintTokens(c.Request.Context(), s.deps.Signer, mint, recipient, *req.Amount, decimals)
	if err != nil {
		s.transferError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature": sig.String()})
}
