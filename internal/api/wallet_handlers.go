// internal/api/wallet_handlers.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goldium-io/gold-core/internal/domain"
)

type amountRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
}

type swapRequest struct {
	From   string   `json:"from" binding:"required"`
	To     string   `json:"to" binding:"required"`
	Amount *float64 `json:"amount" binding:"required"`
}

type bridgeRequest struct {
	Source string   `json:"source"`
	Target string   `json:"target" binding:"required"`
	Amount *float64 `json:"amount" binding:"required"`
}

type faucetRequest struct {
	Network string `json:"network"`
}

func (s *Server) getBalances(c *gin.Context) {
	b, err := s.deps.Ledger.GetUserBalances(c.Request.Context(), address(c).String())
	if err != nil {
		s.fault(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) initWallet(c *gin.Context) {
	owner := address(c).String()
	if err := s.deps.Ledger.InitializeTestEnvironment(c.Request.Context(), owner); err != nil {
		s.fault(c, err)
		return
	}
	s.getBalances(c)
}

func (s *Server) resetWallet(c *gin.Context) {
	owner := address(c).String()
	if err := s.deps.Ledger.ResetTestEnvironment(c.Request.Context(), owner); err != nil {
		s.fault(c, err)
		return
	}
	s.getBalances(c)
}

func (s *Server) getStake(c *gin.Context) {
	pos, err := s.deps.Staking.Position(c.Request.Context(), address(c).String())
	if err != nil {
		s.fault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"position":      pos,
		"lockRemaining": domain.FormatDuration(pos.LockRemaining),
	})
}

func (s *Server) stake(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.deps.Staking.Stake(c.Request.Context(), address(c).String(), *req.Amount)
	s.writeResult(c, res, err)
}

func (s *Server) unstake(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.deps.Staking.Unstake(c.Request.Context(), address(c).String(), *req.Amount)
	s.writeResult(c, res, err)
}

func (s *Server) claimRewards(c *gin.Context) {
	res, err := s.deps.Staking.ClaimRewards(c.Request.Context(), address(c).String())
	s.writeResult(c, res, err)
}

func (s *Server) swap(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.deps.Simulator.Swap(c.Request.Context(), address(c).String(), req.From, req.To, *req.Amount)
	s.writeResult(c, res, err)
}

func (s *Server) addLiquidity(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.deps.Simulator.AddLiquidity(c.Request.Context(), address(c).String(), *req.Amount)
	s.writeResult(c, res, err)
}

func (s *Server) removeLiquidity(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := s.deps.Simulator.RemoveLiquidity(c.Request.Context(), address(c).String(), *req.Amount)
	s.writeResult(c, res, err)
}

func (s *Server) claimLiquidityFees(c *gin.Context) {
	res, err := s.deps.Simulator.ClaimLiquidityFees(c.Request.Context(), address(c).String())
	s.writeResult(c, res, err)
}

func (s *Server) bridge(c *gin.Context) {
	var req bridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Source == "" {
		req.Source = "solana"
	}
	res, err := s.deps.Simulator.Bridge(c.Request.Context(), address(c).String(), req.Source, req.Target, *req.Amount)
	s.writeResult(c, res, err)
}

func (s *Server) bridgeHistory(c *gin.Context) {
	hist, err := s.deps.Simulator.BridgeHistory(c.Request.Context(), address(c).String())
	if err != nil {
		s.fault(c, err)
		return
	}
	if hist == nil {
		hist = []domain.BridgeRecord{}
	}
	c.JSON(http.StatusOK, hist)
}

func (s *Server) faucet(c *gin.Context) {
	var req faucetRequest
	// тело необязательно
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	network := s.deps.Network
	if req.Network != "" {
		n, err := domain.ParseNetwork(req.Network)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		network = n
	}

	res, err := s.deps.Simulator.Faucet(c.Request.Context(), address(c).String(), network)
	s.writeResult(c, res, err)
}
