package api

import (
	"errors"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/goldium-io/gold-core/internal/transfer"
)

const addressKey = "address"

// requireAddress проверяет base58-адрес в параметре пути.
func requireAddress(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		pk, err := solana.PublicKeyFromBase58(c.Param(param))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
			return
		}
		c.Set(addressKey, pk)
		c.Next()
	}
}

func address(c *gin.Context) solana.PublicKey {
	return c.MustGet(addressKey).(solana.PublicKey)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// writeResult: бизнес-отказ: 422 с телом Result, сбой: 500.
func (s *Server) writeResult(c *gin.Context, res domain.Result, err error) {
	if err != nil {
		s.fault(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) fault(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// transferError раскладывает ошибки Transfer Builder по кодам.
func (s *Server) transferError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, transfer.ErrInvalidAmount):
		badRequest(c, err.Error())
	case errors.Is(err, transfer.ErrSenderAccountMissing):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, transfer.ErrWalletNotConnected):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.fault(c, err)
	}
}
