// internal/chain/portfolio.go
package chain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const portfolioConcurrency = 4

// TokenRef identifies one token to read in a portfolio.
type TokenRef struct {
	Symbol string
	Mint   solana.PublicKey
}

// Holding is one token line of a portfolio. Error is set when that token could not be read.
type Holding struct {
	Symbol  string  `json:"symbol"`
	Mint    string  `json:"mint"`
	Balance float64 `json:"balance"`
	Error   string  `json:"error,omitempty"`
}

type Portfolio struct {
	Owner  string    `json:"owner"`
	SOL    float64   `json:"sol"`
	Tokens []Holding `json:"tokens"`
}

// GetPortfolio reads SOL and every token balance concurrently.
// A failed SOL read fails the whole call; a failed token read is reported on its line.
func (a *Accessor) GetPortfolio(ctx context.Context, owner solana.PublicKey, tokens []TokenRef) (Portfolio, error) {
	p := Portfolio{
		Owner:  owner.String(),
		Tokens: make([]Holding, len(tokens)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(portfolioConcurrency)

	g.Go(func() error {
		sol, err := a.GetSolBalance(gctx, owner)
		if err != nil {
			return err
		}
		p.SOL = sol
		return nil
	})

	for i, ref := range tokens {
		i, ref := i, ref
		g.Go(func() error {
			h := Holding{Symbol: ref.Symbol, Mint: ref.Mint.String()}
			bal, err := a.GetTokenBalance(gctx, owner, ref.Mint)
			if err != nil {
				a.logger.Warn("portfolio token read failed",
					zap.String("symbol", ref.Symbol),
					zap.Error(err))
				h.Error = err.Error()
			}
			h.Balance = bal
			p.Tokens[i] = h
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Portfolio{}, err
	}
	return p, nil
}
