// internal/simulator/liquidity.go
package simulator

import (
	"context"

	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/goldium-io/gold-core/internal/ledger"
)

// Курсы пула фиксированы. LPPerGold*GoldPerLP == 1, иначе круговая операция
// add/remove перестаёт быть нейтральной.
const (
	LPPerGold = 10.0
	GoldPerLP = 0.1
	PoolFee   = 0.003
	FeeShare  = 0.01
)

// AddLiquidity вносит GOLD в пул и начисляет LP-токены.
func (s *Simulator) AddLiquidity(ctx context.Context, owner string, gold float64) (domain.Result, error) {
	return s.ledger.Update(ctx, owner, "add_liquidity", func(st *ledger.WalletState) domain.Result {
		if !validAmount(gold) {
			return domain.Fail(domain.KindInvalidAmount, "liquidity amount must be greater than zero")
		}
		if st.GoldBalance < gold {
			return domain.Insufficient("GOLD", gold, st.GoldBalance)
		}

		lp := gold * LPPerGold
		st.GoldBalance -= gold
		st.LPTokens += lp
		return domain.Ok("added "+domain.FormatAmount(gold)+" GOLD, received "+domain.FormatAmount(lp)+" LP",
			map[string]interface{}{"lpMinted": lp, "lpTokens": st.LPTokens})
	})
}

// RemoveLiquidity сжигает LP-токены и возвращает GOLD.
func (s *Simulator) RemoveLiquidity(ctx context.Context, owner string, lp float64) (domain.Result, error) {
	return s.ledger.Update(ctx, owner, "remove_liquidity", func(st *ledger.WalletState) domain.Result {
		if !validAmount(lp) {
			return domain.Fail(domain.KindInvalidAmount, "LP amount must be greater than zero")
		}
		if st.LPTokens < lp {
			return domain.Insufficient("LP", lp, st.LPTokens)
		}

		gold := lp * GoldPerLP
		st.LPTokens -= lp
		st.GoldBalance += gold
		return domain.Ok("removed "+domain.FormatAmount(lp)+" LP, received "+domain.FormatAmount(gold)+" GOLD",
			map[string]interface{}{"goldReturned": gold, "lpTokens": st.LPTokens})
	})
}

// ClaimLiquidityFees начисляет комиссию пула; LP-токены не списываются.
func (s *Simulator) ClaimLiquidityFees(ctx context.Context, owner string) (domain.Result, error) {
	return s.ledger.Update(ctx, owner, "claim_liquidity_fees", func(st *ledger.WalletState) domain.Result {
		if st.LPTokens <= 0 {
			return domain.Fail(domain.KindNoPosition, "no LP tokens, nothing to claim")
		}

		fee := st.LPTokens * PoolFee * FeeShare
		st.GoldBalance += fee
		return domain.Ok("claimed "+domain.FormatAmount(fee)+" GOLD in fees",
			map[string]interface{}{"fee": fee})
	})
}
