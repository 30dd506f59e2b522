// internal/simulator/swap.go
package simulator

import (
	"context"

	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/goldium-io/gold-core/internal/ledger"
)

// SlippageFactor: доля выхода свопа после фиксированного проскальзывания 2%.
const SlippageFactor = 0.98

// Swap меняет amount from-токена на amount*0.98 to-токена. Поддерживаются GOLD и SOL.
func (s *Simulator) Swap(ctx context.Context, owner, from, to string, amount float64) (domain.Result, error) {
	from, to = normalizeSymbol(from), normalizeSymbol(to)

	return s.ledger.Update(ctx, owner, "swap", func(st *ledger.WalletState) domain.Result {
		if !validAmount(amount) {
			return domain.Fail(domain.KindInvalidAmount, "swap amount must be greater than zero")
		}
		if from == to {
			return domain.Fail(domain.KindInvalidAmount, "cannot swap %s to itself", from)
		}
		in, ok := swappable(st, from)
		if !ok {
			return domain.Fail(domain.KindInvalidAmount, "unsupported token %q", from)
		}
		out, ok := swappable(st, to)
		if !ok {
			return domain.Fail(domain.KindInvalidAmount, "unsupported token %q", to)
		}
		if *in < amount {
			return domain.Insufficient(from, amount, *in)
		}

		output := amount * SlippageFactor
		*in -= amount
		*out += output

		return domain.Ok("swapped "+domain.FormatAmount(amount)+" "+from+" for "+domain.FormatAmount(output)+" "+to,
			map[string]interface{}{
				"input":  amount,
				"output": output,
				"from":   from,
				"to":     to,
			})
	})
}

func swappable(st *ledger.WalletState, symbol string) (*float64, bool) {
	if symbol != "GOLD" && symbol != "SOL" {
		return nil, false
	}
	return st.Balance(symbol)
}
