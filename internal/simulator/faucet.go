// internal/simulator/faucet.go
package simulator

import (
	"context"
	"time"

	"github.com/goldium-io/gold-core/internal/domain"
	"github.com/goldium-io/gold-core/internal/ledger"
)

// FaucetCooldown: минимальный интервал между выдачами одному кошельку.
const FaucetCooldown = 24 * time.Hour

var faucetAmounts = map[domain.Network]float64{
	domain.MainnetBeta: 10,
	domain.Testnet:     50,
	domain.Devnet:      100,
}

// оценка комиссии бриджа в SOL, только для отображения
var bridgeGas = map[domain.Network]float64{
	domain.MainnetBeta: 0.005,
	domain.Testnet:     0.001,
	domain.Devnet:      0.0005,
}

// FaucetAmount возвращает размер выдачи для сети.
func FaucetAmount(n domain.Network) (float64, bool) {
	v, ok := faucetAmounts[n]
	return v, ok
}

// BridgeGasEstimate возвращает ориентировочную комиссию бриджа в SOL.
func BridgeGasEstimate(n domain.Network) (float64, bool) {
	v, ok := bridgeGas[n]
	return v, ok
}

// Faucet выдаёт тестовые GOLD не чаще раза в сутки. lastClaimTime меняется только при успехе.
func (s *Simulator) Faucet(ctx context.Context, owner string, network domain.Network) (domain.Result, error) {
	return s.ledger.Update(ctx, owner, "faucet", func(st *ledger.WalletState) domain.Result {
		amount, ok := FaucetAmount(network)
		if !ok {
			return domain.Fail(domain.KindUnsupportedNetwork, "faucet is not available on %q", network)
		}

		now := s.now()
		if st.LastClaimTime != 0 {
			next := time.Unix(st.LastClaimTime, 0).Add(FaucetCooldown)
			if now.Before(next) {
				return domain.Fail(domain.KindCooldownActive,
					"faucet cooldown active, try again in %s", domain.FormatDuration(next.Sub(now)))
			}
		}

		st.GoldBalance += amount
		st.LastClaimTime = now.Unix()
		return domain.Ok("received "+domain.FormatAmount(amount)+" GOLD from the "+network.String()+" faucet",
			map[string]interface{}{"amount": amount, "goldBalance": st.GoldBalance})
	})
}
