// internal/domain/network.go
package domain

import (
	"fmt"
	"strings"
)

// Network определяет кластер Solana, через который проходят все lookup'ы реестра.
type Network string

const (
	MainnetBeta Network = "mainnet-beta"
	Testnet     Network = "testnet"
	Devnet      Network = "devnet"
)

// Networks возвращает все поддерживаемые сети в фиксированном порядке.
func Networks() []Network {
	return []Network{MainnetBeta, Testnet, Devnet}
}

// ParseNetwork разбирает имя сети. Допускается "mainnet" как синоним mainnet-beta.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mainnet-beta", "mainnet":
		return MainnetBeta, nil
	case "testnet":
		return Testnet, nil
	case "devnet":
		return Devnet, nil
	default:
		return "", fmt.Errorf("unknown network %q", s)
	}
}

func (n Network) String() string {
	return string(n)
}
