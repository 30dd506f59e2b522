// internal/token/overrides.go
package token

import (
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/goldium-io/gold-core/internal/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type overrideFile struct {
	Tokens []overrideEntry `yaml:"tokens"`
}

type overrideEntry struct {
	Symbol   string            `yaml:"symbol"`
	Name     string            `yaml:"name"`
	Decimals *uint8            `yaml:"decimals"`
	Mints    map[string]string `yaml:"mints"`
}

// LoadOverrides читает YAML-файл и добавляет или переопределяет записи реестра.
// Файл проверяется целиком до применения: при ошибке реестр не меняется.
func (r *Registry) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read token overrides: %w", err)
	}

	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse token overrides: %w", err)
	}

	resolved := make([]Token, 0, len(file.Tokens))
	for i, e := range file.Tokens {
		t, err := r.resolve(e)
		if err != nil {
			return fmt.Errorf("token override #%d: %w", i+1, err)
		}
		resolved = append(resolved, t)
	}

	for _, t := range resolved {
		r.put(t)
		r.logger.Info("token override applied",
			zap.String("symbol", t.Symbol),
			zap.Uint8("decimals", t.Decimals),
			zap.Int("networks", len(t.Mints)))
	}
	return nil
}

// resolve сливает запись с существующим токеном либо создаёт новый.
func (r *Registry) resolve(e overrideEntry) (Token, error) {
	symbol := normalize(e.Symbol)
	if symbol == "" {
		return Token{}, errors.New("symbol is required")
	}

	base, exists := r.Lookup(symbol)
	if !exists {
		if e.Name == "" || e.Decimals == nil || len(e.Mints) == 0 {
			return Token{}, fmt.Errorf("new token %s needs name, decimals and at least one mint", symbol)
		}
		base = Token{Symbol: symbol, Mints: make(map[domain.Network]solana.PublicKey)}
	}
	if e.Name != "" {
		base.Name = e.Name
	}
	if e.Decimals != nil {
		base.Decimals = *e.Decimals
	}
	for netName, addr := range e.Mints {
		n, err := domain.ParseNetwork(netName)
		if err != nil {
			return Token{}, err
		}
		mint, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			return Token{}, fmt.Errorf("%s mint on %s: %w", symbol, n, err)
		}
		base.Mints[n] = mint
	}
	return base, nil
}
