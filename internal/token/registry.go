// internal/token/registry.go
package token

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/goldium-io/gold-core/internal/domain"
	"go.uber.org/zap"
)

const (
	SymbolGOLD = "GOLD"
	SymbolSOL  = "SOL"
	SymbolUSDC = "USDC"
)

// Token: полностью заполненная запись реестра. Создаётся только реестром.
type Token struct {
	Symbol   string                              `json:"symbol"`
	Name     string                              `json:"name"`
	Decimals uint8                               `json:"decimals"`
	Mints    map[domain.Network]solana.PublicKey `json:"mints"`
}

// Mint возвращает адрес минта в сети n.
func (t Token) Mint(n domain.Network) (solana.PublicKey, bool) {
	m, ok := t.Mints[n]
	return m, ok
}

func (t Token) clone() Token {
	mints := make(map[domain.Network]solana.PublicKey, len(t.Mints))
	for n, m := range t.Mints {
		mints[n] = m
	}
	t.Mints = mints
	return t
}

var wrappedSOL = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

var builtins = []Token{
	{
		Symbol:   SymbolGOLD,
		Name:     "Goldium",
		Decimals: 9,
		Mints: map[domain.Network]solana.PublicKey{
			domain.MainnetBeta: solana.MustPublicKeyFromBase58("5rkHNAxhWVvqLV2hEhWi58ADmr2bhPxK7H8CGFuzuJ8J"),
			domain.Testnet:     solana.MustPublicKeyFromBase58("4UdsHNHZDafAxLWFsu7WCKZkQWXo8HWh4NtC2vja8ZLA"),
			domain.Devnet:      solana.MustPublicKeyFromBase58("98nyBfyEQE2HiVyuxGUAqK4bQ38qCFrfVbAGtQTY2pQw"),
		},
	},
	{
		Symbol:   SymbolSOL,
		Name:     "Wrapped SOL",
		Decimals: 9,
		Mints: map[domain.Network]solana.PublicKey{
			domain.MainnetBeta: wrappedSOL,
			domain.Testnet:     wrappedSOL,
			domain.Devnet:      wrappedSOL,
		},
	},
	{
		Symbol:   SymbolUSDC,
		Name:     "USD Coin",
		Decimals: 6,
		Mints: map[domain.Network]solana.PublicKey{
			domain.MainnetBeta: solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
			domain.Testnet:     solana.MustPublicKeyFromBase58("643KEkqqU5HP1ndDHnLZCuGbsmRgjXSLJpEq7rg52DJW"),
			domain.Devnet:      solana.MustPublicKeyFromBase58("4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU"),
		},
	},
}

// Registry: таблица symbol → Token. После загрузки overrides не меняется.
type Registry struct {
	mu     sync.RWMutex
	tokens map[string]Token
	logger *zap.Logger
}

// NewRegistry создаёт реестр со встроенными токенами GOLD, SOL и USDC.
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		tokens: make(map[string]Token, len(builtins)),
		logger: logger.Named("token-registry"),
	}
	for _, t := range builtins {
		r.tokens[t.Symbol] = t.clone()
	}
	return r
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Lookup ищет токен по символу без учёта регистра.
func (r *Registry) Lookup(symbol string) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[normalize(symbol)]
	if !ok {
		return Token{}, false
	}
	return t.clone(), true
}

// MintFor возвращает минт токена в заданной сети.
func (r *Registry) MintFor(symbol string, network domain.Network) (solana.PublicKey, error) {
	t, ok := r.Lookup(symbol)
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("unknown token %q", symbol)
	}
	m, ok := t.Mint(network)
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("token %s has no mint on %s", t.Symbol, network)
	}
	return m, nil
}

// All returns every token sorted by symbol.
func (r *Registry) All() []Token {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Token, 0, len(r.tokens))
	for _, t := range r.tokens {
		out = append(out, t.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// FindByMint ищет токен по адресу минта в любой сети.
// Для SOL один минт встречается во всех сетях; возвращается первая по порядку Networks().
func (r *Registry) FindByMint(mint solana.PublicKey) (Token, domain.Network, bool) {
	for _, t := range r.All() {
		for _, n := range domain.Networks() {
			if m, ok := t.Mints[n]; ok && m.Equals(mint) {
				return t, n, true
			}
		}
	}
	return Token{}, "", false
}

// IsValidGoldMint проверяет адрес на принадлежность к известным минтам GOLD.
func (r *Registry) IsValidGoldMint(address string) bool {
	mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(address))
	if err != nil {
		return false
	}
	gold, ok := r.Lookup(SymbolGOLD)
	if !ok {
		return false
	}
	for _, m := range gold.Mints {
		if m.Equals(mint) {
			return true
		}
	}
	return false
}

func (r *Registry) put(t Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.Symbol] = t
}
