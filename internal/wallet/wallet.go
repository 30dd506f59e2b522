// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Wallet: локальный keypair, реализующий transfer.Signer. Ключ наружу не отдаётся.
type Wallet struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey

	mu       sync.RWMutex
	ataCache map[solana.PublicKey]solana.PublicKey // Кеш для ассоциированных адресов токен-аккаунтов (ATA)
}

// NewWallet создаёт новый кошелёк из base58-encoded приватного ключа.
func NewWallet(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(strings.TrimSpace(privateKeyBase58))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privateKeyBytes) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(privateKeyBytes))
	}
	return FromPrivateKey(solana.PrivateKey(privateKeyBytes)), nil
}

// FromPrivateKey оборачивает готовый ключ.
func FromPrivateKey(key solana.PrivateKey) *Wallet {
	return &Wallet{
		privateKey: key,
		publicKey:  key.PublicKey(),
		ataCache:   make(map[solana.PublicKey]solana.PublicKey),
	}
}

// LoadWallets загружает кошельки из CSV-файла с колонками: [Name, PrivateKeyBase58].
// Строки с некорректным ключом пропускаются; их имена возвращаются в ошибке вместе с результатом.
func LoadWallets(path string) (map[string]*Wallet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, errors.New("CSV file is empty or missing data")
	}

	wallets := make(map[string]*Wallet)
	var skipped []string
	for _, record := range records[1:] {
		if len(record) != 2 {
			continue
		}
		name := strings.TrimSpace(record[0])
		w, err := NewWallet(record[1])
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		wallets[name] = w
	}
	if len(skipped) > 0 {
		return wallets, fmt.Errorf("skipped wallets with invalid keys: %s", strings.Join(skipped, ", "))
	}
	return wallets, nil
}

// PublicKey возвращает публичный ключ кошелька.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.publicKey
}

// SignTransaction подписывает транзакцию с помощью приватного ключа кошелька.
func (w *Wallet) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.publicKey) {
			return &w.privateKey
		}
		return nil
	})
	return err
}

// SignAllTransactions подписывает пакет; первая ошибка прерывает обработку.
func (w *Wallet) SignAllTransactions(ctx context.Context, txs []*solana.Transaction) error {
	for i, tx := range txs {
		if err := w.SignTransaction(ctx, tx); err != nil {
			return fmt.Errorf("sign transaction %d: %w", i, err)
		}
	}
	return nil
}

// GetATA возвращает адрес ассоциированного токен-аккаунта (ATA) для заданного токена (mint).
// Если адрес уже был вычислен ранее, возвращается значение из кеша.
func (w *Wallet) GetATA(mint solana.PublicKey) (solana.PublicKey, error) {
	w.mu.RLock()
	ata, ok := w.ataCache[mint]
	w.mu.RUnlock()
	if ok {
		return ata, nil
	}

	ata, _, err := solana.FindAssociatedTokenAddress(w.publicKey, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}

	w.mu.Lock()
	w.ataCache[mint] = ata
	w.mu.Unlock()
	return ata, nil
}

// String возвращает строковое представление кошелька (его публичный ключ).
func (w *Wallet) String() string {
	return w.publicKey.String()
}
