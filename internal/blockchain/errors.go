// internal/blockchain/errors.go
package blockchain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAccountNotFound возникает, когда аккаунт не существует в цепи
	ErrAccountNotFound = errors.New("account not found")

	// ErrRateLimit возникает при превышении лимита запросов
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrTimeout возникает при превышении времени ожидания
	ErrTimeout = errors.New("request timeout")

	// ErrInvalidResponse возникает при получении некорректного ответа
	ErrInvalidResponse = errors.New("invalid RPC response")

	// ErrConnectionFailed возникает при ошибке подключения
	ErrConnectionFailed = errors.New("connection failed")

	// ErrTransactionFailed: транзакция попала в блок, но завершилась ошибкой
	ErrTransactionFailed = errors.New("transaction failed")
)

// Error представляет ошибку RPC с дополнительным контекстом
type Error struct {
	Err     error
	NodeURL string
	Method  string
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	return fmt.Sprintf("RPC error [%s] at %s: %v", e.Method, e.NodeURL, e.Err)
}

// Unwrap возвращает оригинальную ошибку
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError создает новую ошибку RPC
func NewError(err error, nodeURL, method string) error {
	return &Error{
		Err:     err,
		NodeURL: nodeURL,
		Method:  method,
	}
}

// IsAccountNotFound проверяет, что аккаунт отсутствует в цепи.
// Текст ошибки не анализируется: "Method not found" и подобные ответы узла
// означают сбой RPC, а не пустой аккаунт.
func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

// IsBlockhashNotFound: временная ошибка, после которой транзакцию можно пересобрать.
func IsBlockhashNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BlockhashNotFound")
}
