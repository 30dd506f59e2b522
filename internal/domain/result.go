// internal/domain/result.go
package domain

import "fmt"

// FailureKind классифицирует ожидаемые бизнес-отказы.
type FailureKind string

const (
	KindNone                FailureKind = "none"
	KindInsufficientBalance FailureKind = "insufficient_balance"
	KindLockActive          FailureKind = "lock_active"
	KindCooldownActive      FailureKind = "cooldown_active"
	KindInvalidAmount       FailureKind = "invalid_amount"
	KindNoPosition          FailureKind = "no_position"
	KindUnsupportedNetwork  FailureKind = "unsupported_network"
)

// Result is the uniform outcome of a simulated ledger operation.
// Message is meant to be shown to the user verbatim.
type Result struct {
	Success bool                   `json:"success"`
	Kind    FailureKind            `json:"kind"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Ok builds a successful result.
func Ok(message string, data map[string]interface{}) Result {
	return Result{Success: true, Kind: KindNone, Message: message, Data: data}
}

// Fail builds a business-rule failure.
func Fail(kind FailureKind, format string, args ...interface{}) Result {
	return Result{Success: false, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Insufficient формирует отказ с указанием требуемой и доступной суммы.
func Insufficient(symbol string, required, available float64) Result {
	return Fail(KindInsufficientBalance,
		"insufficient %s balance: required %s, available %s",
		symbol, FormatAmount(required), FormatAmount(available))
}
