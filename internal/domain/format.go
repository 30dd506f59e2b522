// internal/domain/format.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FormatDuration печатает оставшееся время в виде "6d 23h 59m".
// Остаток меньше минуты округляется вверх, чтобы не показывать "0m" при активной блокировке.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	minutes := int64(d / time.Minute)
	if d%time.Minute != 0 {
		minutes++
	}
	days := minutes / (24 * 60)
	hours := (minutes % (24 * 60)) / 60
	mins := minutes % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// FormatAmount prints an amount with at most 9 fractional digits and no trailing zeros.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).Round(9).String()
}
