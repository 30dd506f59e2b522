// internal/domain/bridge.go
package domain

import "time"

type BridgeStatus string

const (
	BridgePending   BridgeStatus = "pending"
	BridgeCompleted BridgeStatus = "completed"
	BridgeFailed    BridgeStatus = "failed"
)

// BridgeRecord хранится в поле bridgeHistory кошелька как элемент JSON-массива.
// После перехода в completed/failed меняется только Status.
type BridgeRecord struct {
	ID            string       `json:"id"`
	SourceNetwork string       `json:"sourceNetwork"`
	TargetNetwork string       `json:"targetNetwork"`
	Amount        float64      `json:"amount"`
	Status        BridgeStatus `json:"status"`
	Timestamp     int64        `json:"timestamp"`
	CompletedAt   int64        `json:"completedAt,omitempty"`
}

// Age возвращает возраст записи относительно now.
func (r BridgeRecord) Age(now time.Time) time.Duration {
	return now.Sub(time.Unix(r.Timestamp, 0))
}
