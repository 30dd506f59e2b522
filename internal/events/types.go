// internal/events/types.go
package events

import (
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// Ledger operation outcomes
	OperationCompleted EventType = "operation.completed"
	OperationFailed    EventType = "operation.failed"

	// A single ledger field changed value
	BalanceChanged EventType = "balance.changed"

	// Bridge record left the pending state
	BridgeSettled EventType = "bridge.settled"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func base(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now()}
}

// OperationCompletedEvent is emitted after a ledger operation commits.
type OperationCompletedEvent struct {
	BaseEvent
	Owner     string
	Operation string
	Message   string
}

// OperationFailedEvent is emitted when a ledger operation is rejected by a business rule.
type OperationFailedEvent struct {
	BaseEvent
	Owner     string
	Operation string
	Kind      string
	Message   string
}

// BalanceChangedEvent is emitted once per changed numeric ledger field.
type BalanceChangedEvent struct {
	BaseEvent
	Owner    string
	Field    string
	OldValue float64
	NewValue float64
}

// Delta returns NewValue - OldValue.
func (e BalanceChangedEvent) Delta() float64 {
	return e.NewValue - e.OldValue
}

// BridgeSettledEvent is emitted when a pending bridge record is completed or failed.
type BridgeSettledEvent struct {
	BaseEvent
	Owner    string
	RecordID string
	Amount   float64
	Status   string
}

func NewOperationCompleted(owner, op, msg string) OperationCompletedEvent {
	return OperationCompletedEvent{BaseEvent: base(OperationCompleted), Owner: owner, Operation: op, Message: msg}
}

func NewOperationFailed(owner, op, kind, msg string) OperationFailedEvent {
	return OperationFailedEvent{BaseEvent: base(OperationFailed), Owner: owner, Operation: op, Kind: kind, Message: msg}
}

func NewBalanceChanged(owner, field string, oldValue, newValue float64) BalanceChangedEvent {
	return BalanceChangedEvent{BaseEvent: base(BalanceChanged), Owner: owner, Field: field, OldValue: oldValue, NewValue: newValue}
}

func NewBridgeSettled(owner, id string, amount float64, status string) BridgeSettledEvent {
	return BridgeSettledEvent{BaseEvent: base(BridgeSettled), Owner: owner, RecordID: id, Amount: amount, Status: status}
}
