// internal/events/handler.go
package events

import (
	"context"
	"sync"
)

// Handler получает события одного типа. Вызывается из горутины диспетчера,
// поэтому долгую работу обработчик выносит сам.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc позволяет подписать обычную функцию.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Publisher: сторона, которая только публикует (ledger, simulator).
type Publisher interface {
	Publish(event Event) error
}

// NopPublisher отбрасывает события; используется, когда шина не подключена.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) error { return nil }

// AllTypes перечисляет все типы событий леджера.
func AllTypes() []EventType {
	return []EventType{OperationCompleted, OperationFailed, BalanceChanged, BridgeSettled}
}

// Subscription отменяет подписку. Повторный Unsubscribe ничего не делает.
type Subscription interface {
	Unsubscribe()
	EventType() EventType
}

type subscription struct {
	id   string
	bus  *Bus
	typ  EventType
	once sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() { s.bus.unsubscribe(s.id, s.typ) })
}

func (s *subscription) EventType() EventType { return s.typ }
