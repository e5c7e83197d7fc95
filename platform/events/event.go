// Package events is the in-process event bus the workflow modules
// communicate over. It knows nothing about applications, stages, or
// email; event definitions live with the modules that publish them.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event carried on the bus.
type Event interface {
	// EventName uniquely identifies the event type, e.g.
	// "applications.status.changed". Subscriptions key on it.
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp shared by all events. Embed it.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events of one registered type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to subscribed handlers.
type Bus interface {
	// Publish dispatches asynchronously; handler errors are logged by
	// the bus, never returned to the publisher.
	Publish(ctx context.Context, event Event)

	// PublishSync waits for every handler and returns the first error.
	// Tests and the effect interpreter use it for deterministic order.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under the Event.EventName key.
	Subscribe(eventName string, handler Handler)
}
