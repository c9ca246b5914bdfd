package bus

import "time"

// EventBus is an in-process pub/sub bus used to fan out board and level
// changes.
//
// Delivery is synchronous: Publish calls every matching handler in the
// caller's goroutine, in subscription order. Handlers subscribed to
// AnyEvent receive every event after the type-specific handlers.
// Handler errors are joined and returned from Publish.
type EventBus interface {
	// Publish delivers event to its subscribers.
	Publish(event Event) error
	// PublishAsync publishes in a separate goroutine. The returned channel
	// receives the joined handler error (or nil) and is then closed.
	PublishAsync(event Event) <-chan error
	// Subscribe registers handler for eventType. Use AnyEvent for all types.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil sub is ignored.
	Unsubscribe(sub Subscription) error
	// Metrics returns a snapshot of the delivery counters.
	Metrics() Metrics
}

// AnyEvent subscribes a handler to every event type.
const AnyEvent = "*"

// Event is an immutable message carried by the bus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

// EventHandler processes a delivered event.
type EventHandler func(Event) error

// Subscription is returned by Subscribe and cancels the registration.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	Cancel() error
}

// Metrics holds delivery counters.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	Subscribers       int
}
