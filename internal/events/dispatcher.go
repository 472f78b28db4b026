// Package events distributes dashboard domain events to registered observers.
package events

import (
	"context"
	"log"
	"sync"
)

// Event is a domain event.
type Event struct {
	// Type is the event type, e.g. "flow:rebuilt" or "progress:updated".
	Type string

	// SessionID scopes the event to one viewer session. Empty means the
	// event concerns every viewer.
	SessionID string

	// Payload is one of the typed payloads in messages.go.
	Payload any

	Context context.Context
}

// Observer is notified of dispatched events it chooses to handle.
type Observer interface {
	OnEvent(event Event) error

	// GetName returns a human-readable name for logging.
	GetName() string

	ShouldHandle(eventType string) bool
}

// EventDispatcher fans events out to observers. Safe for concurrent use.
type EventDispatcher struct {
	observers []Observer
	mu        sync.RWMutex
}

// NewEventDispatcher creates a dispatcher with no observers.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		observers: make([]Observer, 0),
	}
}

// Register adds an observer.
func (d *EventDispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observers = append(d.observers, observer)
	log.Printf("[EventDispatcher] Registered observer: %s", observer.GetName())
}

// Unregister removes an observer. Unknown observers are ignored.
func (d *EventDispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, obs := range d.observers {
		if obs == observer {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			log.Printf("[EventDispatcher] Unregistered observer: %s", observer.GetName())
			return
		}
	}
}

func (d *EventDispatcher) snapshot() []Observer {
	d.mu.RLock()
	defer d.mu.RUnlock()

	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	return observers
}

// Dispatch notifies observers in registration order. An observer error is
// logged and does not stop delivery to the rest.
func (d *EventDispatcher) Dispatch(event Event) {
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		if err := observer.OnEvent(event); err != nil {
			log.Printf("[EventDispatcher] Observer %s failed to handle event %s: %v",
				observer.GetName(), event.Type, err)
		}
	}
}

// DispatchAsync notifies each observer on its own goroutine.
func (d *EventDispatcher) DispatchAsync(event Event) {
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		go func(obs Observer) {
			if err := obs.OnEvent(event); err != nil {
				log.Printf("[EventDispatcher] Observer %s failed to handle event %s: %v",
					obs.GetName(), event.Type, err)
			}
		}(observer)
	}
}

// ObserverCount returns the number of registered observers.
func (d *EventDispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

// NewTypedEvent creates an event carrying a typed payload.
func NewTypedEvent[T any](ctx context.Context, eventType, sessionID string, payload T) Event {
	return Event{
		Type:      eventType,
		SessionID: sessionID,
		Payload:   payload,
		Context:   ctx,
	}
}

// GetTypedData extracts the payload of an event as T.
func GetTypedData[T any](event Event) (T, bool) {
	typed, ok := event.Payload.(T)
	return typed, ok
}
