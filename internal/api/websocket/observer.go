package websocket

import (
	"log"

	"github.com/ramonehamilton/fine-dashboard/internal/events"
)

// WebSocketObserver forwards session events to the clients of that session.
// Events without a session go to every client.
type WebSocketObserver struct {
	name string
	hub  *Hub
}

// NewWebSocketObserver creates a new observer that forwards events to WebSocket clients.
func NewWebSocketObserver(hub *Hub) *WebSocketObserver {
	return &WebSocketObserver{
		name: "WebSocketObserver",
		hub:  hub,
	}
}

// OnEvent forwards the event payload to the subscribed clients.
func (o *WebSocketObserver) OnEvent(event events.Event) error {
	if o.hub == nil {
		log.Printf("[%s] Cannot emit event %s: hub is nil", o.name, event.Type)
		return nil
	}

	o.hub.Publish(event.SessionID, Event{
		Type: event.Type,
		Data: event.Payload,
	})
	return nil
}

// GetName returns the observer's name.
func (o *WebSocketObserver) GetName() string {
	return o.name
}

// ShouldHandle selects the events clients render: progress updates, session
// expiry, and dataset reloads.
func (o *WebSocketObserver) ShouldHandle(eventType string) bool {
	switch eventType {
	case events.ProgressUpdated, events.SessionEnded, events.DatasetImported:
		return true
	}
	return false
}

var _ events.Observer = (*WebSocketObserver)(nil)
