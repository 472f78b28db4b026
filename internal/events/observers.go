package events

import (
	"log"
)

// LoggingObserver logs every event. Verbose mode includes the payload.
type LoggingObserver struct {
	name    string
	verbose bool
}

// NewLoggingObserver creates a new observer that logs events.
func NewLoggingObserver(verbose bool) *LoggingObserver {
	return &LoggingObserver{
		name:    "LoggingObserver",
		verbose: verbose,
	}
}

// OnEvent logs the event.
func (o *LoggingObserver) OnEvent(event Event) error {
	switch {
	case o.verbose:
		log.Printf("[%s] Event: %s, Session: %q, Payload: %+v", o.name, event.Type, event.SessionID, event.Payload)
	case event.SessionID != "":
		log.Printf("[%s] Event: %s, Session: %s", o.name, event.Type, event.SessionID)
	default:
		log.Printf("[%s] Event: %s", o.name, event.Type)
	}
	return nil
}

// GetName returns the observer's name.
func (o *LoggingObserver) GetName() string {
	return o.name
}

// ShouldHandle returns true for all events.
func (o *LoggingObserver) ShouldHandle(eventType string) bool {
	return true
}

// FuncObserver adapts a function to the Observer interface. An empty type
// list handles every event.
type FuncObserver struct {
	Name  string
	Types []string
	Fn    func(Event) error
}

// OnEvent calls Fn.
func (o *FuncObserver) OnEvent(event Event) error {
	return o.Fn(event)
}

// GetName returns the observer's name.
func (o *FuncObserver) GetName() string {
	return o.Name
}

// ShouldHandle reports whether eventType is in Types.
func (o *FuncObserver) ShouldHandle(eventType string) bool {
	if len(o.Types) == 0 {
		return true
	}
	for _, t := range o.Types {
		if t == eventType {
			return true
		}
	}
	return false
}
