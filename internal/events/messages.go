package events

import (
	"github.com/ramonehamilton/fine-dashboard/internal/dataset"
	"github.com/ramonehamilton/fine-dashboard/internal/progress"
)

// Event types.
const (
	FlowRebuilt     = "flow:rebuilt"
	FlowReset       = "flow:reset"
	ProgressUpdated = "progress:updated"
	SessionStarted  = "session:started"
	SessionEnded    = "session:ended"
	DatasetImported = "dataset:imported"
)

// FlowRebuiltEvent is the payload for flow:rebuilt events.
type FlowRebuiltEvent struct {
	Filter dataset.FlowFilter `json:"filter"`
	Nodes  int                `json:"nodes"`
	Links  int                `json:"links"`
	Events int                `json:"events"` // filtered flow events behind the diagram
}

// FlowResetEvent is the payload for flow:reset events.
type FlowResetEvent struct {
	Locations    int `json:"locations"`
	Counterparts int `json:"counterparts"`
}

// ProgressUpdatedEvent is the payload for progress:updated events.
type ProgressUpdatedEvent struct {
	SessionID string          `json:"sessionId"`
	Character string          `json:"character"`
	Trigger   string          `json:"trigger"` // "filter" or "click"
	Update    progress.Update `json:"update"`
}

// SessionEvent is the payload for session:started and session:ended events.
type SessionEvent struct {
	SessionID string `json:"sessionId"`
	Reason    string `json:"reason,omitempty"`
}

// DatasetImportedEvent is the payload for dataset:imported events.
type DatasetImportedEvent struct {
	Source     string `json:"source"`
	Dialogues  int    `json:"dialogues"`
	Sentences  int    `json:"sentences"`
	Pauses     int    `json:"pauses"`
	FlowEvents int    `json:"flowEvents"`
}
