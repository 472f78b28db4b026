package websocket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/fine-dashboard/internal/events"
	"github.com/ramonehamilton/fine-dashboard/internal/progress"
)

func TestWebSocketObserver_ShouldHandle(t *testing.T) {
	observer := NewWebSocketObserver(NewHub())

	tests := []struct {
		eventType string
		want      bool
	}{
		{events.ProgressUpdated, true},
		{events.SessionEnded, true},
		{events.DatasetImported, true},
		{events.FlowRebuilt, false},
		{events.SessionStarted, false},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			assert.Equal(t, tt.want, observer.ShouldHandle(tt.eventType))
		})
	}
	assert.Equal(t, "WebSocketObserver", observer.GetName())
}

func TestWebSocketObserver_OnEvent_NilHub(t *testing.T) {
	observer := &WebSocketObserver{name: "TestObserver"}
	assert.NoError(t, observer.OnEvent(events.Event{Type: events.ProgressUpdated}))
}

func TestWebSocketObserver_ForwardsToSession(t *testing.T) {
	hub, url := startHub(t)

	mine := dial(t, url, "s1")
	other := dial(t, url, "s2")
	waitForClients(t, hub, 2)

	dispatcher := events.NewEventDispatcher()
	dispatcher.Register(NewWebSocketObserver(hub))

	dispatcher.Dispatch(events.NewTypedEvent(context.Background(), events.ProgressUpdated, "s1", events.ProgressUpdatedEvent{
		SessionID: "s1",
		Character: "Ross",
		Trigger:   "click",
		Update:    progress.Update{Progress: 10},
	}))
	dispatcher.Dispatch(events.NewTypedEvent(context.Background(), events.SessionEnded, "s2", events.SessionEvent{
		SessionID: "s2",
		Reason:    "expired",
	}))

	got := readEvent(t, mine)
	require.Equal(t, events.ProgressUpdated, got.Type)
	data := got.Data.(map[string]interface{})
	assert.Equal(t, "s1", data["sessionId"])
	assert.EqualValues(t, 10, data["update"].(map[string]interface{})["progress"])

	got = readEvent(t, other)
	assert.Equal(t, events.SessionEnded, got.Type)
}
