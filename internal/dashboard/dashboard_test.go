package dashboard

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/fine-dashboard/internal/dataset"
	"github.com/ramonehamilton/fine-dashboard/internal/events"
	"github.com/ramonehamilton/fine-dashboard/internal/progress"
	"github.com/ramonehamilton/fine-dashboard/internal/sankey"
	"github.com/ramonehamilton/fine-dashboard/internal/session"
	"github.com/ramonehamilton/fine-dashboard/internal/storage/models"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func testStore() *dataset.Store {
	flow := func(season, location, counterpart string) *models.FlowEventRow {
		return &models.FlowEventRow{Season: strPtr(season), Location: strPtr(location), Counterpart: strPtr(counterpart)}
	}
	return dataset.New(&models.Dataset{
		Dialogues: []*models.DialogueSentiment{
			{Person: "Ross", Dialogue: strPtr("I'm fine."), ForcedPositivity: 0.8, Fine: intPtr(1)},
			{Person: "Ross", Dialogue: strPtr("Oh, okay."), Oh: intPtr(1), Okay: intPtr(1)},
			{Person: "Ross", Dialogue: strPtr("Hi.")},
			{Person: "Rachel", Dialogue: strPtr("Oh my God."), Oh: intPtr(1)},
		},
		Sentences: []*models.SentenceType{
			{Person: "Ross", Declarative: 1},
			{Person: "Ross", Interrogative: 1},
			{Person: "Ross", Exclamatory: 1},
		},
		Pauses: []*models.ModalityPause{
			{Person: "Ross", Pauses: 1},
		},
		FlowEvents: []*models.FlowEventRow{
			flow("1", "Central Perk", "Rachel"),
			flow("1", "Central Perk", "Rachel"),
			flow("2", "Central Perk", "Monica"),
		},
	}, dataset.Options{})
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) observer() *events.FuncObserver {
	return &events.FuncObserver{Name: "recorder", Fn: func(e events.Event) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
		return nil
	}}
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func newTestServices(t *testing.T) (*Services, *recorder) {
	t.Helper()
	svc := NewServices(testStore(), Options{
		Characters: []string{"Ross", "Rachel", "Joey"},
	})
	rec := &recorder{}
	svc.Dispatcher.Register(rec.observer())
	return svc, rec
}

func TestFlowFacade_Filters(t *testing.T) {
	svc, _ := newTestServices(t)
	f := NewFlowFacade(svc)

	filters := f.Filters()
	assert.Equal(t, []string{"Central Perk"}, filters.Locations)
	assert.Equal(t, []string{"Monica", "Rachel"}, filters.Counterparts)
}

func TestFlowFacade_Diagram(t *testing.T) {
	svc, rec := newTestServices(t)
	f := NewFlowFacade(svc)

	d, err := f.Diagram(context.Background(), FlowRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, d.Events)
	assert.Len(t, d.Graph.Nodes, 5)
	assert.Len(t, d.Graph.Links, 4)

	d, err = f.Diagram(context.Background(), FlowRequest{Location: "Central Perk", Counterpart: "Rachel"})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Events)
	assert.Len(t, d.Graph.Nodes, 3)
	require.Len(t, d.Graph.Links, 2)
	assert.Equal(t, 2, d.Graph.Links[0].Value)

	assert.Equal(t, []string{events.FlowRebuilt, events.FlowRebuilt}, rec.types())
	payload, ok := events.GetTypedData[events.FlowRebuiltEvent](rec.last())
	require.True(t, ok)
	assert.Equal(t, 2, payload.Links)

	assert.Equal(t, uint64(2), svc.Metrics.FlowRebuilds.Load())
	assert.Equal(t, 2, svc.Metrics.BuildLatency.Count())
}

func TestFlowFacade_DiagramWithHover(t *testing.T) {
	svc, _ := newTestServices(t)
	f := NewFlowFacade(svc)

	d, err := f.Diagram(context.Background(), FlowRequest{Hover: &sankey.Hover{Kind: sankey.HoverLink, Index: 0}})
	require.NoError(t, err)
	assert.Contains(t, d.Graph.Links[0].Color, ",0.8)")
	assert.Contains(t, d.Graph.Links[1].Color, ",0.3)")
	assert.Equal(t, uint64(1), svc.Metrics.Hovers.Load())

	// A hover index from a larger diagram is ignored.
	d, err = f.Diagram(context.Background(), FlowRequest{
		Counterpart: "Monica",
		Hover:       &sankey.Hover{Kind: sankey.HoverLink, Index: 3},
	})
	require.NoError(t, err)
	for _, l := range d.Graph.Links {
		assert.Contains(t, l.Color, ",0.3)")
	}
}

func TestFlowFacade_NoMatches(t *testing.T) {
	svc, _ := newTestServices(t)
	f := NewFlowFacade(svc)

	d, err := f.Diagram(context.Background(), FlowRequest{Location: "Central Perk", Counterpart: "Joey"})
	require.NoError(t, err)
	assert.True(t, d.Graph.Empty())
	assert.Zero(t, d.Events)
}

func TestFlowFacade_Reset(t *testing.T) {
	svc, rec := newTestServices(t)
	f := NewFlowFacade(svc)

	d, err := f.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dataset.FlowFilter{}, d.Filter)
	assert.Equal(t, 3, d.Events)
	assert.Equal(t, []string{events.FlowRebuilt, events.FlowReset}, rec.types())
}

func TestFlowFacade_CancelledContext(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFlowFacade(svc).Diagram(ctx, FlowRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFlowFacade_RenderHTML(t *testing.T) {
	svc, _ := newTestServices(t)

	var buf bytes.Buffer
	require.NoError(t, NewFlowFacade(svc).RenderHTML(context.Background(), &buf, FlowRequest{}))
	assert.Contains(t, buf.String(), "Central Perk")
}

func TestStoryFacade_StartSession(t *testing.T) {
	svc, rec := newTestServices(t)
	f := NewStoryFacade(svc)

	snap, err := f.StartSession(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "Ross", snap.Character)
	assert.Equal(t, 0, snap.Update.Progress)
	assert.Nil(t, snap.Update.Bar)
	assert.Equal(t, progress.UsageInstruction, snap.Update.Instruction)
	assert.Equal(t, []string{events.SessionStarted}, rec.types())
	assert.Equal(t, 1, svc.Sessions.Len())
}

func TestStoryFacade_ClickAdvancesProgress(t *testing.T) {
	svc, rec := newTestServices(t)
	f := NewStoryFacade(svc)
	ctx := context.Background()

	snap, err := f.StartSession(ctx)
	require.NoError(t, err)

	got, err := f.Click(ctx, snap.ID, ClickRequest{Dialogue: "I'm fine."})
	require.NoError(t, err)
	assert.Equal(t, 10, got.Update.Progress)
	assert.Equal(t, "Filler Counts: Fine - 1, Oh - 0, Okay - 0", got.Update.CountText)

	got, err = f.Click(ctx, snap.ID, ClickRequest{Dialogue: "Hi."})
	require.NoError(t, err)
	assert.Equal(t, 10, got.Update.Progress)

	payload, ok := events.GetTypedData[events.ProgressUpdatedEvent](rec.last())
	require.True(t, ok)
	assert.Equal(t, snap.ID, payload.SessionID)
	assert.Equal(t, "click", payload.Trigger)
	assert.Equal(t, "Ross", payload.Character)

	assert.Equal(t, uint64(2), svc.Metrics.Clicks.Load())
	assert.Equal(t, uint64(1), svc.Metrics.ProgressSteps.Load())
}

func TestStoryFacade_ClickAtCapIsNotAStep(t *testing.T) {
	svc, _ := newTestServices(t)
	f := NewStoryFacade(svc)
	ctx := context.Background()

	snap, err := f.StartSession(ctx)
	require.NoError(t, err)

	var got *SessionSnapshot
	for i := 0; i < 11; i++ {
		got, err = f.Click(ctx, snap.ID, ClickRequest{Dialogue: "I'm fine."})
		require.NoError(t, err)
	}

	assert.Equal(t, 100, got.Update.Progress)
	assert.Equal(t, uint64(11), svc.Metrics.Clicks.Load())
	assert.Equal(t, uint64(10), svc.Metrics.ProgressSteps.Load())
}

func TestStoryFacade_ChangeCharacterResets(t *testing.T) {
	svc, _ := newTestServices(t)
	f := NewStoryFacade(svc)
	ctx := context.Background()

	snap, err := f.StartSession(ctx)
	require.NoError(t, err)
	_, err = f.Click(ctx, snap.ID, ClickRequest{Dialogue: "I'm fine."})
	require.NoError(t, err)

	got, err := f.ChangeCharacter(ctx, snap.ID, "Rachel")
	require.NoError(t, err)
	assert.Equal(t, "Rachel", got.Character)
	assert.Equal(t, 0, got.Update.Progress)
	assert.Empty(t, got.Update.CountText)
	assert.Equal(t, progress.SwitchInstruction, got.Update.Instruction)

	current, err := f.Snapshot(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, progress.SwitchInstruction, current.Update.Instruction)

	got, err = f.ChangeCharacter(ctx, snap.ID, "Ross")
	require.NoError(t, err)
	assert.Equal(t, "Filler Counts: Fine - 0, Oh - 0, Okay - 0", got.Update.CountText)
	assert.Equal(t, uint64(2), svc.Metrics.FilterChanges.Load())
}

func TestStoryFacade_ClickWithExplicitCharacter(t *testing.T) {
	svc, _ := newTestServices(t)
	f := NewStoryFacade(svc)
	ctx := context.Background()

	snap, err := f.StartSession(ctx)
	require.NoError(t, err)

	got, err := f.Click(ctx, snap.ID, ClickRequest{Character: "Rachel", Dialogue: "Oh my God."})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Update.Counts.Oh)
	assert.Equal(t, "Ross", got.Character)
}

func TestStoryFacade_SessionsAreIndependent(t *testing.T) {
	svc, _ := newTestServices(t)
	f := NewStoryFacade(svc)
	ctx := context.Background()

	a, err := f.StartSession(ctx)
	require.NoError(t, err)
	b, err := f.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.Click(ctx, a.ID, ClickRequest{Dialogue: "Oh, okay."})
	require.NoError(t, err)

	got, err := f.Snapshot(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Update.Progress)
}

func TestStoryFacade_Errors(t *testing.T) {
	svc, _ := newTestServices(t)
	f := NewStoryFacade(svc)
	ctx := context.Background()

	_, err := f.Snapshot("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Session not found", appErr.Message)

	_, err = f.Click(ctx, "missing", ClickRequest{Dialogue: "I'm fine."})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	snap, err := f.StartSession(ctx)
	require.NoError(t, err)
	_, err = f.ChangeCharacter(ctx, snap.ID, "Gunther")
	assert.ErrorIs(t, err, ErrUnknownCharacter)

	require.NoError(t, f.EndSession(ctx, snap.ID))
	assert.ErrorIs(t, f.EndSession(ctx, snap.ID), ErrSessionNotFound)
}

func TestServices_ExpiredSessionsAreAnnounced(t *testing.T) {
	svc, rec := newTestServices(t)
	f := NewStoryFacade(svc)

	snap, err := f.StartSession(context.Background())
	require.NoError(t, err)

	s, err := svc.Sessions.Get(snap.ID)
	require.NoError(t, err)
	expired := svc.Sessions.Sweep(s.LastSeen().Add(2 * session.DefaultIdleTTL))
	assert.Equal(t, []string{snap.ID}, expired)

	require.Eventually(t, func() bool {
		payload, ok := events.GetTypedData[events.SessionEvent](rec.last())
		return ok && payload.Reason == "expired"
	}, time.Second, 5*time.Millisecond)
}

func TestChartFacade(t *testing.T) {
	svc, _ := newTestServices(t)
	f := NewChartFacade(svc)

	assert.Equal(t, []string{"Ross", "Rachel", "Joey"}, f.Characters())

	chart, err := f.CharacterChart("Ross")
	require.NoError(t, err)
	assert.Equal(t, 3, chart.Length)
	assert.Len(t, chart.Traces, 7)

	// A listed character with no rows gets an empty chart.
	chart, err = f.CharacterChart("Joey")
	require.NoError(t, err)
	assert.Zero(t, chart.Length)

	_, err = f.CharacterChart("Gunther")
	assert.ErrorIs(t, err, ErrUnknownCharacter)

	var buf bytes.Buffer
	require.NoError(t, f.RenderHTML(&buf, "Ross"))
	assert.Contains(t, buf.String(), "Oh, okay.")
}

func TestServices_CharacterOptionsFallBackToStore(t *testing.T) {
	svc := NewServices(testStore(), Options{})
	assert.Equal(t, []string{"Rachel", "Ross"}, svc.CharacterOptions())
}

func TestSystemFacade(t *testing.T) {
	svc, _ := newTestServices(t)
	f := NewSystemFacade(svc)

	_, err := NewStoryFacade(svc).StartSession(context.Background())
	require.NoError(t, err)

	status := f.GetStatus()
	assert.Equal(t, 1, status.Sessions)
	assert.Equal(t, 3, status.Dataset.FlowEvents)
	assert.Equal(t, 2, status.Dataset.Characters)
	assert.Equal(t, f.GetVersion(), status.Version.Version)
	assert.Equal(t, uint64(1), f.GetMetrics().SessionsCreated)
}
