package dataset

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/fine-dashboard/internal/palette"
	"github.com/ramonehamilton/fine-dashboard/internal/storage/models"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func flowRow(season, location, counterpart string) *models.FlowEventRow {
	row := &models.FlowEventRow{}
	if season != "" {
		row.Season = strPtr(season)
	}
	if location != "" {
		row.Location = strPtr(location)
	}
	if counterpart != "" {
		row.Counterpart = strPtr(counterpart)
	}
	return row
}

func testData() *models.Dataset {
	return &models.Dataset{
		Dialogues: []*models.DialogueSentiment{
			{ID: 1, Person: "Ross", Dialogue: strPtr("I'm fine."), Fine: intPtr(1), Oh: intPtr(0), Okay: intPtr(0)},
			{ID: 2, Person: "Ross", Dialogue: strPtr("Oh, okay."), Fine: intPtr(0), Oh: intPtr(1), Okay: intPtr(1)},
			{ID: 3, Person: "Ross"},
			{ID: 4, Person: "Rachel", Dialogue: strPtr("Oh my God."), Oh: intPtr(1)},
			{ID: 5, Person: "Ross", Dialogue: strPtr("I'm fine."), Fine: intPtr(2)},
		},
		Sentences: []*models.SentenceType{
			{Person: "Ross", Declarative: 1},
			{Person: "Rachel", Exclamatory: 1},
		},
		Pauses: []*models.ModalityPause{
			{Person: "Ross", Pauses: 1},
			{Person: "Ross", Pauses: 0},
		},
		FlowEvents: []*models.FlowEventRow{
			flowRow("1", "Central Perk", "Rachel"),
			flowRow("1", "The hospital", "Emily"),
			flowRow("2", "Joey’s apartment", "Monica"),
			flowRow("3", "", "Rachel"),
			flowRow("4", "Ross's apartment", ""),
			flowRow("", "Central Perk", "Joey"),
			flowRow("5", "Barbados", "Charlie"),
			flowRow("5", "   ", "Charlie"),
		},
	}
}

func TestNew_DropsIncompleteFlowRows(t *testing.T) {
	s := New(testData(), Options{})

	assert.Equal(t, 4, s.Dropped())
	events := s.FlowEvents()
	require.Len(t, events, 4)
	assert.Equal(t, FlowEvent{Season: "1", Location: "Central Perk", Counterpart: "Rachel"}, events[0])
	assert.Equal(t, "Joey’s apartment", events[2].Location, "display label keeps its original punctuation")
}

func TestStore_Locations(t *testing.T) {
	s := New(testData(), Options{})

	// Known by priority, unknown after all known ones.
	assert.Equal(t, []string{"Central Perk", "Joey’s apartment", "The hospital", "Barbados"}, s.Locations())
}

func TestStore_Counterparts(t *testing.T) {
	s := New(testData(), Options{})
	assert.Equal(t, []string{"Charlie", "Emily", "Monica", "Rachel"}, s.Counterparts())
}

func TestStore_FilterFlow(t *testing.T) {
	s := New(testData(), Options{})

	tests := []struct {
		name   string
		filter FlowFilter
		want   int
	}{
		{"no filter", FlowFilter{}, 4},
		{"location", FlowFilter{Location: "Central Perk"}, 1},
		{"counterpart", FlowFilter{Counterpart: "Charlie"}, 1},
		{"both", FlowFilter{Location: "Central Perk", Counterpart: "Emily"}, 0},
		{"unknown location", FlowFilter{Location: "Nowhere"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, s.FilterFlow(tt.filter), tt.want)
		})
	}
}

func TestStore_Dialogues(t *testing.T) {
	s := New(testData(), Options{})

	rows := s.Dialogues("Ross")
	require.Len(t, rows, 4)
	assert.True(t, rows[0].HasText)
	assert.False(t, rows[2].HasText)
	assert.Equal(t, 0, rows[2].Fine, "missing counts read as zero")

	assert.Empty(t, s.Dialogues("Gunther"))
	assert.Equal(t, []string{"Rachel", "Ross"}, s.Characters())
}

func TestStore_DialogueWindow(t *testing.T) {
	data := &models.Dataset{}
	for i := 0; i < 10; i++ {
		data.Dialogues = append(data.Dialogues, &models.DialogueSentiment{
			ID: int64(i), Person: "Ross", Dialogue: strPtr(fmt.Sprintf("line %d", i)), Fine: intPtr(1),
		})
	}
	s := New(data, Options{DialogueWindow: 3})

	assert.Len(t, s.Dialogues("Ross"), 3)
	// Lookups still see rows outside the window.
	assert.Len(t, s.FindDialogues("Ross", "line 9"), 1)
}

func TestStore_FindDialogues(t *testing.T) {
	s := New(testData(), Options{})

	matches := s.FindDialogues("Ross", "I'm fine.")
	require.Len(t, matches, 2)
	assert.Equal(t, 1, matches[0].Fine)
	assert.Equal(t, 2, matches[1].Fine)

	assert.Empty(t, s.FindDialogues("Rachel", "I'm fine."))
	assert.Empty(t, s.FindDialogues("Ross", ""))
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New(testData(), Options{})

	events := s.FlowEvents()
	events[0].Location = "changed"
	assert.Equal(t, "Central Perk", s.FlowEvents()[0].Location)

	locs := s.Locations()
	locs[0] = "changed"
	assert.Equal(t, "Central Perk", s.Locations()[0])
}

func TestStore_HasCharacter(t *testing.T) {
	s := New(testData(), Options{})
	assert.True(t, s.HasCharacter("Ross"))
	assert.True(t, s.HasCharacter("Rachel"))
	assert.False(t, s.HasCharacter("Gunther"))
}

func TestNew_Nil(t *testing.T) {
	s := New(nil, Options{})
	assert.Empty(t, s.FlowEvents())
	assert.Empty(t, s.Characters())
	assert.Equal(t, Summary{}, s.Summary())
}

func TestOrderLocations_CustomTable(t *testing.T) {
	table := palette.NewTable([]string{"B", "A"}, []string{"#000000"}, "")
	got := OrderLocations([]string{"z", "a", "y", "b"}, table)
	assert.Equal(t, []string{"b", "a", "z", "y"}, got)
}

type fakeSource struct {
	data *models.Dataset
	err  error
}

func (f *fakeSource) ListDialogues(context.Context) ([]*models.DialogueSentiment, error) {
	return f.data.Dialogues, nil
}

func (f *fakeSource) ListSentenceTypes(context.Context) ([]*models.SentenceType, error) {
	return f.data.Sentences, nil
}

func (f *fakeSource) ListModalityPauses(context.Context) ([]*models.ModalityPause, error) {
	return f.data.Pauses, nil
}

func (f *fakeSource) ListFlowEvents(context.Context) ([]*models.FlowEventRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data.FlowEvents, nil
}

func TestLoad(t *testing.T) {
	s, err := Load(context.Background(), &fakeSource{data: testData()}, Options{})
	require.NoError(t, err)

	summary := s.Summary()
	assert.Equal(t, 2, summary.Characters)
	assert.Equal(t, 5, summary.Dialogues)
	assert.Equal(t, 4, summary.FlowEvents)
	assert.Equal(t, 4, summary.Dropped)
}

func TestLoad_SourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Load(context.Background(), &fakeSource{data: testData(), err: boom}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
