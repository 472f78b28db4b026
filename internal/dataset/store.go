// Package dataset holds the read-only, in-memory snapshot of the three dashboard
// datasets: dialogue sentiments, sentence types with pauses, and the argument log.
package dataset

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/fine-dashboard/internal/palette"
	"github.com/ramonehamilton/fine-dashboard/internal/storage/models"
)

// DefaultDialogueWindow is the number of leading rows shown per character.
const DefaultDialogueWindow = 301

// Source supplies the raw dataset rows. It is implemented by storage.Service.
type Source interface {
	ListDialogues(ctx context.Context) ([]*models.DialogueSentiment, error)
	ListSentenceTypes(ctx context.Context) ([]*models.SentenceType, error)
	ListModalityPauses(ctx context.Context) ([]*models.ModalityPause, error)
	ListFlowEvents(ctx context.Context) ([]*models.FlowEventRow, error)
}

// FlowEvent is one complete recorded argument.
type FlowEvent struct {
	Season      string `json:"season"`
	Location    string `json:"location"`
	Counterpart string `json:"counterpart"`
}

// Dialogue is one line of a character with its sentiment scores and filler counts.
type Dialogue struct {
	ID                    int64   `json:"id"`
	Person                string  `json:"person"`
	Text                  string  `json:"text"`
	HasText               bool    `json:"hasText"`
	ForcedPositivity      float64 `json:"forcedPositivity"`
	Discomfort            float64 `json:"discomfort"`
	SuppressedFrustration float64 `json:"suppressedFrustration"`
	Fine                  int     `json:"fine"`
	Oh                    int     `json:"oh"`
	Okay                  int     `json:"okay"`
}

// SentenceScores is the sentence-type breakdown of one line.
type SentenceScores struct {
	Declarative   float64 `json:"declarative"`
	Interrogative float64 `json:"interrogative"`
	Exclamatory   float64 `json:"exclamatory"`
}

// FlowFilter narrows the argument log. Empty fields mean no filter.
type FlowFilter struct {
	Location    string `json:"location,omitempty"`
	Counterpart string `json:"counterpart,omitempty"`
}

// Options configures how a Store is built.
type Options struct {
	// DialogueWindow caps the rows returned per character. Zero uses DefaultDialogueWindow.
	DialogueWindow int

	// Palette orders locations. Nil uses palette.DefaultTable().
	Palette *palette.Table
}

// Store is an immutable snapshot of the datasets. All methods are safe for
// concurrent use and return copies the caller may modify.
type Store struct {
	window    int
	dialogues map[string][]Dialogue
	sentences map[string][]SentenceScores
	pauses    map[string][]int
	flow      []FlowEvent

	locations    []string
	counterparts []string
	dropped      int
}

// Load reads all datasets from src concurrently and builds a Store.
func Load(ctx context.Context, src Source, opts Options) (*Store, error) {
	var data models.Dataset

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if data.Dialogues, err = src.ListDialogues(ctx); err != nil {
			return fmt.Errorf("load dialogues: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if data.Sentences, err = src.ListSentenceTypes(ctx); err != nil {
			return fmt.Errorf("load sentence types: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if data.Pauses, err = src.ListModalityPauses(ctx); err != nil {
			return fmt.Errorf("load pauses: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if data.FlowEvents, err = src.ListFlowEvents(ctx); err != nil {
			return fmt.Errorf("load flow events: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := New(&data, opts)

	if s.dropped > 0 {
		log.Printf("[Dataset] Dropped %d incomplete flow events", s.dropped)
	}
	log.Printf("[Dataset] Loaded %d characters, %d flow events", len(s.dialogues), len(s.flow))

	return s, nil
}

// New builds a Store from rows already in memory.
func New(data *models.Dataset, opts Options) *Store {
	if opts.DialogueWindow <= 0 {
		opts.DialogueWindow = DefaultDialogueWindow
	}
	if opts.Palette == nil {
		opts.Palette = palette.DefaultTable()
	}

	s := &Store{
		window:    opts.DialogueWindow,
		dialogues: make(map[string][]Dialogue),
		sentences: make(map[string][]SentenceScores),
		pauses:    make(map[string][]int),
	}
	if data == nil {
		return s
	}

	for _, row := range data.Dialogues {
		d := Dialogue{
			ID:                    row.ID,
			Person:                row.Person,
			ForcedPositivity:      row.ForcedPositivity,
			Discomfort:            row.Discomfort,
			SuppressedFrustration: row.SuppressedFrustration,
			Fine:                  valueOrZero(row.Fine),
			Oh:                    valueOrZero(row.Oh),
			Okay:                  valueOrZero(row.Okay),
		}
		if row.Dialogue != nil {
			d.Text = *row.Dialogue
			d.HasText = true
		}
		s.dialogues[row.Person] = append(s.dialogues[row.Person], d)
	}

	for _, row := range data.Sentences {
		s.sentences[row.Person] = append(s.sentences[row.Person], SentenceScores{
			Declarative:   row.Declarative,
			Interrogative: row.Interrogative,
			Exclamatory:   row.Exclamatory,
		})
	}

	for _, row := range data.Pauses {
		s.pauses[row.Person] = append(s.pauses[row.Person], row.Pauses)
	}

	for _, row := range data.FlowEvents {
		e, ok := completeEvent(row)
		if !ok {
			s.dropped++
			continue
		}
		s.flow = append(s.flow, e)
	}

	s.locations = OrderLocations(distinct(s.flow, func(e FlowEvent) string { return e.Location }), opts.Palette)
	s.counterparts = distinct(s.flow, func(e FlowEvent) string { return e.Counterpart })
	sort.Strings(s.counterparts)

	return s
}

// completeEvent converts a stored row, rejecting rows missing any field.
func completeEvent(row *models.FlowEventRow) (FlowEvent, bool) {
	season, ok1 := nonBlank(row.Season)
	location, ok2 := nonBlank(row.Location)
	counterpart, ok3 := nonBlank(row.Counterpart)
	if !ok1 || !ok2 || !ok3 {
		return FlowEvent{}, false
	}
	return FlowEvent{Season: season, Location: location, Counterpart: counterpart}, true
}

func nonBlank(v *string) (string, bool) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", false
	}
	return *v, true
}

func valueOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// distinct returns the distinct keys of events in arrival order.
func distinct(events []FlowEvent, key func(FlowEvent) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range events {
		k := key(e)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// OrderLocations sorts locations by their position in the palette's known list.
// Unknown locations follow all known ones in their original order.
func OrderLocations(locations []string, table *palette.Table) []string {
	out := append([]string(nil), locations...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, oki := table.Priority(out[i])
		pj, okj := table.Priority(out[j])
		switch {
		case oki && okj:
			return pi < pj
		default:
			return oki && !okj
		}
	})
	return out
}

// Characters returns every character with dialogue rows, sorted.
func (s *Store) Characters() []string {
	out := make([]string, 0, len(s.dialogues))
	for name := range s.dialogues {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// HasCharacter reports whether any dataset row belongs to the character.
func (s *Store) HasCharacter(character string) bool {
	_, d := s.dialogues[character]
	_, st := s.sentences[character]
	_, p := s.pauses[character]
	return d || st || p
}

// Dialogues returns the windowed dialogue rows of a character.
func (s *Store) Dialogues(character string) []Dialogue {
	return window(s.dialogues[character], s.window)
}

// SentenceTypes returns the windowed sentence-type rows of a character.
func (s *Store) SentenceTypes(character string) []SentenceScores {
	return window(s.sentences[character], s.window)
}

// Pauses returns the windowed pause flags of a character.
func (s *Store) Pauses(character string) []int {
	return window(s.pauses[character], s.window)
}

// FindDialogues returns every row of the character whose text equals text.
// The search covers all rows, not only the display window.
func (s *Store) FindDialogues(character, text string) []Dialogue {
	var out []Dialogue
	for _, d := range s.dialogues[character] {
		if d.HasText && d.Text == text {
			out = append(out, d)
		}
	}
	return out
}

// FlowEvents returns all complete flow events in arrival order.
func (s *Store) FlowEvents() []FlowEvent {
	return append([]FlowEvent(nil), s.flow...)
}

// FilterFlow returns the flow events matching the filter.
func (s *Store) FilterFlow(f FlowFilter) []FlowEvent {
	out := make([]FlowEvent, 0, len(s.flow))
	for _, e := range s.flow {
		if f.Location != "" && e.Location != f.Location {
			continue
		}
		if f.Counterpart != "" && e.Counterpart != f.Counterpart {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Locations returns the distinct locations of the full argument log in display order.
func (s *Store) Locations() []string {
	return append([]string(nil), s.locations...)
}

// Counterparts returns the distinct counterparts of the full argument log, sorted.
func (s *Store) Counterparts() []string {
	return append([]string(nil), s.counterparts...)
}

// Dropped returns the number of incomplete flow rows excluded at load.
func (s *Store) Dropped() int {
	return s.dropped
}

// Summary describes the loaded snapshot.
type Summary struct {
	Characters   int `json:"characters"`
	Dialogues    int `json:"dialogues"`
	FlowEvents   int `json:"flowEvents"`
	Dropped      int `json:"dropped"`
	Locations    int `json:"locations"`
	Counterparts int `json:"counterparts"`
}

// Summary returns row counts for the snapshot.
func (s *Store) Summary() Summary {
	total := 0
	for _, rows := range s.dialogues {
		total += len(rows)
	}
	return Summary{
		Characters:   len(s.dialogues),
		Dialogues:    total,
		FlowEvents:   len(s.flow),
		Dropped:      s.dropped,
		Locations:    len(s.locations),
		Counterparts: len(s.counterparts),
	}
}

func window[T any](rows []T, n int) []T {
	if len(rows) > n {
		rows = rows[:n]
	}
	return append([]T(nil), rows...)
}
