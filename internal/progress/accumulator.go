// Package progress implements the filler-word counter attached to the
// character chart. State is a plain value: callers own it and pass it into
// every interaction, and each call returns the next state.
package progress

import (
	"fmt"

	"github.com/ramonehamilton/fine-dashboard/internal/dataset"
)

// Instruction strings shown under the character chart.
const (
	SwitchInstruction = "Switch to Ross to check his so not fine filler words."
	UsageInstruction  = "*Click on a dialogue to track filler words. The progress bar moves only when new fillers are detected.*"
)

// Defaults for Config.
const (
	DefaultTrackedCharacter = "Ross"
	DefaultStep             = 10
	DefaultMax              = 100
)

// Token is one tracked filler word.
type Token string

const (
	Fine Token = "Fine"
	Oh   Token = "Oh"
	Okay Token = "Okay"
)

// Tokens lists the tracked tokens in display order.
var Tokens = []Token{Fine, Oh, Okay}

// Counts holds the running total for each token.
type Counts struct {
	Fine int `json:"fine"`
	Oh   int `json:"oh"`
	Okay int `json:"okay"`
}

// Get returns the total for a token.
func (c Counts) Get(t Token) int {
	switch t {
	case Fine:
		return c.Fine
	case Oh:
		return c.Oh
	case Okay:
		return c.Okay
	}
	return 0
}

func (c *Counts) add(t Token, n int) {
	switch t {
	case Fine:
		c.Fine += n
	case Oh:
		c.Oh += n
	case Okay:
		c.Okay += n
	}
}

// String renders the count line, e.g. "Filler Counts: Fine - 3, Oh - 1, Okay - 0".
func (c Counts) String() string {
	return fmt.Sprintf("Filler Counts: Fine - %d, Oh - %d, Okay - %d", c.Fine, c.Oh, c.Okay)
}

// State is the per-session accumulator state. The zero value is the initial state.
type State struct {
	Counts   Counts `json:"counts"`
	Progress int    `json:"progress"`
}

// Bar is the progress indicator. A nil *Bar means nothing is drawn.
type Bar struct {
	WidthPercent int `json:"widthPercent"`
}

// Update is what the chart panel renders after an interaction.
type Update struct {
	Counts      Counts `json:"counts"`
	CountText   string `json:"countText"`
	Progress    int    `json:"progress"`
	Bar         *Bar   `json:"bar"`
	Instruction string `json:"instruction"`
}

// DialogueLookup finds the dialogue records of a character by their text.
// It is implemented by *dataset.Store.
type DialogueLookup interface {
	FindDialogues(character, text string) []dataset.Dialogue
}

// Config configures an Accumulator.
type Config struct {
	TrackedCharacter string
	Step             int
	Max              int
}

// DefaultConfig returns the dashboard's settings: Ross is tracked, each
// qualifying click advances 10 points, capped at 100.
func DefaultConfig() Config {
	return Config{
		TrackedCharacter: DefaultTrackedCharacter,
		Step:             DefaultStep,
		Max:              DefaultMax,
	}
}

// Accumulator applies interactions to a State. It holds no mutable state of
// its own and is safe for concurrent use.
type Accumulator struct {
	cfg    Config
	lookup DialogueLookup
}

// NewAccumulator creates an accumulator. Zero config fields take their defaults.
func NewAccumulator(cfg Config, lookup DialogueLookup) *Accumulator {
	if cfg.TrackedCharacter == "" {
		cfg.TrackedCharacter = DefaultTrackedCharacter
	}
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}
	if cfg.Max <= 0 {
		cfg.Max = DefaultMax
	}
	return &Accumulator{cfg: cfg, lookup: lookup}
}

// TrackedCharacter returns the character whose fillers are counted.
func (a *Accumulator) TrackedCharacter() string {
	return a.cfg.TrackedCharacter
}

// OnFilterChange handles a change of the character selector. Selecting any
// character other than the tracked one resets the state.
func (a *Accumulator) OnFilterChange(s State, character string) (State, Update) {
	if character != a.cfg.TrackedCharacter {
		s = State{}
		return s, Update{
			Counts:      s.Counts,
			Progress:    0,
			Instruction: SwitchInstruction,
		}
	}
	return s, a.render(s)
}

// OnClick handles a click on a dialogue point. The matched records' token
// counts are added to the totals; if any total grew, progress advances one
// step. Clicking the same dialogue again counts it again. A negative summed
// count for a token is skipped.
func (a *Accumulator) OnClick(s State, character, dialogue string) (State, Update) {
	var matches []dataset.Dialogue
	if a.lookup != nil {
		matches = a.lookup.FindDialogues(character, dialogue)
	}
	if len(matches) == 0 {
		return s, a.render(s)
	}

	grew := false
	for _, t := range Tokens {
		delta := 0
		for _, d := range matches {
			delta += tokenCount(d, t)
		}
		if delta > 0 {
			s.Counts.add(t, delta)
			grew = true
		}
	}

	if grew {
		s.Progress = min(s.Progress+a.cfg.Step, a.cfg.Max)
	}
	return s, a.render(s)
}

// Snapshot renders s without changing it.
func (a *Accumulator) Snapshot(s State) Update {
	return a.render(s)
}

func (a *Accumulator) render(s State) Update {
	return Update{
		Counts:      s.Counts,
		CountText:   s.Counts.String(),
		Progress:    s.Progress,
		Bar:         BarFor(s.Progress),
		Instruction: UsageInstruction,
	}
}

// BarFor returns the indicator for a progress value, nil when there is no progress.
func BarFor(progress int) *Bar {
	if progress <= 0 {
		return nil
	}
	return &Bar{WidthPercent: progress}
}

func tokenCount(d dataset.Dialogue, t Token) int {
	switch t {
	case Fine:
		return d.Fine
	case Oh:
		return d.Oh
	case Okay:
		return d.Okay
	}
	return 0
}
