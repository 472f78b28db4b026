// Package dashboard exposes the dashboard's operations to the HTTP layer and
// the CLI through small facades sharing one Services value.
package dashboard

import (
	"context"
	"errors"
	"slices"

	"github.com/ramonehamilton/fine-dashboard/internal/charts"
	"github.com/ramonehamilton/fine-dashboard/internal/dataset"
	"github.com/ramonehamilton/fine-dashboard/internal/events"
	"github.com/ramonehamilton/fine-dashboard/internal/metrics"
	"github.com/ramonehamilton/fine-dashboard/internal/palette"
	"github.com/ramonehamilton/fine-dashboard/internal/progress"
	"github.com/ramonehamilton/fine-dashboard/internal/session"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrUnknownCharacter is returned for a character outside the selector options.
	ErrUnknownCharacter = errors.New("unknown character")
)

// Services contains all shared services needed by facades.
type Services struct {
	// Read-only dataset snapshot and color table
	Store   *dataset.Store
	Palette *palette.Table

	// Per-viewer progress state
	Sessions    *session.Manager
	Accumulator *progress.Accumulator

	Dispatcher *events.EventDispatcher
	Metrics    *metrics.DashboardMetrics

	// Character selector options. Empty means every character in Store.
	Characters []string

	ChartConfig charts.ChartConfig
}

// Options configures NewServices.
type Options struct {
	Characters []string
	Progress   progress.Config
	Sessions   session.Config
	Palette    *palette.Table
	Chart      *charts.ChartConfig
}

// NewServices wires the shared services around a loaded store.
func NewServices(store *dataset.Store, opts Options) *Services {
	if opts.Palette == nil {
		opts.Palette = palette.DefaultTable()
	}
	chartConfig := charts.DefaultChartConfig()
	if opts.Chart != nil {
		chartConfig = *opts.Chart
	}

	accumulator := progress.NewAccumulator(opts.Progress, store)
	if opts.Sessions.Character == "" {
		opts.Sessions.Character = accumulator.TrackedCharacter()
	}

	dispatcher := events.NewEventDispatcher()
	sessions := session.NewManager(opts.Sessions)
	// Expiry notices must not hold up the sweeper.
	sessions.OnExpire = func(id string) {
		dispatcher.DispatchAsync(events.NewTypedEvent(context.Background(), events.SessionEnded, id, events.SessionEvent{
			SessionID: id,
			Reason:    "expired",
		}))
	}

	return &Services{
		Store:       store,
		Palette:     opts.Palette,
		Sessions:    sessions,
		Accumulator: accumulator,
		Dispatcher:  dispatcher,
		Metrics:     metrics.NewDashboardMetrics(),
		Characters:  opts.Characters,
		ChartConfig: chartConfig,
	}
}

// CharacterOptions returns the character selector options.
func (s *Services) CharacterOptions() []string {
	if len(s.Characters) > 0 {
		return slices.Clone(s.Characters)
	}
	return s.Store.Characters()
}

func (s *Services) validCharacter(character string) bool {
	return slices.Contains(s.CharacterOptions(), character)
}

// AppError represents an application error with a user-friendly message.
type AppError struct {
	Message string `json:"message"`
	Err     error  `json:"-"` // Wrapped error for errors.Is/As chain
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As chain.
func (e *AppError) Unwrap() error {
	return e.Err
}
