package dashboard

import (
	"fmt"
	"io"

	"github.com/ramonehamilton/fine-dashboard/internal/charts"
)

// ChartFacade composes the per-character sentence and sentiment chart.
type ChartFacade struct {
	services *Services
}

// NewChartFacade creates a new ChartFacade.
func NewChartFacade(services *Services) *ChartFacade {
	return &ChartFacade{services: services}
}

// Characters returns the character selector options.
func (f *ChartFacade) Characters() []string {
	return f.services.CharacterOptions()
}

// CharacterChart composes the chart for one character.
func (f *ChartFacade) CharacterChart(character string) (*charts.CharacterChart, error) {
	if !f.services.validCharacter(character) {
		return nil, &AppError{
			Message: fmt.Sprintf("Unknown character %q", character),
			Err:     ErrUnknownCharacter,
		}
	}
	chart := charts.ComposeCharacter(f.services.Store, character)
	return &chart, nil
}

// RenderHTML writes the character chart as a standalone page.
func (f *ChartFacade) RenderHTML(w io.Writer, character string) error {
	chart, err := f.CharacterChart(character)
	if err != nil {
		return err
	}
	cfg := f.services.ChartConfig
	cfg.Title = character
	return charts.RenderCharacterChart(w, *chart, cfg)
}
