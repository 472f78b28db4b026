package dashboard

import (
	"context"
	"io"
	"time"

	"github.com/ramonehamilton/fine-dashboard/internal/charts"
	"github.com/ramonehamilton/fine-dashboard/internal/dataset"
	"github.com/ramonehamilton/fine-dashboard/internal/events"
	"github.com/ramonehamilton/fine-dashboard/internal/sankey"
)

// FlowFacade builds the argument flow diagram.
type FlowFacade struct {
	services *Services
}

// NewFlowFacade creates a new FlowFacade.
func NewFlowFacade(services *Services) *FlowFacade {
	return &FlowFacade{services: services}
}

// FlowFilters are the options of the location and counterpart selectors.
type FlowFilters struct {
	Locations    []string `json:"locations"`
	Counterparts []string `json:"counterparts"`
}

// FlowRequest is one diagram request: the selector values and the element
// currently under the pointer, if any.
type FlowRequest struct {
	Location    string        `json:"location"`
	Counterpart string        `json:"counterpart"`
	Hover       *sankey.Hover `json:"hover,omitempty"`
}

// FlowDiagram is a built, possibly highlighted, diagram.
type FlowDiagram struct {
	Filter dataset.FlowFilter `json:"filter"`
	Events int                `json:"events"`
	Hover  *sankey.Hover      `json:"hover,omitempty"`
	Graph  sankey.Graph       `json:"graph"`
}

// Filters returns the selector options, derived from the full argument log.
func (f *FlowFacade) Filters() FlowFilters {
	return FlowFilters{
		Locations:    f.services.Store.Locations(),
		Counterparts: f.services.Store.Counterparts(),
	}
}

// Diagram filters the argument log, rebuilds the graph and applies the hover.
// A stale hover leaves the diagram unhighlighted.
func (f *FlowFacade) Diagram(ctx context.Context, req FlowRequest) (*FlowDiagram, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter := dataset.FlowFilter{Location: req.Location, Counterpart: req.Counterpart}
	m := f.services.Metrics

	start := time.Now()
	filtered := f.services.Store.FilterFlow(filter)
	g := sankey.Build(filtered, f.services.Palette)
	m.BuildLatency.Since(start)
	m.FlowRebuilds.Add(1)

	if req.Hover != nil {
		start = time.Now()
		g = sankey.ApplyHighlight(g, req.Hover)
		m.HighlightLatency.Since(start)
		m.Hovers.Add(1)
	}

	f.services.Dispatcher.Dispatch(events.NewTypedEvent(ctx, events.FlowRebuilt, "", events.FlowRebuiltEvent{
		Filter: filter,
		Nodes:  len(g.Nodes),
		Links:  len(g.Links),
		Events: len(filtered),
	}))

	return &FlowDiagram{
		Filter: filter,
		Events: len(filtered),
		Hover:  req.Hover,
		Graph:  g,
	}, nil
}

// Reset clears both selectors and returns the unfiltered diagram.
func (f *FlowFacade) Reset(ctx context.Context) (*FlowDiagram, error) {
	diagram, err := f.Diagram(ctx, FlowRequest{})
	if err != nil {
		return nil, err
	}

	filters := f.Filters()
	f.services.Dispatcher.Dispatch(events.NewTypedEvent(ctx, events.FlowReset, "", events.FlowResetEvent{
		Locations:    len(filters.Locations),
		Counterparts: len(filters.Counterparts),
	}))
	return diagram, nil
}

// RenderHTML writes the requested diagram as a standalone page.
func (f *FlowFacade) RenderHTML(ctx context.Context, w io.Writer, req FlowRequest) error {
	diagram, err := f.Diagram(ctx, req)
	if err != nil {
		return err
	}
	return charts.RenderSankey(w, diagram.Graph, f.services.ChartConfig)
}
