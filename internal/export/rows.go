package export

import (
	"github.com/ramonehamilton/fine-dashboard/internal/charts"
	"github.com/ramonehamilton/fine-dashboard/internal/sankey"
)

// FlowRow is one link of a flow diagram with its endpoints resolved.
type FlowRow struct {
	Source     string `csv:"source" json:"source"`
	SourceTier string `csv:"source_tier" json:"sourceTier"`
	Target     string `csv:"target" json:"target"`
	TargetTier string `csv:"target_tier" json:"targetTier"`
	Value      int    `csv:"value" json:"value"`
	Color      string `csv:"color" json:"color"`
}

// FlowRows flattens the links of g. Links pointing outside the node list are skipped.
func FlowRows(g sankey.Graph) []FlowRow {
	rows := make([]FlowRow, 0, len(g.Links))
	for _, l := range g.Links {
		if l.Source < 0 || l.Source >= len(g.Nodes) || l.Target < 0 || l.Target >= len(g.Nodes) {
			continue
		}
		src, dst := g.Nodes[l.Source], g.Nodes[l.Target]
		rows = append(rows, FlowRow{
			Source:     src.Label,
			SourceTier: src.Tier.String(),
			Target:     dst.Label,
			TargetTier: dst.Tier.String(),
			Value:      l.Value,
			Color:      l.Color,
		})
	}
	return rows
}

// ChartRow is one plotted point of a character chart.
type ChartRow struct {
	Character string  `csv:"character" json:"character"`
	Trace     string  `csv:"trace" json:"trace"`
	Kind      string  `csv:"kind" json:"kind"`
	X         int     `csv:"x" json:"x"`
	Y         float64 `csv:"y" json:"y"`
	Text      string  `csv:"text" json:"text,omitempty"`
}

// ChartRows flattens every trace of chart, in trace order.
func ChartRows(chart charts.CharacterChart) []ChartRow {
	var rows []ChartRow
	for _, tr := range chart.Traces {
		for _, p := range tr.Points {
			rows = append(rows, ChartRow{
				Character: chart.Character,
				Trace:     tr.Name,
				Kind:      string(tr.Kind),
				X:         p.X,
				Y:         p.Y,
				Text:      p.Text,
			})
		}
	}
	return rows
}
