package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/fine-dashboard/internal/sankey"
)

// ChartConfig holds configuration for rendered pages.
type ChartConfig struct {
	Title      string // Chart title
	Subtitle   string // Chart subtitle
	PageTitle  string // HTML page title
	Width      string // Chart width (e.g., "900px")
	Height     string // Chart height (e.g., "500px")
	Theme      string // Chart theme
	ShowLegend bool   // Show legend
	Smooth     bool   // Smooth lines
	NodeWidth  int    // Sankey node width in pixels
	NodeGap    int    // Sankey vertical gap between nodes
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		PageTitle:  "Was Ross Actually F.I.N.E?",
		Width:      "1100px",
		Height:     "550px",
		Theme:      "white",
		ShowLegend: true,
		Smooth:     false,
		NodeWidth:  20,
		NodeGap:    12,
	}
}

func (c ChartConfig) globalOptions() []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.PageTitle,
			Width:     c.Width,
			Height:    c.Height,
			Theme:     c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    c.Title,
			Subtitle: c.Subtitle,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(c.ShowLegend),
		}),
	}
}

var dashStyles = map[string]string{
	"dash": "dashed",
	"dot":  "dotted",
}

// RenderCharacterChart writes the character chart as an HTML page. Area
// points carry the dialogue text as their data name, which is what a click
// reports back.
func RenderCharacterChart(w io.Writer, chart CharacterChart, config ChartConfig) error {
	line := charts.NewLine()
	line.SetGlobalOptions(append(config.globalOptions(),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
		charts.WithXAxisOpts(opts.XAxis{Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Show: opts.Bool(false)}),
	)...)

	xLabels := make([]string, chart.Length)
	for i := range xLabels {
		xLabels[i] = strconv.Itoa(i)
	}
	line.SetXAxis(xLabels)

	var pauses *Trace
	for i := range chart.Traces {
		tr := chart.Traces[i]
		switch tr.Kind {
		case KindLine:
			line.AddSeries(tr.Name, lineData(tr),
				charts.WithLineChartOpts(opts.LineChart{
					Smooth:     opts.Bool(config.Smooth),
					ShowSymbol: opts.Bool(false),
				}),
				charts.WithLineStyleOpts(opts.LineStyle{
					Color: tr.Color,
					Type:  dashStyles[tr.Dash],
				}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: tr.Color}),
			)
		case KindArea:
			line.AddSeries(tr.Name, lineData(tr),
				charts.WithLineChartOpts(opts.LineChart{
					Smooth:     opts.Bool(config.Smooth),
					ShowSymbol: opts.Bool(false),
				}),
				charts.WithLineStyleOpts(opts.LineStyle{Color: tr.Color, Width: 0.5}),
				charts.WithAreaStyleOpts(opts.AreaStyle{Color: tr.Color, Opacity: opts.Float(0.5)}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: tr.Color}),
			)
		case KindMarkers:
			pauses = &chart.Traces[i]
		}
	}

	if pauses != nil {
		scatter := charts.NewScatter()
		data := make([]opts.ScatterData, len(pauses.Points))
		for i, p := range pauses.Points {
			data[i] = opts.ScatterData{Value: []interface{}{p.X, p.Y}, Symbol: "rect", SymbolSize: 6}
		}
		scatter.AddSeries(pauses.Name, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: pauses.Color}))
		line.Overlap(scatter)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func lineData(tr Trace) []opts.LineData {
	data := make([]opts.LineData, len(tr.Points))
	for i, p := range tr.Points {
		data[i] = opts.LineData{Name: p.Text, Value: p.Y}
	}
	return data
}

// sankeyLink is a link with its own line style; opts.SankeyLink has none.
type sankeyLink struct {
	Source    int             `json:"source"`
	Target    int             `json:"target"`
	Value     int             `json:"value"`
	LineStyle *opts.LineStyle `json:"lineStyle,omitempty"`
}

// RenderSankey writes a flow graph, in whatever highlight state it is in, as
// an HTML page. An empty graph renders an empty diagram.
func RenderSankey(w io.Writer, g sankey.Graph, config ChartConfig) error {
	chart := charts.NewSankey()
	chart.SetGlobalOptions(append(config.globalOptions(),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
	)...)

	nodes := make([]opts.SankeyNode, len(g.Nodes))
	for i, name := range NodeNames(g) {
		depth := int(g.Nodes[i].Tier)
		nodes[i] = opts.SankeyNode{
			Name:      name,
			Depth:     &depth,
			ItemStyle: &opts.ItemStyle{Color: g.Nodes[i].Color},
		}
	}

	links := make([]sankeyLink, len(g.Links))
	for i, l := range g.Links {
		links[i] = sankeyLink{
			Source:    l.Source,
			Target:    l.Target,
			Value:     l.Value,
			LineStyle: &opts.LineStyle{Color: l.Color, Opacity: opts.Float(1)},
		}
	}

	chart.AddSeries("flow", nodes, nil,
		charts.WithSeriesOpts(func(s *charts.SingleSeries) {
			s.Links = links
			s.NodeAlign = "justify"
			s.NodeWidth = opts.Int(config.NodeWidth)
			s.NodeGap = opts.Int(config.NodeGap)
		}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)

	if err := chart.Render(w); err != nil {
		return fmt.Errorf("failed to render sankey: %w", err)
	}
	return nil
}

// NodeNames returns unique display names for the nodes of g. ECharts keys
// sankey nodes by name, so a label repeated across tiers gets its tier appended.
func NodeNames(g sankey.Graph) []string {
	counts := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		counts[n.Label]++
	}

	names := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		names[i] = n.Label
		if counts[n.Label] > 1 {
			names[i] = fmt.Sprintf("%s (%s)", n.Label, n.Tier)
		}
	}
	return names
}

// RenderToFile renders into a new file at outputPath.
func RenderToFile(outputPath string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return render(f)
}

// OpenInBrowser opens the given file path or URL in the default web browser.
func OpenInBrowser(target string) error {
	if _, err := os.Stat(target); err == nil {
		abs, err := filepath.Abs(target)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		target = abs
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", target)
	case "linux":
		cmd = exec.Command("xdg-open", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
