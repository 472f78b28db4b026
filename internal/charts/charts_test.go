package charts

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/fine-dashboard/internal/dataset"
	"github.com/ramonehamilton/fine-dashboard/internal/palette"
	"github.com/ramonehamilton/fine-dashboard/internal/sankey"
)

type fakeSource struct{}

func (fakeSource) Dialogues(character string) []dataset.Dialogue {
	if character != "Ross" {
		return nil
	}
	return []dataset.Dialogue{
		{Text: "I'm fine.", HasText: true, ForcedPositivity: 0.9},
		{Discomfort: 0.4},
	}
}

func (fakeSource) SentenceTypes(character string) []dataset.SentenceScores {
	if character != "Ross" {
		return nil
	}
	return []dataset.SentenceScores{{Declarative: 1}, {Interrogative: 1}, {Exclamatory: 1}}
}

func (fakeSource) Pauses(character string) []int {
	if character != "Ross" {
		return nil
	}
	return []int{1, 0, 1}
}

func TestComposeCharacter(t *testing.T) {
	chart := ComposeCharacter(fakeSource{}, "Ross")

	assert.Equal(t, "Ross", chart.Character)
	assert.Equal(t, 3, chart.Length)
	require.Len(t, chart.Traces, 7)

	names := make([]string, len(chart.Traces))
	for i, tr := range chart.Traces {
		names[i] = tr.Name
	}
	assert.Equal(t, []string{
		"Declarative", "Interrogative", "Exclamatory",
		"Forced positivity", "Discomfort", "Suppressed frustration",
		"Pauses",
	}, names)

	declarative := chart.Traces[0]
	assert.Equal(t, KindLine, declarative.Kind)
	assert.Equal(t, "dash", declarative.Dash)
	assert.Equal(t, "#00009E", declarative.Color)
	assert.Equal(t, 1.0, declarative.Points[0].Y)
	assert.Equal(t, "dot", chart.Traces[1].Dash)
	assert.Empty(t, chart.Traces[2].Dash)

	forced := chart.Traces[3]
	assert.Equal(t, KindArea, forced.Kind)
	assert.Equal(t, "#FFF580", forced.Color)
	require.Len(t, forced.Points, 2)
	assert.Equal(t, "I'm fine.", forced.Points[0].Text)
	assert.Equal(t, 0.9, forced.Points[0].Y)
	assert.Equal(t, NoDialogueText, forced.Points[1].Text)
	assert.Equal(t, 0.4, chart.Traces[4].Points[1].Y)

	pauses := chart.Traces[6]
	assert.Equal(t, KindMarkers, pauses.Kind)
	assert.Equal(t, []Point{{X: 0, Y: PauseMarkerY}, {X: 2, Y: PauseMarkerY}}, pauses.Points)
}

func TestComposeCharacter_Unknown(t *testing.T) {
	chart := ComposeCharacter(fakeSource{}, "Gunther")

	assert.Equal(t, 0, chart.Length)
	require.Len(t, chart.Traces, 7)
	for _, tr := range chart.Traces {
		assert.Empty(t, tr.Points)
	}
}

func TestRenderCharacterChart(t *testing.T) {
	var buf bytes.Buffer
	err := RenderCharacterChart(&buf, ComposeCharacter(fakeSource{}, "Ross"), DefaultChartConfig())
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "Was Ross Actually F.I.N.E?")
	assert.Contains(t, html, "Suppressed frustration")
	assert.Contains(t, html, "No dialogue available")
	assert.Contains(t, html, "dashed")
}

func TestRenderSankey(t *testing.T) {
	g := sankey.Build([]dataset.FlowEvent{
		{Season: "1", Location: "Central Perk", Counterpart: "Rachel"},
		{Season: "2", Location: "Other", Counterpart: "Other"},
	}, palette.DefaultTable())
	g = sankey.ApplyHighlight(g, &sankey.Hover{Kind: sankey.HoverLink, Index: 0})

	var buf bytes.Buffer
	require.NoError(t, RenderSankey(&buf, g, DefaultChartConfig()))

	html := buf.String()
	assert.Contains(t, html, "sankey")
	assert.Contains(t, html, "rgba(0,0,158,0.8)")
	assert.Contains(t, html, "Other (location)")
	assert.Contains(t, html, "Other (counterpart)")
}

func TestRenderSankey_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSankey(&buf, sankey.Build(nil, nil), DefaultChartConfig()))
	assert.Contains(t, buf.String(), "sankey")
}

func TestNodeNames(t *testing.T) {
	g := sankey.Graph{Nodes: []sankey.Node{
		{Label: "1", Tier: sankey.TierSeason},
		{Label: "Other", Tier: sankey.TierLocation},
		{Label: "Other", Tier: sankey.TierCounterpart},
		{Label: "Rachel", Tier: sankey.TierCounterpart},
	}}

	assert.Equal(t, []string{"1", "Other (location)", "Other (counterpart)", "Rachel"}, NodeNames(g))
}

func TestRenderToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "flow.html")

	err := RenderToFile(path, func(w io.Writer) error {
		return RenderSankey(w, sankey.Build(nil, nil), DefaultChartConfig())
	})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
