// Package charts composes the per-character sentiment chart and renders it,
// and the flow diagram, as standalone go-echarts HTML pages.
package charts

import (
	"github.com/ramonehamilton/fine-dashboard/internal/dataset"
)

// NoDialogueText labels area points whose row has no dialogue.
const NoDialogueText = "No dialogue available"

// PauseMarkerY is the height at which pause markers are drawn.
const PauseMarkerY = 0.5

// TraceKind is how a trace is drawn.
type TraceKind string

const (
	KindLine    TraceKind = "line"
	KindArea    TraceKind = "area"
	KindMarkers TraceKind = "markers"
)

// Point is one data point of a trace. Text is the dialogue a click on the
// point reports; it is only set on area traces.
type Point struct {
	X    int     `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text,omitempty"`
}

// Trace is one named series of the character chart.
type Trace struct {
	Name   string    `json:"name"`
	Kind   TraceKind `json:"kind"`
	Color  string    `json:"color"`
	Dash   string    `json:"dash,omitempty"` // "dash", "dot", or "" for solid
	Points []Point   `json:"points"`
}

// CharacterChart is the full description of one character's chart.
type CharacterChart struct {
	Character string  `json:"character"`
	Length    int     `json:"length"` // x-axis length
	Traces    []Trace `json:"traces"`
}

// CharacterSource supplies the windowed per-character rows. It is
// implemented by *dataset.Store.
type CharacterSource interface {
	Dialogues(character string) []dataset.Dialogue
	SentenceTypes(character string) []dataset.SentenceScores
	Pauses(character string) []int
}

type sentenceTrace struct {
	name, color, dash string
	value             func(dataset.SentenceScores) float64
}

var sentenceTraces = []sentenceTrace{
	{"Declarative", "#00009E", "dash", func(s dataset.SentenceScores) float64 { return s.Declarative }},
	{"Interrogative", "#FFDC00", "dot", func(s dataset.SentenceScores) float64 { return s.Interrogative }},
	{"Exclamatory", "#9A0006", "", func(s dataset.SentenceScores) float64 { return s.Exclamatory }},
}

type sentimentTrace struct {
	name, color string
	value       func(dataset.Dialogue) float64
}

var sentimentTraces = []sentimentTrace{
	{"Forced positivity", "#FFF580", func(d dataset.Dialogue) float64 { return d.ForcedPositivity }},
	{"Discomfort", "#42A2D6", func(d dataset.Dialogue) float64 { return d.Discomfort }},
	{"Suppressed frustration", "#FF4238", func(d dataset.Dialogue) float64 { return d.SuppressedFrustration }},
}

// ComposeCharacter assembles the sentence-type lines, the sentiment areas
// carrying the clickable dialogue text, and the pause markers.
func ComposeCharacter(src CharacterSource, character string) CharacterChart {
	sentences := src.SentenceTypes(character)
	dialogues := src.Dialogues(character)
	pauses := src.Pauses(character)

	chart := CharacterChart{
		Character: character,
		Length:    max(len(sentences), len(dialogues), len(pauses)),
		Traces:    make([]Trace, 0, len(sentenceTraces)+len(sentimentTraces)+1),
	}

	for _, st := range sentenceTraces {
		tr := Trace{Name: st.name, Kind: KindLine, Color: st.color, Dash: st.dash, Points: make([]Point, len(sentences))}
		for i, s := range sentences {
			tr.Points[i] = Point{X: i, Y: st.value(s)}
		}
		chart.Traces = append(chart.Traces, tr)
	}

	for _, st := range sentimentTraces {
		tr := Trace{Name: st.name, Kind: KindArea, Color: st.color, Points: make([]Point, len(dialogues))}
		for i, d := range dialogues {
			text := NoDialogueText
			if d.HasText {
				text = d.Text
			}
			tr.Points[i] = Point{X: i, Y: st.value(d), Text: text}
		}
		chart.Traces = append(chart.Traces, tr)
	}

	markers := Trace{Name: "Pauses", Kind: KindMarkers, Color: "black", Points: []Point{}}
	for i, p := range pauses {
		if p == 1 {
			markers.Points = append(markers.Points, Point{X: i, Y: PauseMarkerY})
		}
	}
	chart.Traces = append(chart.Traces, markers)

	return chart
}
