package sankey

import (
	"strings"

	"github.com/ramonehamilton/fine-dashboard/internal/palette"
)

// HoverKind identifies what the pointer is over.
type HoverKind string

const (
	HoverLink HoverKind = "link"
	HoverNode HoverKind = "node"
)

// Hover is the element under the pointer. A nil *Hover means nothing is hovered.
type Hover struct {
	Kind  HoverKind `json:"kind"`
	Index int       `json:"index"`
}

// ParseHover converts a chart pointer payload into a Hover. ECharts reports
// links with dataType "edge"; "link" is accepted too.
func ParseHover(dataType string, index int) (*Hover, bool) {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "edge", "link":
		return &Hover{Kind: HoverLink, Index: index}, true
	case "node":
		return &Hover{Kind: HoverNode, Index: index}, true
	default:
		return nil, false
	}
}

// ApplyHighlight returns a recolored copy of g emphasizing the hovered element.
// Colors are always derived from BaseColor, so repeated hovers never compound.
//
// A nil hover yields the resting view, which equals g for any graph returned
// by Build. A hover that does not reference an element of g returns g as is.
// The input graph is never modified.
func ApplyHighlight(g Graph, h *Hover) Graph {
	if h != nil && !h.valid(g) {
		return g
	}

	out := resting(g)
	if h == nil {
		return out
	}

	switch h.Kind {
	case HoverLink:
		l := &out.Links[h.Index]
		l.Color = palette.RGBA(l.BaseColor, HighlightOpacity)
	case HoverNode:
		n := &out.Nodes[h.Index]
		n.Color = palette.RGBA(palette.Darken(n.BaseColor, DarkenFactor), HighlightOpacity)
	}
	return out
}

func (h *Hover) valid(g Graph) bool {
	switch h.Kind {
	case HoverLink:
		return h.Index >= 0 && h.Index < len(g.Links)
	case HoverNode:
		return h.Index >= 0 && h.Index < len(g.Nodes)
	default:
		return false
	}
}

// resting copies g with every color reset to its base.
func resting(g Graph) Graph {
	out := Graph{}
	if g.Nodes != nil {
		out.Nodes = make([]Node, len(g.Nodes))
		for i, n := range g.Nodes {
			n.Color = n.BaseColor
			out.Nodes[i] = n
		}
	}
	if g.Links != nil {
		out.Links = make([]Link, len(g.Links))
		for i, l := range g.Links {
			l.Color = palette.RGBA(l.BaseColor, RestingOpacity)
			out.Links[i] = l
		}
	}
	return out
}
