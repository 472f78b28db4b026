// Package palette assigns base colors to argument locations and provides the
// small amount of color math the flow diagram needs.
package palette

import (
	"strings"
)

// Neutral is the resting color of season and counterpart nodes.
const Neutral = "#D3D3D3"

// Fallback is the base color of any location outside the known list.
const Fallback = "#888888"

// KnownLocations is the canonical display order of locations in the flow diagram.
var KnownLocations = []string{
	"Central Perk",
	"Joey's apartment",
	"Monica's apartment",
	"Ross's apartment",
	"Other",
	"A Restaurant",
	"Class of '91 reunion",
	"The theatre",
	"The breakfast buffet",
	"The hospital",
}

// LocationColors is the ordered palette cycled over KnownLocations.
var LocationColors = []string{
	"#00009E", // deep blue
	"#FFDC00", // yellow
	"#9A0006", // dark red
	"#A3DBFE", // light blue
	"#A5714F", // brown
	"#6B9256", // olive
	"#F0AE75", // peach
	"#593178", // dark purple
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'")

// Canonicalize returns the lookup id of a location name. It is only ever used
// for color lookups and ordering, never for display.
func Canonicalize(location string) string {
	return strings.ToLower(strings.TrimSpace(apostrophes.Replace(location)))
}

// Table maps canonical location ids to base colors.
// It is read-only after construction and safe for concurrent use.
type Table struct {
	colors   map[string]string
	priority map[string]int
	fallback string
}

// NewTable builds a table from an ordered list of known locations and a palette.
// Known location i receives colors[i % len(colors)]. An empty palette assigns
// the fallback to every location.
func NewTable(known []string, colors []string, fallback string) *Table {
	if fallback == "" {
		fallback = Fallback
	}

	t := &Table{
		colors:   make(map[string]string, len(known)),
		priority: make(map[string]int, len(known)),
		fallback: fallback,
	}

	for i, loc := range known {
		id := Canonicalize(loc)
		if _, seen := t.priority[id]; seen {
			continue
		}
		t.priority[id] = i
		if len(colors) > 0 {
			t.colors[id] = colors[i%len(colors)]
		} else {
			t.colors[id] = fallback
		}
	}

	return t
}

// DefaultTable returns the table built from KnownLocations and LocationColors.
func DefaultTable() *Table {
	return NewTable(KnownLocations, LocationColors, Fallback)
}

// Color returns the base color of a location, or the fallback when unknown.
func (t *Table) Color(location string) string {
	if c, ok := t.colors[Canonicalize(location)]; ok {
		return c
	}
	return t.fallback
}

// Priority returns the position of a location in the known list.
func (t *Table) Priority(location string) (int, bool) {
	p, ok := t.priority[Canonicalize(location)]
	return p, ok
}

// Known reports whether the location is in the known list.
func (t *Table) Known(location string) bool {
	_, ok := t.priority[Canonicalize(location)]
	return ok
}

// FallbackColor returns the color used for unknown locations.
func (t *Table) FallbackColor() string {
	return t.fallback
}
