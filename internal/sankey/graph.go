// Package sankey builds the three-tier season → location → counterpart flow
// diagram from the argument log and derives hover highlights from it.
package sankey

import (
	"fmt"
	"sort"

	"github.com/ramonehamilton/fine-dashboard/internal/dataset"
	"github.com/ramonehamilton/fine-dashboard/internal/palette"
)

// Opacities of resting and highlighted elements.
const (
	RestingOpacity   = 0.3
	HighlightOpacity = 0.8
	DarkenFactor     = 0.8
)

// Tier is a node category of the diagram.
type Tier int

const (
	TierSeason Tier = iota
	TierLocation
	TierCounterpart
)

func (t Tier) String() string {
	switch t {
	case TierSeason:
		return "season"
	case TierLocation:
		return "location"
	case TierCounterpart:
		return "counterpart"
	default:
		return "unknown"
	}
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Node is one diagram node. BaseColor never changes after Build; Color is the
// color to render with.
type Node struct {
	Label     string `json:"label"`
	Tier      Tier   `json:"tier"`
	Color     string `json:"color"`
	BaseColor string `json:"baseColor"`
}

// Link is one weighted flow between two nodes, colored by its location endpoint.
type Link struct {
	Source    int    `json:"source"`
	Target    int    `json:"target"`
	Value     int    `json:"value"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	BaseColor string `json:"baseColor"`
}

// Graph is a rebuilt-from-scratch diagram. Node indices are seasons first,
// then locations, then counterparts.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Empty reports whether the graph has no nodes.
func (g Graph) Empty() bool {
	return len(g.Nodes) == 0
}

// TierSize returns the number of nodes in a tier.
func (g Graph) TierSize(t Tier) int {
	n := 0
	for _, node := range g.Nodes {
		if node.Tier == t {
			n++
		}
	}
	return n
}

type pair struct {
	from, to string
}

// Build aggregates complete flow events into a graph. It is a pure function:
// equal inputs yield equal graphs, and no events yield an empty graph.
func Build(events []dataset.FlowEvent, table *palette.Table) Graph {
	if table == nil {
		table = palette.DefaultTable()
	}

	seasonLocation := make(map[pair]int)
	locationCounterpart := make(map[pair]int)
	var seasons, locations, counterparts []string
	seen := [3]map[string]bool{{}, {}, {}}

	for _, e := range events {
		seasonLocation[pair{e.Season, e.Location}]++
		locationCounterpart[pair{e.Location, e.Counterpart}]++

		if !seen[TierSeason][e.Season] {
			seen[TierSeason][e.Season] = true
			seasons = append(seasons, e.Season)
		}
		if !seen[TierLocation][e.Location] {
			seen[TierLocation][e.Location] = true
			locations = append(locations, e.Location)
		}
		if !seen[TierCounterpart][e.Counterpart] {
			seen[TierCounterpart][e.Counterpart] = true
			counterparts = append(counterparts, e.Counterpart)
		}
	}

	sort.SliceStable(seasons, func(i, j int) bool { return naturalLess(seasons[i], seasons[j]) })
	locations = dataset.OrderLocations(locations, table)
	sort.Strings(counterparts)

	g := Graph{
		Nodes: make([]Node, 0, len(seasons)+len(locations)+len(counterparts)),
		Links: make([]Link, 0, len(seasonLocation)+len(locationCounterpart)),
	}

	seasonIdx := make(map[string]int, len(seasons))
	for _, s := range seasons {
		seasonIdx[s] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{Label: s, Tier: TierSeason, Color: palette.Neutral, BaseColor: palette.Neutral})
	}
	locationIdx := make(map[string]int, len(locations))
	for _, l := range locations {
		locationIdx[l] = len(g.Nodes)
		c := table.Color(l)
		g.Nodes = append(g.Nodes, Node{Label: l, Tier: TierLocation, Color: c, BaseColor: c})
	}
	counterpartIdx := make(map[string]int, len(counterparts))
	for _, c := range counterparts {
		counterpartIdx[c] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{Label: c, Tier: TierCounterpart, Color: palette.Neutral, BaseColor: palette.Neutral})
	}

	g.Links = append(g.Links, links(seasonLocation, seasonIdx, locationIdx, func(p pair) string { return p.to }, table)...)
	g.Links = append(g.Links, links(locationCounterpart, locationIdx, counterpartIdx, func(p pair) string { return p.from }, table)...)

	return g
}

// links turns pair counts into links ordered by (source, target).
func links(counts map[pair]int, from, to map[string]int, location func(pair) string, table *palette.Table) []Link {
	out := make([]Link, 0, len(counts))
	for p, n := range counts {
		base := table.Color(location(p))
		out = append(out, Link{
			Source:    from[p.from],
			Target:    to[p.to],
			Value:     n,
			Label:     fmt.Sprintf("%s → %s: %d", p.from, p.to, n),
			Color:     palette.RGBA(base, RestingOpacity),
			BaseColor: base,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// naturalLess compares strings with digit runs ordered numerically, so "S2"
// sorts before "S10".
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ca, ra := chunk(a)
		cb, rb := chunk(b)
		if ca != cb {
			da, db := isDigit(ca[0]), isDigit(cb[0])
			if da && db {
				na, nb := trimZeros(ca), trimZeros(cb)
				if len(na) != len(nb) {
					return len(na) < len(nb)
				}
				if na != nb {
					return na < nb
				}
				return len(ca) < len(cb)
			}
			return ca < cb
		}
		a, b = ra, rb
	}
	return len(a) < len(b)
}

// chunk splits off the leading run of digits or non-digits.
func chunk(s string) (head, rest string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

func trimZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
