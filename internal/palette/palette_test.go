package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Central Perk", "central perk"},
		{"typographic apostrophe", "Joey’s apartment", "joey's apartment"},
		{"surrounding whitespace", "  Monica's apartment \t", "monica's apartment"},
		{"already canonical", "the hospital", "the hospital"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.in))
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[ \t’‘'A-Za-z0-9]{0,24}`).Draw(t, "location")
		once := Canonicalize(s)
		if twice := Canonicalize(once); twice != once {
			t.Fatalf("Canonicalize not idempotent: %q -> %q -> %q", s, once, twice)
		}
	})
}

func TestTable_ColorVariantsResolveTogether(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, "#FFDC00", table.Color("Joey's apartment"))
	assert.Equal(t, table.Color("Joey's apartment"), table.Color(" Joey’s apartment "))
	assert.Equal(t, table.Color("Class of '91 reunion"), table.Color("class of ’91 reunion"))
}

func TestTable_PaletteWraps(t *testing.T) {
	table := DefaultTable()

	// Ninth and tenth known locations cycle back to the start of the palette.
	assert.Equal(t, LocationColors[0], table.Color("The breakfast buffet"))
	assert.Equal(t, LocationColors[1], table.Color("The hospital"))
}

func TestTable_UnknownFallsBack(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, Fallback, table.Color("Paleontology museum"))
	_, ok := table.Priority("Paleontology museum")
	assert.False(t, ok)
	assert.False(t, table.Known("Paleontology museum"))
}

func TestTable_Priority(t *testing.T) {
	table := DefaultTable()

	p, ok := table.Priority("ross’s apartment")
	assert.True(t, ok)
	assert.Equal(t, 3, p)
}

func TestNewTable_EmptyPalette(t *testing.T) {
	table := NewTable([]string{"Central Perk"}, nil, "")

	assert.Equal(t, Fallback, table.Color("Central Perk"))
	assert.True(t, table.Known("Central Perk"))
	assert.Equal(t, Fallback, table.FallbackColor())
}

func TestNewTable_CustomFallback(t *testing.T) {
	table := NewTable(nil, nil, "#123456")

	assert.Equal(t, "#123456", table.FallbackColor())
	assert.Equal(t, "#123456", table.Color("Anywhere"))
}

func TestRGBA(t *testing.T) {
	assert.Equal(t, "rgba(0,0,158,0.3)", RGBA("#00009E", 0.3))
	assert.Equal(t, "rgba(255,220,0,0.8)", RGBA("#FFDC00", 0.8))
	assert.Equal(t, "rgba(136,136,136,0.3)", RGBA("#888", 0.3))
}

func TestDarken(t *testing.T) {
	tests := []struct {
		in     string
		factor float64
		want   string
	}{
		{"#00009E", 0.8, "#00007e"},
		{"#D3D3D3", 0.8, "#a8a8a8"},
		{"#FFDC00", 0.8, "#ccb000"},
		{"#000000", 0.8, "#000000"},
		{"#FFFFFF", -1, "#000000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Darken(tt.in, tt.factor), tt.in)
	}
}

func TestRGB255_InvalidInput(t *testing.T) {
	r, g, b := RGB255("not-a-color")
	assert.Equal(t, [3]uint8{136, 136, 136}, [3]uint8{r, g, b})
}
