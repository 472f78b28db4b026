package palette

import (
	"fmt"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB255 parses a #rgb or #rrggbb color into 8-bit channels.
// Unparseable input yields the fallback gray.
func RGB255(hex string) (r, g, b uint8) {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(Fallback)
	}
	return c.RGB255()
}

// RGBA renders a hex color at the given opacity, e.g. "rgba(0,0,158,0.3)".
func RGBA(hex string, opacity float64) string {
	r, g, b := RGB255(hex)
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, strconv.FormatFloat(opacity, 'f', -1, 64))
}

// Darken scales each channel by factor, truncating and clamping at zero.
func Darken(hex string, factor float64) string {
	r, g, b := RGB255(hex)
	return fmt.Sprintf("#%02x%02x%02x", scale(r, factor), scale(g, factor), scale(b, factor))
}

func scale(c uint8, factor float64) int {
	v := int(float64(c) * factor)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
