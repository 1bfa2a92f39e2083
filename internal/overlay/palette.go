package overlay

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultPalette is the label color cycle: red, blue, yellow, magenta, green,
// indigo, dark orange, cyan, pink, yellow-green.
var DefaultPalette = []string{
	"#ff0000", "#0000ff", "#ffff00", "#ff00ff", "#008000",
	"#4b0082", "#ff8c00", "#00ffff", "#ffc0cb", "#9acd32",
}

// Palette maps labels to colors, cycling when there are more labels than
// colors.
type Palette []colorful.Color

// ParsePalette parses "#rrggbb" strings into a Palette.
//
// Returns an error if hexes is empty or any entry is not a valid hex color.
func ParsePalette(hexes []string) (Palette, error) {
	if len(hexes) == 0 {
		return nil, fmt.Errorf("palette must contain at least one color")
	}
	p := make(Palette, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		p[i] = c
	}
	return p, nil
}

// For returns the color of a positive label: entry (label-1) mod len(p).
func (p Palette) For(label int) colorful.Color {
	return p[(label-1)%len(p)]
}
