package imaging

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the overlay fill colors.
type Palette struct {
	// Selected fills lines that are part of the selection.
	Selected color.NRGBA

	// Recognized fills lines that were recognized but are not selected.
	Recognized color.NRGBA
}

// DefaultPalette is a translucent blue for selected lines and a
// translucent white for the rest.
func DefaultPalette() Palette {
	p, _ := NewPalette("#4286F4", "#FFFFFF", 0.4)
	return p
}

// NewPalette parses the two highlight colors and applies alpha (0-1) to
// both. An 8-digit hex color carries its own alpha, which wins.
func NewPalette(selectedHex, recognizedHex string, alpha float64) (Palette, error) {
	selected, err := ParseHexColor(selectedHex, alpha)
	if err != nil {
		return Palette{}, fmt.Errorf("selected color: %w", err)
	}
	recognized, err := ParseHexColor(recognizedHex, alpha)
	if err != nil {
		return Palette{}, fmt.Errorf("recognized color: %w", err)
	}
	return Palette{Selected: selected, Recognized: recognized}, nil
}

// ParseHexColor parses "#RGB", "#RRGGBB" or "#RRGGBBAA". alpha is used
// when the string has no alpha component.
func ParseHexColor(hex string, alpha float64) (color.NRGBA, error) {
	if hex == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}

	a := uint8(min(max(alpha, 0), 1)*255 + 0.5)
	if len(hex) == 9 {
		v, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in %q: %w", hex, err)
		}
		a = uint8(v)
		hex = hex[:7]
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
