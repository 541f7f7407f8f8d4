package builder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/wudi/pdftable/ir/semantic"
)

// ErrInvalidColor is returned by ParseColor for unrecognised input.
var ErrInvalidColor = errors.New("invalid color")

// Color represents an RGB color with components in [0, 1]. The zero value
// means "unset"; colors produced by ParseColor and RGB always carry A=1.
type Color struct {
	R, G, B float64
	A       float64
}

// RGB builds an opaque color from 8-bit components.
func RGB(r, g, b uint8) Color {
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}
}

// IsZero reports whether the color is unset.
func (c Color) IsZero() bool { return isZeroColor(c) }

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

// ParseColor accepts #rgb, #rrggbb (the leading # is optional) or an SVG
// color keyword such as "lightgray".
func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return Color{}, fmt.Errorf("%w: empty", ErrInvalidColor)
	}
	if named, ok := colornames.Map[v]; ok {
		return RGB(named.R, named.G, named.B), nil
	}
	hex := strings.TrimPrefix(v, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return RGB(uint8(n>>16), uint8(n>>8), uint8(n)), nil
}

// MustParseColor is like ParseColor but panics on error. Intended for
// package-level defaults.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

func isZeroColor(c Color) bool {
	return c.R == 0 && c.G == 0 && c.B == 0 && c.A == 0
}

func colorOperands(c Color) []semantic.Operand {
	return semantic.Numbers(c.R, c.G, c.B)
}
