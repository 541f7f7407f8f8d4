package fonts

import (
	"sync"

	"golang.org/x/text/encoding/charmap"

	"github.com/wudi/pdftable/ir/semantic"
)

// fallbackAdvance is used for glyphs with no known width, in glyph space.
const fallbackAdvance = 500

// EncodeWinAnsi encodes text for a simple font using WinAnsiEncoding.
// Runes without a WinAnsi code are replaced by '?'.
func EncodeWinAnsi(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

var glyphMaps = struct {
	sync.Mutex
	m map[*semantic.Font]map[rune]int
}{m: make(map[*semantic.Font]map[rune]int)}

// GlyphMap inverts font.ToUnicode, returning the glyph ID for each rune.
// It returns nil for fonts without a ToUnicode table.
func GlyphMap(font *semantic.Font) map[rune]int {
	if font == nil || len(font.ToUnicode) == 0 {
		return nil
	}
	glyphMaps.Lock()
	defer glyphMaps.Unlock()
	if m, ok := glyphMaps.m[font]; ok {
		return m
	}
	m := make(map[rune]int, len(font.ToUnicode))
	for gid, runes := range font.ToUnicode {
		for _, r := range runes {
			if prev, exists := m[r]; !exists || gid < prev {
				m[r] = gid
			}
		}
	}
	glyphMaps.m[font] = m
	return m
}

// Width returns the advance width of text set in font at size, in points.
// Composite fonts with an embedded file are measured by shaping; all other
// fonts use their width table.
func Width(font *semantic.Font, text string, size float64) float64 {
	if text == "" {
		return 0
	}
	if size == 0 {
		size = 12
	}
	if font == nil {
		return float64(len([]rune(text))) * size * fallbackAdvance / 1000
	}
	total := 0.0
	if font.Subtype == "Type0" {
		if glyphs, err := ShapeText(text, font); err == nil && len(glyphs) > 0 {
			for _, g := range glyphs {
				total += g.XAdvance
			}
			return total / 1000 * size
		}
		cmap := GlyphMap(font)
		for _, r := range text {
			total += float64(widthOf(font, cmap[r]))
		}
		return total / 1000 * size
	}
	for _, b := range EncodeWinAnsi(text) {
		total += float64(widthOf(font, int(b)))
	}
	return total / 1000 * size
}

func widthOf(font *semantic.Font, code int) int {
	if w, ok := font.Widths[code]; ok {
		return w
	}
	if font.DescendantFont != nil && font.DescendantFont.DW > 0 {
		return font.DescendantFont.DW
	}
	return fallbackAdvance
}

// Ascent returns the distance from the baseline to the top of the face.
func Ascent(font *semantic.Font, size float64) float64 {
	if font == nil || font.Descriptor == nil || font.Descriptor.Ascent == 0 {
		return 0.8 * size
	}
	return font.Descriptor.Ascent / 1000 * size
}

// Descent returns the (negative) distance from the baseline to the bottom
// of the face.
func Descent(font *semantic.Font, size float64) float64 {
	if font == nil || font.Descriptor == nil {
		return -0.2 * size
	}
	return font.Descriptor.Descent / 1000 * size
}

// LineHeight returns the baseline-to-baseline distance including the
// font's built-in gap.
func LineHeight(font *semantic.Font, size float64) float64 {
	if font == nil || font.Descriptor == nil {
		return 1.2 * size
	}
	fd := font.Descriptor
	if fd.LineHeight > 0 {
		return fd.LineHeight / 1000 * size
	}
	if h := fd.FontBBox[3] - fd.FontBBox[1]; h > 0 {
		return h / 1000 * size
	}
	return (fd.Ascent - fd.Descent) / 1000 * size
}
