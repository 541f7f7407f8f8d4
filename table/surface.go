// Package table lays out and paginates grids of text and image cells on a
// document.
//
// Layout happens in two passes over the same rows. Resolve computes the
// column geometry and the height of every row, measuring text with the
// fonts each row and cell will be drawn with. Draw then walks the rows,
// moving to a new page whenever the next row would cross the bottom
// margin, optionally repeating the first row as a header, and leaves the
// document cursor below the table.
package table

import (
	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/document"
)

// TextMeasurer measures wrapped text in the current font.
type TextMeasurer interface {
	HeightOfString(text string, opts document.TextOptions) (float64, error)
}

// ImageDecoder reads the native size of encoded image data.
type ImageDecoder interface {
	ImageSize(data []byte) (width, height float64, err error)
}

// Surface is the stateful drawing target a table is laid out on. Its
// cursor and font state are shared with the rest of the document.
type Surface interface {
	TextMeasurer
	ImageDecoder

	X() float64
	Y() float64
	MoveTo(x, y float64)

	PageHeight() float64
	Margins() document.Margins
	UsableWidth() float64
	AddPage() error
	GoToNextPage() error

	CurrentFont() string
	CurrentFontSize() float64
	SetFont(name string) error
	SetFontSize(size float64)
	DefaultTextColor() builder.Color

	FillRect(x, y, w, h float64, c builder.Color, opacity float64) error
	StrokeRect(x, y, w, h float64, c builder.Color, lineWidth float64) error
	Hr(opts document.HrOptions) error
	Text(text string, x, y float64, opts document.TextOptions) error
	Image(data []byte, x, y float64, opts document.ImageOptions) error
}

var _ Surface = (*document.Document)(nil)

// fontState is the font selection a table starts with.
type fontState struct {
	name string
	size float64
}

func captureFont(s Surface) fontState {
	return fontState{name: s.CurrentFont(), size: s.CurrentFontSize()}
}

// useFont applies base, then the row override, then the cell override, so
// every cell is measured and drawn with the same font whatever the
// previous cell used.
func useFont(s Surface, base fontState, row RowStyle, cell CellStyle) error {
	name, size := base.name, base.size
	if row.Font != "" {
		name = row.Font
	}
	if row.FontSize > 0 {
		size = row.FontSize
	}
	if cell.Font != "" {
		name = cell.Font
	}
	if cell.FontSize > 0 {
		size = cell.FontSize
	}
	if s.CurrentFontSize() != size {
		s.SetFontSize(size)
	}
	if s.CurrentFont() != name {
		if err := s.SetFont(name); err != nil {
			return err
		}
	}
	return nil
}

func restoreFont(s Surface, base fontState) error {
	return useFont(s, base, RowStyle{}, CellStyle{})
}
