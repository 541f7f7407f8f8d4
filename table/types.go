package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/document"
)

// ErrInvalidConfiguration is returned before anything is drawn when the
// rows or options cannot produce a consistent layout.
var ErrInvalidConfiguration = errors.New("invalid table configuration")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("table: %w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// Cell is one table cell. A cell may hold text, an image or both; the image
// is stacked above the text.
type Cell struct {
	Text  string
	Image []byte
	// TextOptions override the column width and alignment the table
	// resolves for the cell.
	TextOptions  *document.TextOptions
	ImageOptions *ImageOptions
}

// ImageOptions control how a cell image is scaled and placed.
type ImageOptions struct {
	// MaxWidth caps the image width below the column's text width.
	MaxWidth float64
	// Align places a narrower image inside the column. Defaults to left.
	Align document.Align
}

// Row is an ordered sequence of cells. Every row of a table has the same
// number of cells as the first.
type Row []Cell

// TextCell returns a cell holding only text.
func TextCell(text string) Cell { return Cell{Text: text} }

// ImageCell returns a cell holding only an image.
func ImageCell(data []byte) Cell { return Cell{Image: data} }

// TextRows converts a grid of strings into rows of text cells.
func TextRows(records [][]string) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		row := make(Row, len(rec))
		for j, text := range rec {
			row[j] = TextCell(text)
		}
		rows[i] = row
	}
	return rows
}

// VerticalAlign positions cell content inside the row band.
type VerticalAlign string

const (
	VAlignTop    VerticalAlign = "top"
	VAlignCenter VerticalAlign = "center"
	VAlignBottom VerticalAlign = "bottom"
)

// ParseVerticalAlign accepts top, center (or middle) and bottom.
func ParseVerticalAlign(s string) (VerticalAlign, error) {
	switch v := VerticalAlign(strings.ToLower(strings.TrimSpace(s))); v {
	case VAlignTop, VAlignCenter, VAlignBottom:
		return v, nil
	case "middle":
		return VAlignCenter, nil
	}
	return "", invalid("unknown vertical alignment %q", s)
}

// ParseAlign accepts left, center, right and justify.
func ParseAlign(s string) (document.Align, error) {
	switch a := document.Align(strings.ToLower(strings.TrimSpace(s))); a {
	case document.AlignLeft, document.AlignCenter, document.AlignRight, document.AlignJustify:
		return a, nil
	}
	return "", invalid("unknown alignment %q", s)
}

// RowStyle decorates a whole row. Zero fields inherit the table defaults.
type RowStyle struct {
	HasFill   bool
	HasStroke bool
	// FillOpacity applies to the fill only. Zero means opaque.
	FillOpacity float64
	Font        string
	FontSize    float64
	TextColor   builder.Color
	FillColor   builder.Color
	StrokeColor builder.Color
}

// CellStyle decorates a single cell on top of its row style.
type CellStyle struct {
	HasFill     bool
	HasStroke   bool
	FillOpacity float64
	// LineWidth of the cell outline. Defaults to 1.
	LineWidth   float64
	Font        string
	FontSize    float64
	TextColor   builder.Color
	FillColor   builder.Color
	StrokeColor builder.Color
}

// AlignPolicy picks the text alignment of a cell.
type AlignPolicy interface {
	Align(row, col int) document.Align
}

// RowStylePolicy picks the style of a row.
type RowStylePolicy interface {
	RowStyle(row int) RowStyle
}

// CellStylePolicy picks the style of a cell.
type CellStylePolicy interface {
	CellStyle(row, col int) CellStyle
}

// AlignFunc adapts a function to AlignPolicy.
type AlignFunc func(row, col int) document.Align

func (f AlignFunc) Align(row, col int) document.Align { return f(row, col) }

// RowStyleFunc adapts a function to RowStylePolicy.
type RowStyleFunc func(row int) RowStyle

func (f RowStyleFunc) RowStyle(row int) RowStyle { return f(row) }

// CellStyleFunc adapts a function to CellStylePolicy.
type CellStyleFunc func(row, col int) CellStyle

func (f CellStyleFunc) CellStyle(row, col int) CellStyle { return f(row, col) }
