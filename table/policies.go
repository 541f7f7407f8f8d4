package table

import (
	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/document"
)

// FixedAlign aligns every cell the same way.
func FixedAlign(a document.Align) AlignFunc {
	return func(int, int) document.Align { return a }
}

// AlignTwoColumnsToExtremes aligns even columns left and odd columns right,
// which suits key/value tables.
func AlignTwoColumnsToExtremes() AlignFunc {
	return func(_, col int) document.Align {
		if col%2 == 0 {
			return document.AlignLeft
		}
		return document.AlignRight
	}
}

// EvenColumnsBold sets even columns in highlighted and odd columns in main.
func EvenColumnsBold(main, highlighted string) CellStyleFunc {
	return func(_, col int) CellStyle {
		if col%2 == 0 {
			return CellStyle{Font: highlighted}
		}
		return CellStyle{Font: main}
	}
}

// OddColumnsBold sets odd columns in highlighted and even columns in main.
func OddColumnsBold(main, highlighted string) CellStyleFunc {
	return func(_, col int) CellStyle {
		if col%2 == 0 {
			return CellStyle{Font: main}
		}
		return CellStyle{Font: highlighted}
	}
}

// AlternateMainColors fills even rows with fill1 and odd rows with fill2.
// Other fields come from common.
func AlternateMainColors(fill1, fill2 builder.Color, common RowStyle) RowStyleFunc {
	return func(row int) RowStyle {
		s := common
		s.HasFill = true
		if row%2 == 0 {
			s.FillColor = fill1
		} else {
			s.FillColor = fill2
		}
		return s
	}
}

// HeaderHighlight styles the first row apart from the rest.
type HeaderHighlight struct {
	HeadersFill builder.Color
	HeadersFont string
	RowFill     builder.Color
	RowFont     string
}

// HighlightHeaders fills every row, giving the first row its own fill and
// font. Other fields come from common.
func HighlightHeaders(h HeaderHighlight, common RowStyle) RowStyleFunc {
	return func(row int) RowStyle {
		s := common
		s.HasFill = true
		if row == 0 {
			s.Font, s.FillColor = h.HeadersFont, h.HeadersFill
		} else {
			s.Font, s.FillColor = h.RowFont, h.RowFill
		}
		return s
	}
}
