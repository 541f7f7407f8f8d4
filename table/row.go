package table

import (
	"fmt"

	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/document"
)

// renderRow draws row i inside b: the row decoration, then every cell's
// decoration, image and text.
func (r *renderer) renderRow(i int, b band) error {
	p, s := r.p, r.s
	h := p.RowHeights[i]
	rs := p.RowStyle.RowStyle(i)
	if err := useFont(s, r.base, rs, CellStyle{}); err != nil {
		return fmt.Errorf("table: row %d: %w", i, err)
	}
	if rs.HasFill {
		if err := s.FillRect(p.StartX, b.top, p.Width, h, rs.FillColor, rs.FillOpacity); err != nil {
			return fmt.Errorf("table: row %d: %w", i, err)
		}
	}
	if rs.HasStroke {
		if err := s.StrokeRect(p.StartX, b.top, p.Width, h, rs.StrokeColor, defaultLineWidth); err != nil {
			return fmt.Errorf("table: row %d: %w", i, err)
		}
	}
	rowText := rs.TextColor
	if rowText.IsZero() {
		rowText = p.TextColor
	}
	for j, cell := range r.rows[i] {
		if err := r.renderCell(i, j, cell, b, rs, rowText); err != nil {
			return fmt.Errorf("table: row %d cell %d: %w", i, j, err)
		}
	}
	r.rowsOnPage++
	return nil
}

func (r *renderer) renderCell(i, j int, cell Cell, b band, rs RowStyle, rowText builder.Color) error {
	p, s := r.p, r.s
	h := p.RowHeights[i]
	cs := p.CellStyle.CellStyle(i, j)
	if err := useFont(s, r.base, rs, cs); err != nil {
		return err
	}
	x, w := p.ColumnXs[j], p.ColumnWidths[j]
	if cs.HasFill {
		if err := s.FillRect(x, b.top, w, h, cs.FillColor, cs.FillOpacity); err != nil {
			return err
		}
	}
	if cs.HasStroke {
		lw := cs.LineWidth
		if lw <= 0 {
			lw = defaultLineWidth
		}
		if err := s.StrokeRect(x, b.top, w, h, cs.StrokeColor, lw); err != nil {
			return err
		}
	}

	content, err := measureCell(s, p, i, j, cell)
	if err != nil {
		return err
	}
	y := contentTop(p, b, h, content.height())
	left := x + p.HorPadding
	if content.imageWidth > 0 {
		ix := left
		if cell.ImageOptions != nil {
			switch cell.ImageOptions.Align {
			case document.AlignCenter:
				ix += (p.ColumnTextWidths[j] - content.imageWidth) / 2
			case document.AlignRight:
				ix += p.ColumnTextWidths[j] - content.imageWidth
			}
		}
		if err := s.Image(cell.Image, ix, y, document.ImageOptions{Width: content.imageWidth, Height: content.imageHeight}); err != nil {
			return err
		}
	}
	if cell.Text != "" {
		opts := content.text
		if opts.Color.IsZero() {
			opts.Color = cs.TextColor
		}
		if opts.Color.IsZero() {
			opts.Color = rowText
		}
		if err := s.Text(cell.Text, left, y+content.imageHeight, opts); err != nil {
			return err
		}
	}
	return nil
}

// contentTop is the y of a cell's content block of height ch inside b.
func contentTop(p *Params, b band, rowHeight, ch float64) float64 {
	switch p.VerticalAlign {
	case VAlignTop:
		return b.top + p.VerPadding
	case VAlignBottom:
		return b.top + rowHeight - ch - p.VerPadding
	default:
		return b.top + (rowHeight-ch)/2
	}
}
