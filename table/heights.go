package table

import (
	"fmt"
	"math"

	"github.com/wudi/pdftable/document"
)

// cellContent is the measured content block of one cell: an optional image
// stacked above optional text.
type cellContent struct {
	imageWidth  float64
	imageHeight float64
	textHeight  float64
	text        document.TextOptions
}

func (c cellContent) height() float64 { return c.imageHeight + c.textHeight }

// measureCell sizes a cell's content with the current surface font. The
// estimator and the renderer both go through it so that row heights match
// what is drawn.
func measureCell(s Surface, p *Params, row, col int, cell Cell) (cellContent, error) {
	var out cellContent
	if len(cell.Image) > 0 {
		w, h, err := imageSize(s, cell, p.ColumnTextWidths[col])
		if err != nil {
			return out, err
		}
		out.imageWidth, out.imageHeight = w, h
	}
	out.text = document.TextOptions{Width: p.ColumnTextWidths[col], Align: p.Align.Align(row, col)}
	if cell.TextOptions != nil {
		out.text = out.text.Merge(*cell.TextOptions)
	}
	if cell.Text != "" {
		h, err := s.HeightOfString(cell.Text, out.text)
		if err != nil {
			return out, err
		}
		out.textHeight = h
	}
	return out, nil
}

// imageSize scales an image down to maxWidth, or to the cell's own cap,
// keeping its aspect ratio. Images are never scaled up.
func imageSize(s Surface, cell Cell, maxWidth float64) (float64, float64, error) {
	nw, nh, err := s.ImageSize(cell.Image)
	if err != nil {
		return 0, 0, err
	}
	if nw <= 0 || nh <= 0 {
		return 0, 0, nil
	}
	if cell.ImageOptions != nil && cell.ImageOptions.MaxWidth > 0 {
		maxWidth = math.Min(maxWidth, cell.ImageOptions.MaxWidth)
	}
	w := math.Min(nw, maxWidth)
	return w, nh * w / nw, nil
}

// estimateRowHeights measures every row as the tallest cell content plus
// the vertical padding above and below it.
func estimateRowHeights(s Surface, p *Params, rows []Row, base fontState) ([]float64, error) {
	heights := make([]float64, len(rows))
	for i, row := range rows {
		rs := p.RowStyle.RowStyle(i)
		var tallest float64
		for j, cell := range row {
			if err := useFont(s, base, rs, p.CellStyle.CellStyle(i, j)); err != nil {
				return nil, fmt.Errorf("table: row %d cell %d: %w", i, j, err)
			}
			content, err := measureCell(s, p, i, j, cell)
			if err != nil {
				return nil, fmt.Errorf("table: row %d cell %d: %w", i, j, err)
			}
			tallest = math.Max(tallest, content.height())
		}
		heights[i] = tallest + 2*p.VerPadding
	}
	return heights, nil
}
