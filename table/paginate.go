package table

import (
	"fmt"

	"github.com/wudi/pdftable/document"
	"github.com/wudi/pdftable/observability"
)

// Height returns the total height the rows would take with opts. Nothing
// is drawn and the cursor does not move.
func Height(s Surface, rows []Row, opts ...Option) (float64, error) {
	p, err := Resolve(s, rows, opts...)
	if err != nil {
		return 0, err
	}
	return p.TotalHeight, nil
}

// Draw renders rows on s, adding or switching pages as rows overflow the
// bottom margin, and leaves the cursor at the table's left edge below the
// last row. A row is never split; a row taller than the page is drawn in
// full past the bottom margin. Content drawn before an error is kept.
func Draw(s Surface, rows []Row, opts ...Option) error {
	c := newConfig(opts)
	p, base, err := resolve(s, rows, c)
	if err != nil {
		return err
	}
	r := &renderer{s: s, p: p, rows: rows, base: base, log: c.log}
	err = r.run()
	if rerr := restoreFont(s, base); err == nil && rerr != nil {
		err = fmt.Errorf("table: restore font: %w", rerr)
	}
	return err
}

// band is the vertical extent of the row being placed.
type band struct {
	top, bottom float64
}

type renderer struct {
	s    Surface
	p    *Params
	rows []Row
	base fontState
	log  observability.Logger

	// rowsOnPage counts rows placed on the current page.
	rowsOnPage int
}

func (r *renderer) run() error {
	p := r.p
	startY := p.StartY
	if startY+p.HeightMinNumberOfRows > p.MaxY {
		if err := r.nextPage(0); err != nil {
			return err
		}
		startY = r.s.Margins().Top
	}
	b := band{bottom: startY}
	if err := r.hr(startY); err != nil {
		return err
	}

	usable := p.MaxY - r.s.Margins().Top
	for i := range r.rows {
		h := p.RowHeights[i]
		if h > usable {
			r.log.Warn("row taller than page", observability.Int("row", i), observability.Float64("height", h), observability.Float64("usable", usable))
		}
		if b.bottom+h > p.MaxY && r.rowsOnPage > 0 {
			if err := r.nextPage(i); err != nil {
				return err
			}
			top := r.s.Margins().Top
			b = band{top: top, bottom: top + h}
			if err := r.hr(top); err != nil {
				return err
			}
			if p.HeaderOnTopOfNewPage {
				if err := r.renderRow(0, b); err != nil {
					return err
				}
				b.top += p.RowHeights[0]
				b.bottom += p.RowHeights[0]
				if err := r.hr(top + p.RowHeights[0]); err != nil {
					return err
				}
			}
		} else {
			b.top = b.bottom
			b.bottom = b.top + h
		}
		if err := r.renderRow(i, b); err != nil {
			return err
		}
		if err := r.hr(b.bottom); err != nil {
			return err
		}
	}
	r.s.MoveTo(p.StartX, b.bottom)
	return nil
}

// nextPage adds a page or moves to the next buffered one.
func (r *renderer) nextPage(row int) error {
	var err error
	if r.p.NewPages {
		err = r.s.AddPage()
	} else {
		err = r.s.GoToNextPage()
	}
	if err != nil {
		return fmt.Errorf("table: page break before row %d: %w", row, err)
	}
	r.rowsOnPage = 0
	r.log.Debug("table page break", observability.Int("row", row), observability.Bool("new_page", r.p.NewPages))
	return nil
}

func (r *renderer) hr(y float64) error {
	if !r.p.HorizontalLines {
		return nil
	}
	x1, x2 := r.p.StartX, r.p.StartX+r.p.Width
	if err := r.s.Hr(document.HrOptions{X1: &x1, X2: &x2, Y: &y}); err != nil {
		return fmt.Errorf("table: separator at %g: %w", y, err)
	}
	return nil
}
