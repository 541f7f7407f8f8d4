// Package ingest reads tables out of Markdown, HTML and CSV sources and
// turns them into rows for the table package.
package ingest

import (
	"errors"

	"github.com/wudi/pdftable/document"
	"github.com/wudi/pdftable/table"
)

// ErrNoTable is returned when a source holds no table.
var ErrNoTable = errors.New("no table found")

// Table is a table read from a source document.
type Table struct {
	Rows []table.Row
	// Aligns holds a per-column alignment when the source declares one.
	// Columns without a declared alignment are empty.
	Aligns []document.Align
	// HasHeader reports whether the first row was marked as a header.
	HasHeader bool
}

// Columns returns the number of columns.
func (t Table) Columns() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// AlignPolicy aligns each column as the source declared, falling back to
// fallback for columns without a declaration.
func (t Table) AlignPolicy(fallback document.Align) table.AlignPolicy {
	aligns := append([]document.Align(nil), t.Aligns...)
	return table.AlignFunc(func(_, col int) document.Align {
		if col < len(aligns) && aligns[col] != "" {
			return aligns[col]
		}
		return fallback
	})
}

// normalize pads every row with empty cells to the widest row so the grid
// is rectangular.
func normalize(rows []table.Row) []table.Row {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range rows {
		for len(r) < width {
			r = append(r, table.Cell{})
		}
		rows[i] = r
	}
	return rows
}
