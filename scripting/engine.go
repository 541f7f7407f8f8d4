package scripting

import (
	"context"
)

// Engine represents a scripting engine (e.g., JavaScript).
type Engine interface {
	// Execute runs a script and returns its exported completion value.
	Execute(ctx context.Context, script string) (interface{}, error)

	// RegisterTable exposes the table being laid out to scripts.
	RegisterTable(view TableView) error
}

// TableView is the read-only view of a table that scripts can query.
type TableView interface {
	Rows() int
	Columns() int
	// Text returns the text of a cell, or "" when out of range.
	Text(row, col int) string
}

// GridView is a TableView over a text grid.
type GridView [][]string

func (g GridView) Rows() int { return len(g) }

func (g GridView) Columns() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

func (g GridView) Text(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}
