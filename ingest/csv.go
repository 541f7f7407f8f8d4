package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/wudi/pdftable/table"
)

// CSVOptions configures FromCSV. The zero value reads comma separated
// records with no comment lines.
type CSVOptions struct {
	Comma   rune
	Comment rune
	// Header marks the first record as a header row.
	Header bool
}

// FromCSV reads every record of r as a row. Short records are padded with
// empty cells.
func FromCSV(r io.Reader, opts CSVOptions) (Table, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.Comment = opts.Comment
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return Table{}, ErrNoTable
	}
	return Table{
		Rows:      normalize(table.TextRows(records)),
		HasHeader: opts.Header,
	}, nil
}
