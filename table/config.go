package table

import (
	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/document"
	"github.com/wudi/pdftable/observability"
)

const (
	defaultPadding    = 5
	defaultMinRows    = 3
	defaultLineWidth  = 1
	defaultAlignValue = document.AlignCenter
)

// Option configures a table.
type Option func(*config)

type config struct {
	startX, startY *float64
	width          float64

	horPadding, verPadding float64

	columnWidths    []float64
	columnFractions []float64

	verticalAlign VerticalAlign
	minRows       int

	headerOnTopOfNewPage bool
	newPages             bool
	horizontalLines      bool

	textColor builder.Color
	align     AlignPolicy
	rowStyle  RowStylePolicy
	cellStyle CellStylePolicy

	log observability.Logger
}

func newConfig(opts []Option) *config {
	c := &config{
		horPadding:           defaultPadding,
		verPadding:           defaultPadding,
		verticalAlign:        VAlignCenter,
		minRows:              defaultMinRows,
		headerOnTopOfNewPage: true,
		newPages:             true,
		horizontalLines:      true,
		align:                AlignFunc(func(int, int) document.Align { return defaultAlignValue }),
		rowStyle:             RowStyleFunc(func(int) RowStyle { return RowStyle{} }),
		cellStyle:            CellStyleFunc(func(int, int) CellStyle { return CellStyle{} }),
		log:                  observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithStart anchors the table's top-left corner. Defaults to the cursor.
func WithStart(x, y float64) Option {
	return func(c *config) { c.startX, c.startY = &x, &y }
}

// WithStartX overrides only the horizontal anchor.
func WithStartX(x float64) Option {
	return func(c *config) { c.startX = &x }
}

// WithStartY overrides only the vertical anchor.
func WithStartY(y float64) Option {
	return func(c *config) { c.startY = &y }
}

// WithWidth sets the table width. Zero uses the usable page width.
func WithWidth(w float64) Option {
	return func(c *config) { c.width = w }
}

// WithPadding sets the horizontal and vertical cell padding.
func WithPadding(horizontal, vertical float64) Option {
	return func(c *config) { c.horPadding, c.verPadding = horizontal, vertical }
}

// WithColumnWidths sets absolute column widths. They take precedence over
// fractions.
func WithColumnWidths(widths ...float64) Option {
	return func(c *config) { c.columnWidths = append([]float64(nil), widths...) }
}

// WithColumnFractions sizes each column as a fraction of the table width.
func WithColumnFractions(fractions ...float64) Option {
	return func(c *config) { c.columnFractions = append([]float64(nil), fractions...) }
}

// WithVerticalAlign positions cell content inside each row.
func WithVerticalAlign(v VerticalAlign) Option {
	return func(c *config) { c.verticalAlign = v }
}

// WithMinRowsBottomOfPage starts the table on a new page unless its first n
// rows fit above the bottom margin. Non-positive values keep the default of 3.
func WithMinRowsBottomOfPage(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.minRows = n
		}
	}
}

// WithHeaderOnTopOfNewPage repeats the first row after every page break.
func WithHeaderOnTopOfNewPage(v bool) Option {
	return func(c *config) { c.headerOnTopOfNewPage = v }
}

// WithNewPages chooses between adding pages and moving to the next
// buffered page when the table overflows.
func WithNewPages(v bool) Option {
	return func(c *config) { c.newPages = v }
}

// WithHorizontalLines draws separators around every row.
func WithHorizontalLines(v bool) Option {
	return func(c *config) { c.horizontalLines = v }
}

// WithTextColor sets the default cell text colour.
func WithTextColor(col builder.Color) Option {
	return func(c *config) { c.textColor = col }
}

// WithAlign sets the alignment policy. Defaults to centred text.
func WithAlign(p AlignPolicy) Option {
	return func(c *config) {
		if p != nil {
			c.align = p
		}
	}
}

// WithRowStyle sets the row style policy.
func WithRowStyle(p RowStylePolicy) Option {
	return func(c *config) {
		if p != nil {
			c.rowStyle = p
		}
	}
}

// WithCellStyle sets the cell style policy.
func WithCellStyle(p CellStylePolicy) Option {
	return func(c *config) {
		if p != nil {
			c.cellStyle = p
		}
	}
}

// WithLogger logs page breaks and oversized rows.
func WithLogger(l observability.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// Params is a resolved table layout. Everything in it is fixed before the
// first row is drawn.
type Params struct {
	StartX, StartY float64
	Width          float64
	HorPadding     float64
	VerPadding     float64
	VerticalAlign  VerticalAlign
	MinRows        int

	HeaderOnTopOfNewPage bool
	NewPages             bool
	HorizontalLines      bool

	TextColor builder.Color
	Align     AlignPolicy
	RowStyle  RowStylePolicy
	CellStyle CellStylePolicy

	ColumnCount      int
	MaxY             float64
	ColumnXs         []float64
	ColumnWidths     []float64
	ColumnTextWidths []float64
	RowHeights       []float64

	// HeightMinNumberOfRows is the height of the first MinRows rows.
	HeightMinNumberOfRows float64
	TotalHeight           float64
}

// Resolve validates rows and options and computes the table geometry
// without drawing. Fonts are changed while rows are measured and restored
// before it returns.
func Resolve(s Surface, rows []Row, opts ...Option) (*Params, error) {
	p, _, err := resolve(s, rows, newConfig(opts))
	return p, err
}

func resolve(s Surface, rows []Row, c *config) (*Params, fontState, error) {
	base := captureFont(s)
	if err := validate(rows, c); err != nil {
		return nil, base, err
	}
	p := &Params{
		StartX:               s.X(),
		StartY:               s.Y(),
		Width:                c.width,
		HorPadding:           c.horPadding,
		VerPadding:           c.verPadding,
		VerticalAlign:        c.verticalAlign,
		MinRows:              c.minRows,
		HeaderOnTopOfNewPage: c.headerOnTopOfNewPage,
		NewPages:             c.newPages,
		HorizontalLines:      c.horizontalLines,
		TextColor:            c.textColor,
		Align:                c.align,
		RowStyle:             c.rowStyle,
		CellStyle:            c.cellStyle,
		ColumnCount:          len(rows[0]),
		MaxY:                 s.PageHeight() - s.Margins().Bottom,
	}
	if c.startX != nil {
		p.StartX = *c.startX
	}
	if c.startY != nil {
		p.StartY = *c.startY
	}
	if p.Width <= 0 {
		p.Width = s.UsableWidth()
	}
	if p.TextColor.IsZero() {
		p.TextColor = s.DefaultTextColor()
	}

	if err := allocateColumns(p, c.columnWidths, c.columnFractions); err != nil {
		return nil, base, err
	}
	heights, err := estimateRowHeights(s, p, rows, base)
	if rerr := restoreFont(s, base); err == nil && rerr != nil {
		err = rerr
	}
	if err != nil {
		return nil, base, err
	}
	p.RowHeights = heights
	for i, h := range heights {
		if i < p.MinRows {
			p.HeightMinNumberOfRows += h
		}
		p.TotalHeight += h
	}
	return p, base, nil
}

func validate(rows []Row, c *config) error {
	if len(rows) == 0 {
		return invalid("no rows")
	}
	cols := len(rows[0])
	if cols == 0 {
		return invalid("first row has no cells")
	}
	for i, row := range rows[1:] {
		if len(row) != cols {
			return invalid("row %d has %d cells, want %d", i+1, len(row), cols)
		}
	}
	if c.columnWidths != nil && len(c.columnWidths) != cols {
		return invalid("%d column widths for %d columns", len(c.columnWidths), cols)
	}
	if c.columnWidths == nil && c.columnFractions != nil && len(c.columnFractions) != cols {
		return invalid("%d column fractions for %d columns", len(c.columnFractions), cols)
	}
	if c.horPadding < 0 || c.verPadding < 0 {
		return invalid("negative padding")
	}
	switch c.verticalAlign {
	case VAlignTop, VAlignCenter, VAlignBottom:
	default:
		return invalid("unknown vertical alignment %q", c.verticalAlign)
	}
	return nil
}
