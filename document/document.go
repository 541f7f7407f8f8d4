// Package document is a stateful page surface on top of builder: a buffer
// of pages, a shared cursor, font and colour state, text measurement and
// the page-level helpers that tables and other content are laid out with.
//
// Coordinates are in points with the origin at the top-left corner of the
// page and y growing downwards. They are flipped to PDF user space only
// when operations are handed to the builder.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/fonts"
	"github.com/wudi/pdftable/ir/raw"
	"github.com/wudi/pdftable/ir/semantic"
	"github.com/wudi/pdftable/observability"
	"github.com/wudi/pdftable/writer"
)

var (
	// ErrPageNotFound is returned when a page index is outside the buffer.
	ErrPageNotFound = errors.New("page not found")
	// ErrNoPage is returned by drawing operations before any page exists.
	ErrNoPage = errors.New("document has no page")
	// ErrUnknownFont aliases builder.ErrUnknownFont.
	ErrUnknownFont = builder.ErrUnknownFont
)

// Margins are page margins in points.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// UniformMargins returns margins of v on every side.
func UniformMargins(v float64) Margins {
	return Margins{Top: v, Right: v, Bottom: v, Left: v}
}

// Colors are the document-wide default colours. A zero field means unset.
type Colors struct {
	Text       builder.Color
	Stroke     builder.Color
	Background builder.Color
	Fill       builder.Color
}

// DefaultColors returns the colours a new document starts with.
func DefaultColors() Colors {
	return Colors{
		Text:       builder.MustParseColor("#000000"),
		Stroke:     builder.MustParseColor("#cdcdce"),
		Background: builder.MustParseColor("#ffffff"),
		Fill:       builder.MustParseColor("#cdcdce"),
	}
}

// merge overrides c with the non-zero fields of other.
func (c Colors) merge(other Colors) Colors {
	if !other.Text.IsZero() {
		c.Text = other.Text
	}
	if !other.Stroke.IsZero() {
		c.Stroke = other.Stroke
	}
	if !other.Background.IsZero() {
		c.Background = other.Background
	}
	if !other.Fill.IsZero() {
		c.Fill = other.Fill
	}
	return c
}

// PageImage is an image painted centred on every new page.
type PageImage struct {
	Data  []byte
	Width float64
	// Height is the band reserved at the bottom of the page; footer only.
	Height float64
}

type namedFont struct {
	name string
	data []byte
}

type page struct {
	pb      builder.PageBuilder
	width   float64
	height  float64
	margins Margins
}

// Document is a buffered, multi-page drawing surface. It is not safe for
// concurrent use.
type Document struct {
	b       builder.PDFBuilder
	pages   []*page
	current int

	x, y float64

	pageWidth  float64
	pageHeight float64
	margins    Margins

	font        string
	fontSize    float64
	lineGap     float64
	fillColor   builder.Color
	strokeColor builder.Color
	lineWidth   float64

	defaults Colors
	header   *PageImage
	footer   *PageImage

	images map[uint64]*semantic.Image
	fonts  []namedFont

	info          *semantic.DocumentInfo
	compression   int
	deterministic bool
	autoFirstPage bool
	log           observability.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithPageSize sets the size of pages added from now on.
func WithPageSize(width, height float64) Option {
	return func(d *Document) {
		if width > 0 && height > 0 {
			d.pageWidth, d.pageHeight = width, height
		}
	}
}

// WithPaperSize selects a named paper size such as "A4" or "Letter".
// Unknown names keep the current size.
func WithPaperSize(name string) Option {
	return func(d *Document) {
		if size, ok := PaperSize(name); ok {
			d.pageWidth, d.pageHeight = size[0], size[1]
		}
	}
}

// WithMargins sets the margins of pages added from now on.
func WithMargins(m Margins) Option {
	return func(d *Document) { d.margins = m }
}

// WithDefaultColors merges c into the default colours.
func WithDefaultColors(c Colors) Option {
	return func(d *Document) { d.defaults = d.defaults.merge(c) }
}

// WithHeaderImage paints img centred at the top of every new page.
func WithHeaderImage(img PageImage) Option {
	return func(d *Document) { d.header = &img }
}

// WithFooterImage paints img centred at pageHeight-img.Height on every new page.
func WithFooterImage(img PageImage) Option {
	return func(d *Document) { d.footer = &img }
}

// WithLogger sets the logger used for page lifecycle events and writes.
func WithLogger(l observability.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.log = l
		}
	}
}

// WithFont registers a TrueType font under name.
func WithFont(name string, ttf []byte) Option {
	return func(d *Document) { d.fonts = append(d.fonts, namedFont{name: name, data: ttf}) }
}

// WithInfo sets the document information dictionary.
func WithInfo(info semantic.DocumentInfo) Option {
	return func(d *Document) { d.info = &info }
}

// WithCompression sets the flate level for written streams; zero disables it.
func WithCompression(level int) Option {
	return func(d *Document) { d.compression = level }
}

// WithDeterministicOutput makes WriteTo produce identical bytes for
// identical documents.
func WithDeterministicOutput() Option {
	return func(d *Document) { d.deterministic = true }
}

// WithAutoFirstPage controls whether New adds the first page. Defaults to true.
func WithAutoFirstPage(v bool) Option {
	return func(d *Document) { d.autoFirstPage = v }
}

// New creates a document. Unless disabled with WithAutoFirstPage the first
// page is added, so the page-added hook runs for it too.
func New(opts ...Option) (*Document, error) {
	letter, _ := PaperSize("Letter")
	d := &Document{
		b:             builder.NewBuilder(),
		current:       -1,
		pageWidth:     letter[0],
		pageHeight:    letter[1],
		margins:       UniformMargins(72),
		font:          "Helvetica",
		fontSize:      12,
		lineWidth:     1,
		defaults:      DefaultColors(),
		images:        make(map[uint64]*semantic.Image),
		compression:   6,
		autoFirstPage: true,
		log:           observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, f := range d.fonts {
		font, err := fonts.LoadTrueType(f.name, f.data)
		if err != nil {
			return nil, fmt.Errorf("document: font %q: %w", f.name, err)
		}
		d.b.RegisterFont(f.name, font)
	}
	d.fonts = nil
	d.UseDefaultColors()
	if d.autoFirstPage {
		if err := d.AddPage(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// AddPage appends a page, makes it current and moves the cursor to the
// top-left margin corner. The page-added hook paints the background,
// resets the colours and draws the header and footer images.
func (d *Document) AddPage() error {
	pb := d.b.NewPage(d.pageWidth, d.pageHeight)
	d.pages = append(d.pages, &page{pb: pb, width: d.pageWidth, height: d.pageHeight, margins: d.margins})
	d.current = len(d.pages) - 1
	d.x, d.y = d.margins.Left, d.margins.Top
	d.log.Debug("page added", observability.Int("page", d.current), observability.Int("count", len(d.pages)))
	return d.onPageAdded()
}

func (d *Document) onPageAdded() error {
	p := d.pages[d.current]
	if !d.defaults.Background.IsZero() {
		p.pb.DrawRectangle(0, 0, p.width, p.height, builder.RectOptions{Fill: true, FillColor: d.defaults.Background})
	}
	d.UseDefaultColors()
	if d.header != nil && len(d.header.Data) > 0 {
		y := 0.0
		if err := d.CenteredImage(d.header.Data, AlignedImageOptions{ImageWidth: d.header.Width, Y: &y}); err != nil {
			return fmt.Errorf("header image: %w", err)
		}
	}
	if d.footer != nil && len(d.footer.Data) > 0 {
		y := p.height - d.footer.Height
		if err := d.CenteredImage(d.footer.Data, AlignedImageOptions{ImageWidth: d.footer.Width, Y: &y}); err != nil {
			return fmt.Errorf("footer image: %w", err)
		}
	}
	// Header and footer placement must not move the cursor.
	d.x, d.y = p.margins.Left, p.margins.Top
	return nil
}

// SwitchToPage makes the buffered page at index current. The cursor is
// left untouched.
func (d *Document) SwitchToPage(index int) error {
	if index < 0 || index >= len(d.pages) {
		return fmt.Errorf("%w: index %d of %d", ErrPageNotFound, index, len(d.pages))
	}
	d.current = index
	return nil
}

// CurrentPage returns the index of the current page. Without one the
// error matches both ErrPageNotFound and ErrNoPage.
func (d *Document) CurrentPage() (int, error) {
	if d.current < 0 || d.current >= len(d.pages) {
		return 0, fmt.Errorf("%w: %w", ErrPageNotFound, ErrNoPage)
	}
	return d.current, nil
}

// GoToNextPage switches to the page after the current one and moves the
// cursor to its top-left margin corner.
func (d *Document) GoToNextPage() error {
	cur, err := d.CurrentPage()
	if err != nil {
		return err
	}
	if err := d.SwitchToPage(cur + 1); err != nil {
		return err
	}
	m := d.pages[d.current].margins
	d.x, d.y = m.Left, m.Top
	return nil
}

// PageCount returns the number of buffered pages.
func (d *Document) PageCount() int { return len(d.pages) }

func (d *Document) page() (*page, error) {
	if d.current < 0 || d.current >= len(d.pages) {
		return nil, ErrNoPage
	}
	return d.pages[d.current], nil
}

// geometry returns the current page or, before the first page, the size
// and margins the next page will get.
func (d *Document) geometry() (width, height float64, m Margins) {
	if p, err := d.page(); err == nil {
		return p.width, p.height, p.margins
	}
	return d.pageWidth, d.pageHeight, d.margins
}

// X returns the cursor x position.
func (d *Document) X() float64 { return d.x }

// Y returns the cursor y position.
func (d *Document) Y() float64 { return d.y }

// MoveTo places the cursor.
func (d *Document) MoveTo(x, y float64) { d.x, d.y = x, y }

// PageWidth returns the width of the current page.
func (d *Document) PageWidth() float64 {
	w, _, _ := d.geometry()
	return w
}

// PageHeight returns the height of the current page.
func (d *Document) PageHeight() float64 {
	_, h, _ := d.geometry()
	return h
}

// Margins returns the margins of the current page.
func (d *Document) Margins() Margins {
	_, _, m := d.geometry()
	return m
}

// RemainingHeight is the distance from the cursor to the bottom margin.
func (d *Document) RemainingHeight() float64 {
	_, h, m := d.geometry()
	return h - d.y - m.Bottom
}

// UsableWidth is the page width inside the margins.
func (d *Document) UsableWidth() float64 {
	w, _, m := d.geometry()
	return w - m.Left - m.Right
}

// UsableHeight is the page height inside the margins.
func (d *Document) UsableHeight() float64 {
	_, h, m := d.geometry()
	return h - m.Top - m.Bottom
}

// MiddlePoint is the x coordinate halfway across the usable width.
func (d *Document) MiddlePoint() float64 {
	_, _, m := d.geometry()
	return m.Left + d.UsableWidth()/2
}

// MaxX is the x coordinate of the right margin.
func (d *Document) MaxX() float64 {
	w, _, m := d.geometry()
	return w - m.Right
}

// MaxY is the y coordinate of the bottom margin.
func (d *Document) MaxY() float64 {
	_, h, m := d.geometry()
	return h - m.Bottom
}

// SetDefaultColors merges the non-zero fields of c into the defaults.
func (d *Document) SetDefaultColors(c Colors) { d.defaults = d.defaults.merge(c) }

// Defaults returns the default colours.
func (d *Document) Defaults() Colors { return d.defaults }

// DefaultTextColor returns the default text colour.
func (d *Document) DefaultTextColor() builder.Color { return d.defaults.Text }

// UseDefaultColors sets the fill colour to the default text colour and the
// stroke colour to the default stroke colour.
func (d *Document) UseDefaultColors() {
	d.fillColor = d.defaults.Text
	d.strokeColor = d.defaults.Stroke
}

// SetFillColor sets the colour used for text and fills without an
// explicit colour.
func (d *Document) SetFillColor(c builder.Color) { d.fillColor = c }

// FillColor returns the current fill colour.
func (d *Document) FillColor() builder.Color { return d.fillColor }

// SetStrokeColor sets the colour used for strokes without an explicit colour.
func (d *Document) SetStrokeColor(c builder.Color) { d.strokeColor = c }

// StrokeColor returns the current stroke colour.
func (d *Document) StrokeColor() builder.Color { return d.strokeColor }

// SetLineWidth sets the default stroke width.
func (d *Document) SetLineWidth(w float64) {
	if w > 0 {
		d.lineWidth = w
	}
}

// LineWidth returns the default stroke width.
func (d *Document) LineWidth() float64 { return d.lineWidth }

// SetInfo replaces the document information dictionary.
func (d *Document) SetInfo(info semantic.DocumentInfo) { d.info = &info }

// Build returns the semantic document.
func (d *Document) Build() (*semantic.Document, error) {
	if d.info != nil {
		d.b.SetInfo(d.info)
	}
	return d.b.Build()
}

// WriteTo serializes the document as PDF.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	doc, err := d.Build()
	if err != nil {
		return 0, err
	}
	cw := &countingWriter{w: w}
	stats := &objectStats{}
	cfg := writer.Config{Compression: d.compression, Deterministic: d.deterministic}
	wr := (&writer.WriterBuilder{}).WithInterceptor(stats).Build()
	if err := wr.Write(context.Background(), doc, cw, cfg); err != nil {
		return cw.n, fmt.Errorf("write pdf: %w", err)
	}
	d.log.Debug("document written",
		observability.Int("pages", len(d.pages)),
		observability.Int("objects", stats.objects),
		observability.Int64("objectBytes", stats.bytes),
		observability.Int64("bytes", cw.n))
	return cw.n, nil
}

// objectStats counts the indirect objects of a written document.
type objectStats struct {
	objects int
	bytes   int64
}

func (s *objectStats) BeforeWrite(context.Context, raw.ObjectRef, raw.Object) error { return nil }

func (s *objectStats) AfterWrite(_ context.Context, _ raw.ObjectRef, n int64) error {
	s.objects++
	s.bytes += n
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

var paperSizes = map[string][2]float64{
	"a3":     {841.89, 1190.55},
	"a4":     {595.28, 841.89},
	"a5":     {419.53, 595.28},
	"letter": {612, 792},
	"legal":  {612, 1008},
}

// PaperSize returns the portrait dimensions of a named paper size.
func PaperSize(name string) ([2]float64, bool) {
	size, ok := paperSizes[strings.ToLower(name)]
	return size, ok
}
