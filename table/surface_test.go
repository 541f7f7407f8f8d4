package table

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/document"
	"github.com/wudi/pdftable/observability"
)

var errBoom = errors.New("boom")

// event is one recorded drawing or paging call.
type event struct {
	Op        string
	Page      int
	X, Y      float64
	W, H      float64
	Text      string
	Font      string
	Size      float64
	Color     builder.Color
	Opacity   float64
	LineWidth float64
}

// fakeSurface records what a table draws. Text is one line of the font
// size per newline-separated line, whatever the width.
type fakeSurface struct {
	x, y       float64
	pageHeight float64
	pageWidth  float64
	margins    document.Margins
	pages      int
	current    int
	font       string
	size       float64
	images     map[string][2]float64
	failOp     string
	events     []event
}

func newFake() *fakeSurface {
	return &fakeSurface{
		x:          20,
		y:          20,
		pageHeight: 200,
		pageWidth:  300,
		margins:    document.UniformMargins(20),
		pages:      1,
		font:       "Helvetica",
		size:       10,
		images:     map[string][2]float64{},
	}
}

func (f *fakeSurface) fail(op string) error {
	if f.failOp == op {
		return fmt.Errorf("%s: %w", op, errBoom)
	}
	return nil
}

func (f *fakeSurface) record(e event) {
	e.Page = f.current
	f.events = append(f.events, e)
}

func (f *fakeSurface) HeightOfString(text string, _ document.TextOptions) (float64, error) {
	if text == "" {
		return 0, nil
	}
	return float64(strings.Count(text, "\n")+1) * f.size, nil
}

func (f *fakeSurface) ImageSize(data []byte) (float64, float64, error) {
	size, ok := f.images[string(data)]
	if !ok {
		return 0, 0, builder.ErrUnsupportedImage
	}
	return size[0], size[1], nil
}

func (f *fakeSurface) X() float64          { return f.x }
func (f *fakeSurface) Y() float64          { return f.y }
func (f *fakeSurface) MoveTo(x, y float64) { f.x, f.y = x, y }

func (f *fakeSurface) PageHeight() float64       { return f.pageHeight }
func (f *fakeSurface) Margins() document.Margins { return f.margins }
func (f *fakeSurface) UsableWidth() float64 {
	return f.pageWidth - f.margins.Left - f.margins.Right
}

func (f *fakeSurface) AddPage() error {
	if err := f.fail("addPage"); err != nil {
		return err
	}
	f.pages++
	f.current = f.pages - 1
	f.x, f.y = f.margins.Left, f.margins.Top
	f.record(event{Op: "addPage"})
	return nil
}

func (f *fakeSurface) GoToNextPage() error {
	if f.current+1 >= f.pages {
		return fmt.Errorf("%w: index %d", document.ErrPageNotFound, f.current+1)
	}
	f.current++
	f.x, f.y = f.margins.Left, f.margins.Top
	f.record(event{Op: "nextPage"})
	return nil
}

func (f *fakeSurface) CurrentFont() string      { return f.font }
func (f *fakeSurface) CurrentFontSize() float64 { return f.size }

func (f *fakeSurface) SetFont(name string) error {
	if name == "Missing" {
		return fmt.Errorf("document: %w: %q", document.ErrUnknownFont, name)
	}
	f.font = name
	return nil
}

func (f *fakeSurface) SetFontSize(size float64) { f.size = size }

func (f *fakeSurface) DefaultTextColor() builder.Color { return builder.RGB(0, 0, 0) }

func (f *fakeSurface) FillRect(x, y, w, h float64, c builder.Color, opacity float64) error {
	if err := f.fail("fill"); err != nil {
		return err
	}
	f.record(event{Op: "fill", X: x, Y: y, W: w, H: h, Color: c, Opacity: opacity})
	return nil
}

func (f *fakeSurface) StrokeRect(x, y, w, h float64, c builder.Color, lineWidth float64) error {
	if err := f.fail("stroke"); err != nil {
		return err
	}
	f.record(event{Op: "stroke", X: x, Y: y, W: w, H: h, Color: c, LineWidth: lineWidth})
	return nil
}

func (f *fakeSurface) Hr(opts document.HrOptions) error {
	if err := f.fail("hr"); err != nil {
		return err
	}
	f.record(event{Op: "hr", X: *opts.X1, W: *opts.X2 - *opts.X1, Y: *opts.Y})
	return nil
}

func (f *fakeSurface) Text(text string, x, y float64, opts document.TextOptions) error {
	if err := f.fail("text"); err != nil {
		return err
	}
	h, _ := f.HeightOfString(text, opts)
	f.record(event{Op: "text", X: x, Y: y, W: opts.Width, Text: text, Font: f.font, Size: f.size, Color: opts.Color})
	f.x, f.y = x, y+h
	return nil
}

func (f *fakeSurface) Image(data []byte, x, y float64, opts document.ImageOptions) error {
	if err := f.fail("image"); err != nil {
		return err
	}
	f.record(event{Op: "image", X: x, Y: y, W: opts.Width, H: opts.Height, Text: string(data)})
	if y == f.y {
		f.y += opts.Height
	}
	return nil
}

func (f *fakeSurface) ops(names ...string) []event {
	keep := map[string]bool{}
	for _, n := range names {
		keep[n] = true
	}
	var out []event
	for _, e := range f.events {
		if keep[e.Op] {
			out = append(out, e)
		}
	}
	return out
}

// recordLogger keeps log messages by level.
type recordLogger struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newRecordLogger() *recordLogger {
	return &recordLogger{messages: map[string][]string{}}
}

func (l *recordLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages[level] = append(l.messages[level], msg)
}

func (l *recordLogger) Debug(msg string, _ ...observability.Field) { l.add("debug", msg) }
func (l *recordLogger) Info(msg string, _ ...observability.Field)  { l.add("info", msg) }
func (l *recordLogger) Warn(msg string, _ ...observability.Field)  { l.add("warn", msg) }
func (l *recordLogger) Error(msg string, _ ...observability.Field) { l.add("error", msg) }
func (l *recordLogger) With(...observability.Field) observability.Logger {
	return l
}
