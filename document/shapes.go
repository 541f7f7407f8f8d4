package document

import (
	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/contentstream"
)

// HrOptions configures a horizontal rule. Nil coordinates default to the
// margins and the cursor.
type HrOptions struct {
	X1, X2      *float64
	Y           *float64
	StrokeColor builder.Color
	LineWidth   float64
}

// FillRect paints a rectangle with its top-left corner at (x, y). A zero
// colour uses the default fill colour; opacity outside (0, 1] is opaque.
func (d *Document) FillRect(x, y, w, h float64, c builder.Color, opacity float64) error {
	p, err := d.page()
	if err != nil {
		return err
	}
	if c.IsZero() {
		c = d.defaults.Fill
	}
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	p.pb.DrawRectangle(x, p.height-y-h, w, h, builder.RectOptions{
		Fill:        true,
		FillColor:   c,
		FillOpacity: opacity,
	})
	return nil
}

// StrokeRect outlines a rectangle with its top-left corner at (x, y). A
// zero colour uses the current stroke colour and a non-positive width the
// current line width.
func (d *Document) StrokeRect(x, y, w, h float64, c builder.Color, lineWidth float64) error {
	p, err := d.page()
	if err != nil {
		return err
	}
	if c.IsZero() {
		c = d.strokeColor
	}
	if lineWidth <= 0 {
		lineWidth = d.lineWidth
	}
	p.pb.DrawRectangle(x, p.height-y-h, w, h, builder.RectOptions{
		Stroke:      true,
		StrokeColor: c,
		LineWidth:   lineWidth,
	})
	return nil
}

// RoundedRect paints and outlines a rectangle with rounded corners. Fill
// opacity only applies to the fill.
func (d *Document) RoundedRect(x, y, w, h, radius float64, opts builder.PathOptions) error {
	p, err := d.page()
	if err != nil {
		return err
	}
	if opts.Fill && opts.FillColor.IsZero() {
		opts.FillColor = d.defaults.Fill
	}
	if opts.Stroke && opts.StrokeColor.IsZero() {
		opts.StrokeColor = d.strokeColor
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = d.lineWidth
	}
	p.pb.DrawPath(contentstream.RoundedRect(x, p.height-y-h, w, h, radius), opts)
	return nil
}

// Hr draws a horizontal rule. By default it spans the margins at the
// cursor height with a width of 1 in the current stroke colour.
func (d *Document) Hr(opts HrOptions) error {
	p, err := d.page()
	if err != nil {
		return err
	}
	x1, x2, y := p.margins.Left, p.width-p.margins.Right, d.y
	if opts.X1 != nil {
		x1 = *opts.X1
	}
	if opts.X2 != nil {
		x2 = *opts.X2
	}
	if opts.Y != nil {
		y = *opts.Y
	}
	c := opts.StrokeColor
	if c.IsZero() {
		c = d.strokeColor
	}
	lw := opts.LineWidth
	if lw <= 0 {
		lw = 1
	}
	p.pb.DrawLine(x1, p.height-y, x2, p.height-y, builder.LineOptions{StrokeColor: c, LineWidth: lw})
	return nil
}
