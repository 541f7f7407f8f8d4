package document

import (
	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/observability"
)

// Padding is the space between a frame and its content.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// UniformPadding returns v on every side.
func UniformPadding(v float64) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// RectangleOptions configures TextWithBoundingRectangle. Zero colours use
// the document defaults.
type RectangleOptions struct {
	X, Y *float64
	// Width is the outer width. Zero fits the unwrapped text.
	Width float64
	// PaddingAll applies to every side unless Padding is set. Nil means 1.
	PaddingAll   *float64
	Padding      *Padding
	CornerRadius float64
	// FillOpacity applies to the fill only. Zero means opaque.
	FillOpacity float64
	StrokeColor builder.Color
	FillColor   builder.Color
	TextColor   builder.Color
	// LineWidth defaults to 1.
	LineWidth float64
	// Align defaults to justify.
	Align Align
}

// TextWithBoundingRectangle draws text inside a filled and stroked frame
// and leaves the cursor below the frame. A page is added first when the
// frame does not fit in the remaining height.
func (d *Document) TextWithBoundingRectangle(text string, opts RectangleOptions) error {
	pad := UniformPadding(1)
	if opts.PaddingAll != nil {
		pad = UniformPadding(*opts.PaddingAll)
	}
	if opts.Padding != nil {
		pad = *opts.Padding
	}
	fillOpacity := opts.FillOpacity
	if fillOpacity <= 0 || fillOpacity > 1 {
		fillOpacity = 1
	}
	strokeColor, fillColor, textColor := opts.StrokeColor, opts.FillColor, opts.TextColor
	if strokeColor.IsZero() {
		strokeColor = d.defaults.Stroke
	}
	if fillColor.IsZero() {
		fillColor = d.defaults.Fill
	}
	if textColor.IsZero() {
		textColor = d.defaults.Text
	}
	lineWidth := opts.LineWidth
	if lineWidth <= 0 {
		lineWidth = 1
	}
	align := opts.Align
	if align == "" {
		align = AlignJustify
	}

	rectWidth := opts.Width
	if rectWidth <= 0 {
		w, err := d.WidthOfString(text, TextOptions{})
		if err != nil {
			return err
		}
		rectWidth = w + pad.Left + pad.Right
	}
	textWidth := rectWidth - pad.Left - pad.Right
	textHeight, err := d.HeightOfString(text, TextOptions{Width: textWidth})
	if err != nil {
		return err
	}
	rectHeight := textHeight + pad.Top + pad.Bottom
	if rectHeight > d.RemainingHeight() {
		d.log.Debug("frame does not fit, adding page", observability.Float64("height", rectHeight))
		if err := d.AddPage(); err != nil {
			return err
		}
	}

	x, y := d.x, d.y
	if opts.X != nil {
		x = *opts.X
	}
	if opts.Y != nil {
		y = *opts.Y
	}
	err = d.RoundedRect(x, y, rectWidth, rectHeight, opts.CornerRadius, builder.PathOptions{
		Fill:        true,
		Stroke:      true,
		FillColor:   fillColor,
		StrokeColor: strokeColor,
		LineWidth:   lineWidth,
		FillOpacity: fillOpacity,
	})
	if err != nil {
		return err
	}
	if err := d.Text(text, x+pad.Left, y+pad.Top, TextOptions{Align: align, Width: textWidth, Color: textColor}); err != nil {
		return err
	}
	d.y = y + rectHeight
	return nil
}
