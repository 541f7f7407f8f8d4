package document

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/ir/semantic"
)

// ImageOptions sizes a drawn image. With only one dimension set the other
// keeps the aspect ratio; with neither the native pixel size is used.
type ImageOptions struct {
	Width  float64
	Height float64
}

// AlignedImageOptions places an image inside a horizontal container.
type AlignedImageOptions struct {
	// ImageWidth defaults to the native width.
	ImageWidth float64
	// ContainerWidth defaults to the usable page width.
	ContainerWidth float64
	// X and Y default to the cursor.
	X, Y *float64
	// ForceCursorDisplacement moves the cursor to the image and then below it.
	ForceCursorDisplacement bool
	// PlotFrame outlines the drawn image.
	PlotFrame bool
	Align     Align
}

// ImageSize returns the native pixel size of an encoded image.
func (d *Document) ImageSize(data []byte) (width, height float64, err error) {
	if img, ok := d.images[xxhash.Sum64(data)]; ok {
		return float64(img.Width), float64(img.Height), nil
	}
	w, h, err := builder.ImageSize(data)
	if err != nil {
		return 0, 0, err
	}
	return float64(w), float64(h), nil
}

// ImageHeight returns the height of an image drawn at width.
func (d *Document) ImageHeight(data []byte, width float64) (float64, error) {
	w, h, err := d.ImageSize(data)
	if err != nil {
		return 0, err
	}
	if w == 0 {
		return 0, nil
	}
	return h * width / w, nil
}

// Image draws an encoded image with its top-left corner at (x, y). When y
// is the cursor height the cursor moves below the image.
func (d *Document) Image(data []byte, x, y float64, opts ImageOptions) error {
	p, err := d.page()
	if err != nil {
		return err
	}
	img, err := d.decodeImage(data)
	if err != nil {
		return err
	}
	w, h := opts.Width, opts.Height
	nw, nh := float64(img.Width), float64(img.Height)
	switch {
	case w == 0 && h == 0:
		w, h = nw, nh
	case h == 0 && nw > 0:
		h = nh * w / nw
	case w == 0 && nh > 0:
		w = nw * h / nh
	}
	p.pb.DrawImage(img, x, p.height-y-h, w, h, builder.ImageOptions{})
	if y == d.y {
		d.y += h
	}
	return nil
}

func (d *Document) decodeImage(data []byte) (*semantic.Image, error) {
	key := xxhash.Sum64(data)
	if img, ok := d.images[key]; ok {
		return img, nil
	}
	img, err := builder.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	d.images[key] = img
	return img, nil
}

// LeftAlignedImage draws an image at the left of its container.
func (d *Document) LeftAlignedImage(data []byte, opts AlignedImageOptions) error {
	opts.Align = AlignLeft
	return d.AlignedImage(data, opts)
}

// RightAlignedImage draws an image at the right of its container.
func (d *Document) RightAlignedImage(data []byte, opts AlignedImageOptions) error {
	opts.Align = AlignRight
	return d.AlignedImage(data, opts)
}

// CenteredImage draws an image centred in its container.
func (d *Document) CenteredImage(data []byte, opts AlignedImageOptions) error {
	opts.Align = AlignCenter
	return d.AlignedImage(data, opts)
}

// AlignedImage draws an image aligned inside a container that starts at X.
func (d *Document) AlignedImage(data []byte, opts AlignedImageOptions) error {
	imageWidth := opts.ImageWidth
	if imageWidth <= 0 {
		w, _, err := d.ImageSize(data)
		if err != nil {
			return fmt.Errorf("document: %w", err)
		}
		imageWidth = w
	}
	containerWidth := opts.ContainerWidth
	if containerWidth <= 0 {
		containerWidth = d.UsableWidth()
	}
	x, y := d.x, d.y
	if opts.X != nil {
		x = *opts.X
	}
	if opts.Y != nil {
		y = *opts.Y
	}

	xImage := x
	switch opts.Align {
	case AlignCenter:
		xImage = x + (containerWidth-imageWidth)/2
	case AlignRight:
		xImage = x + containerWidth - imageWidth
	}

	if opts.ForceCursorDisplacement {
		d.x, d.y = xImage, y
	}
	if err := d.Image(data, xImage, y, ImageOptions{Width: imageWidth}); err != nil {
		return err
	}
	if opts.PlotFrame {
		h, err := d.ImageHeight(data, imageWidth)
		if err != nil {
			return err
		}
		return d.StrokeRect(xImage, y, imageWidth, h, builder.Color{}, 0)
	}
	return nil
}
