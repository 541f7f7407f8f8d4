package builder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // Register decoders
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/wudi/pdftable/ir/semantic"
)

// ErrUnsupportedImage is returned when image data cannot be decoded.
var ErrUnsupportedImage = errors.New("unsupported image")

// ImageSize returns the pixel dimensions of encoded image data without
// decoding the pixels.
func ImageSize(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return cfg.Width, cfg.Height, nil
}

// DecodeImage converts encoded image bytes (JPEG, PNG, GIF, BMP, TIFF,
// WebP) to an image XObject. JPEG data is embedded as-is.
func DecodeImage(data []byte) (*semantic.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if format == "jpeg" {
		img := &semantic.Image{
			Width:            cfg.Width,
			Height:           cfg.Height,
			ColorSpace:       "DeviceRGB",
			BitsPerComponent: 8,
			Filter:           "DCTDecode",
			Data:             append([]byte(nil), data...),
		}
		switch cfg.ColorModel {
		case color.GrayModel:
			img.ColorSpace = "DeviceGray"
		case color.CMYKModel:
			img.ColorSpace = "DeviceCMYK"
			img.Decode = []float64{1, 0, 1, 0, 1, 0, 1, 0}
		}
		return img, nil
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return FromImage(src), nil
}

// FromImage converts a standard Go image.Image to *semantic.Image.
// It handles RGB color and creates a Soft Mask (SMask) for transparency if needed.
func FromImage(src image.Image) *semantic.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Convert to NRGBA (non-premultiplied alpha) to get raw color values
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)

	pixels := make([]byte, 0, w*h*3)
	mask := make([]byte, 0, w*h)
	hasAlpha := false

	for i := 0; i < w*h; i++ {
		offset := i * 4
		pixels = append(pixels, nrgba.Pix[offset], nrgba.Pix[offset+1], nrgba.Pix[offset+2])
		a := nrgba.Pix[offset+3]
		mask = append(mask, a)
		if a < 255 {
			hasAlpha = true
		}
	}

	img := &semantic.Image{
		Width:            w,
		Height:           h,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Data:             pixels,
	}
	if hasAlpha {
		img.SMask = &semantic.Image{
			Width:            w,
			Height:           h,
			ColorSpace:       "DeviceGray",
			BitsPerComponent: 8,
			Data:             mask,
		}
	}
	return img
}
