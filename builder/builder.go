package builder

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/wudi/pdftable/contentstream"
	"github.com/wudi/pdftable/fonts"
	"github.com/wudi/pdftable/ir/semantic"
)

// ErrUnknownFont is returned when a font name is neither registered nor a
// standard PDF font.
var ErrUnknownFont = errors.New("unknown font")

// PDFBuilder provides a fluent API for PDF construction.
type PDFBuilder interface {
	NewPage(width, height float64) PageBuilder
	PageCount() int
	SetInfo(info *semantic.DocumentInfo) PDFBuilder
	RegisterFont(name string, font *semantic.Font) PDFBuilder
	Font(name string) (*semantic.Font, error)
	Build() (*semantic.Document, error)
}

// PageBuilder provides a fluent API for page construction.
// Coordinates are PDF user space: origin at the bottom-left corner.
type PageBuilder interface {
	DrawText(text string, x, y float64, opts TextOptions) PageBuilder
	DrawPath(path *contentstream.Path, opts PathOptions) PageBuilder
	DrawImage(img *semantic.Image, x, y, width, height float64, opts ImageOptions) PageBuilder
	DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder
	DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder
	Index() int
}

// TextOptions configures text drawing.
type TextOptions struct {
	Font        string
	FontSize    float64
	Color       Color
	CharSpacing float64
	WordSpacing float64
}

// PathOptions configures path drawing.
type PathOptions struct {
	StrokeColor Color
	FillColor   Color
	LineWidth   float64
	Fill        bool
	Stroke      bool
	// FillOpacity and StrokeOpacity are in (0, 1]; zero means opaque.
	FillOpacity   float64
	StrokeOpacity float64
}

// RectOptions configures rectangle drawing (defaults to stroke if neither fill nor stroke is set).
type RectOptions = PathOptions

// LineOptions configures line drawing.
type LineOptions struct {
	StrokeColor Color
	LineWidth   float64
}

// ImageOptions configures image drawing.
type ImageOptions struct {
	Interpolate bool
}

type fontResource struct {
	font     *semantic.Font
	glyphMap map[rune]int
}

type builderImpl struct {
	pages        []*semantic.Page
	info         *semantic.DocumentInfo
	fonts        map[string]fontResource
	xobjectCount int
	xobjectNames map[*semantic.Image]string
	gstates      map[string]string
	fontErr      error
}

type pageBuilderImpl struct {
	parent *builderImpl
	page   *semantic.Page
}

const (
	defaultFontName = "Helvetica"
	defaultFontSize = 12
)

// NewBuilder constructs a PDFBuilder.
func NewBuilder() PDFBuilder { return &builderImpl{} }

func (b *builderImpl) NewPage(w, h float64) PageBuilder {
	p := &semantic.Page{
		Index:    len(b.pages),
		MediaBox: semantic.Rectangle{LLX: 0, LLY: 0, URX: w, URY: h},
	}
	b.pages = append(b.pages, p)
	return &pageBuilderImpl{parent: b, page: p}
}

func (b *builderImpl) PageCount() int { return len(b.pages) }

func (b *builderImpl) SetInfo(info *semantic.DocumentInfo) PDFBuilder {
	b.info = info
	return b
}

func (b *builderImpl) RegisterFont(name string, font *semantic.Font) PDFBuilder {
	return b.addFont(name, font)
}

func (b *builderImpl) addFont(name string, font *semantic.Font) PDFBuilder {
	if font == nil {
		return b
	}
	if b.fonts == nil {
		b.fonts = make(map[string]fontResource)
	}
	res := fontResource{font: font}
	if font.Subtype == "Type0" {
		res.glyphMap = fonts.GlyphMap(font)
	}
	b.fonts[name] = res
	return b
}

// Font resolves a registered font or one of the standard PDF fonts.
func (b *builderImpl) Font(name string) (*semantic.Font, error) {
	res, _, err := b.fontForName(name)
	if err != nil {
		return nil, err
	}
	return res.font, nil
}

func (b *builderImpl) Build() (*semantic.Document, error) {
	if b.fontErr != nil {
		return nil, b.fontErr
	}
	for i, p := range b.pages {
		p.Index = i
	}
	return &semantic.Document{Pages: b.pages, Info: b.info}, nil
}

func (p *pageBuilderImpl) Index() int { return p.page.Index }

func (p *pageBuilderImpl) DrawText(text string, x, y float64, opts TextOptions) PageBuilder {
	res, fontName, err := p.parent.fontForName(opts.Font)
	if err != nil {
		if p.parent.fontErr == nil {
			p.parent.fontErr = err
		}
		return p
	}
	resources := p.ensureResources()
	if _, ok := resources.Fonts[fontName]; !ok {
		resources.Fonts[fontName] = res.font
	}
	size := opts.FontSize
	if size <= 0 {
		size = defaultFontSize
	}

	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "BT"})
	*ops = append(*ops, semantic.Operation{
		Operator: "Tf",
		Operands: []semantic.Operand{semantic.NameOperand{Value: fontName}, semantic.NumberOperand{Value: size}},
	})
	if opts.CharSpacing != 0 {
		*ops = append(*ops, semantic.Operation{Operator: "Tc", Operands: semantic.Numbers(opts.CharSpacing)})
	}
	if opts.WordSpacing != 0 {
		*ops = append(*ops, semantic.Operation{Operator: "Tw", Operands: semantic.Numbers(opts.WordSpacing)})
	}
	*ops = append(*ops, semantic.Operation{Operator: "Tm", Operands: semantic.Numbers(1, 0, 0, 1, x, y)})
	appendColorOp(ops, opts.Color, false)
	*ops = append(*ops, semantic.Operation{
		Operator: "Tj",
		Operands: []semantic.Operand{semantic.StringOperand{Value: encodeText(text, res)}},
	})
	*ops = append(*ops, semantic.Operation{Operator: "ET"})
	return p
}

func (p *pageBuilderImpl) DrawPath(path *contentstream.Path, opts PathOptions) PageBuilder {
	if path.Empty() {
		return p
	}
	if !opts.Fill && !opts.Stroke {
		opts.Stroke = true
	}
	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	p.applyPathState(ops, opts)
	appendPathOps(ops, path)
	*ops = append(*ops, semantic.Operation{Operator: paintOperator(opts.Fill, opts.Stroke)})
	*ops = append(*ops, semantic.Operation{Operator: "Q"})
	return p
}

func (p *pageBuilderImpl) DrawImage(img *semantic.Image, x, y, width, height float64, opts ImageOptions) PageBuilder {
	if img == nil {
		return p
	}
	res := p.ensureResources()
	name := p.parent.imageName(img)
	if _, exists := res.XObjects[name]; !exists {
		if opts.Interpolate && !img.Interpolate {
			cp := *img
			cp.Interpolate = true
			img = &cp
		}
		res.XObjects[name] = img
	}
	w := width
	if w == 0 {
		w = float64(img.Width)
	}
	h := height
	if h == 0 {
		h = float64(img.Height)
	}

	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	*ops = append(*ops, semantic.Operation{Operator: "cm", Operands: semantic.Numbers(w, 0, 0, h, x, y)})
	*ops = append(*ops, semantic.Operation{
		Operator: "Do",
		Operands: []semantic.Operand{semantic.NameOperand{Value: name}},
	})
	*ops = append(*ops, semantic.Operation{Operator: "Q"})
	return p
}

func (p *pageBuilderImpl) DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder {
	po := opts
	if !po.Stroke && !po.Fill {
		po.Stroke = true
	}
	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	p.applyPathState(ops, po)
	*ops = append(*ops, semantic.Operation{Operator: "re", Operands: semantic.Numbers(x, y, width, height)})
	*ops = append(*ops, semantic.Operation{Operator: paintOperator(po.Fill, po.Stroke)})
	*ops = append(*ops, semantic.Operation{Operator: "Q"})
	return p
}

func (p *pageBuilderImpl) DrawLine(x1, y1, x2, y2 float64, opts LineOptions) PageBuilder {
	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	po := PathOptions{
		StrokeColor: opts.StrokeColor,
		LineWidth:   opts.LineWidth,
		Stroke:      true,
	}
	p.applyPathState(ops, po)
	*ops = append(*ops, semantic.Operation{Operator: "m", Operands: semantic.Numbers(x1, y1)})
	*ops = append(*ops, semantic.Operation{Operator: "l", Operands: semantic.Numbers(x2, y2)})
	*ops = append(*ops, semantic.Operation{Operator: "S"})
	*ops = append(*ops, semantic.Operation{Operator: "Q"})
	return p
}

// fontForName returns the font resource and the page resource name for a
// font. Standard fonts are registered on first use.
func (b *builderImpl) fontForName(name string) (fontResource, string, error) {
	if name == "" {
		name = defaultFontName
	}
	if res, ok := b.fonts[name]; ok {
		return res, name, nil
	}
	std, ok := fonts.Standard(name)
	if !ok {
		return fontResource{}, "", fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}
	b.addFont(name, std)
	return b.fonts[name], name, nil
}

func (b *builderImpl) imageName(img *semantic.Image) string {
	if b.xobjectNames == nil {
		b.xobjectNames = make(map[*semantic.Image]string)
	}
	if name, ok := b.xobjectNames[img]; ok {
		return name
	}
	b.xobjectCount++
	name := fmt.Sprintf("Im%d", b.xobjectCount)
	b.xobjectNames[img] = name
	return name
}

// gstateName returns a shared ExtGState resource name for an alpha pair.
func (b *builderImpl) gstateName(fill, stroke float64) string {
	key := strconv.FormatFloat(fill, 'f', 3, 64) + "/" + strconv.FormatFloat(stroke, 'f', 3, 64)
	if b.gstates == nil {
		b.gstates = make(map[string]string)
	}
	if name, ok := b.gstates[key]; ok {
		return name
	}
	name := fmt.Sprintf("GS%d", len(b.gstates)+1)
	b.gstates[key] = name
	return name
}

func encodeText(text string, res fontResource) []byte {
	if res.font != nil && res.font.Subtype == "Type0" {
		buf := make([]byte, 0, len(text)*2)
		for _, r := range text {
			gid := res.glyphMap[r]
			buf = append(buf, byte(gid>>8), byte(gid))
		}
		return buf
	}
	return fonts.EncodeWinAnsi(text)
}

func (p *pageBuilderImpl) ensureResources() *semantic.Resources {
	if p.page.Resources == nil {
		p.page.Resources = &semantic.Resources{}
	}
	if p.page.Resources.Fonts == nil {
		p.page.Resources.Fonts = make(map[string]*semantic.Font)
	}
	if p.page.Resources.ExtGStates == nil {
		p.page.Resources.ExtGStates = make(map[string]semantic.ExtGState)
	}
	if p.page.Resources.XObjects == nil {
		p.page.Resources.XObjects = make(map[string]*semantic.Image)
	}
	return p.page.Resources
}

func (p *pageBuilderImpl) ensureContentOps() *[]semantic.Operation {
	if len(p.page.Contents) == 0 {
		p.page.Contents = append(p.page.Contents, semantic.ContentStream{})
	}
	return &p.page.Contents[0].Operations
}

func appendColorOp(ops *[]semantic.Operation, c Color, stroking bool) {
	if isZeroColor(c) {
		return
	}
	op := "rg"
	if stroking {
		op = "RG"
	}
	*ops = append(*ops, semantic.Operation{
		Operator: op,
		Operands: colorOperands(c),
	})
}

func (p *pageBuilderImpl) applyPathState(ops *[]semantic.Operation, opts PathOptions) {
	fillAlpha := alpha(opts.FillOpacity)
	strokeAlpha := alpha(opts.StrokeOpacity)
	if (opts.Fill && fillAlpha < 1) || (opts.Stroke && strokeAlpha < 1) {
		name := p.parent.gstateName(fillAlpha, strokeAlpha)
		res := p.ensureResources()
		if _, ok := res.ExtGStates[name]; !ok {
			fa, sa := fillAlpha, strokeAlpha
			res.ExtGStates[name] = semantic.ExtGState{FillAlpha: &fa, StrokeAlpha: &sa}
		}
		*ops = append(*ops, semantic.Operation{Operator: "gs", Operands: []semantic.Operand{semantic.NameOperand{Value: name}}})
	}
	if opts.Fill {
		appendColorOp(ops, opts.FillColor, false)
	}
	if opts.Stroke {
		appendColorOp(ops, opts.StrokeColor, true)
		if opts.LineWidth > 0 {
			*ops = append(*ops, semantic.Operation{Operator: "w", Operands: semantic.Numbers(opts.LineWidth)})
		}
	}
}

func appendPathOps(ops *[]semantic.Operation, path *contentstream.Path) {
	for _, sp := range path.Subpaths {
		for _, point := range sp.Points {
			switch point.Type {
			case contentstream.PathMoveTo:
				*ops = append(*ops, semantic.Operation{Operator: "m", Operands: semantic.Numbers(point.X, point.Y)})
			case contentstream.PathLineTo:
				*ops = append(*ops, semantic.Operation{Operator: "l", Operands: semantic.Numbers(point.X, point.Y)})
			case contentstream.PathCurveTo:
				*ops = append(*ops, semantic.Operation{
					Operator: "c",
					Operands: semantic.Numbers(point.Control1X, point.Control1Y, point.Control2X, point.Control2Y, point.X, point.Y),
				})
			case contentstream.PathClose:
				*ops = append(*ops, semantic.Operation{Operator: "h"})
			}
		}
		if sp.Closed {
			*ops = append(*ops, semantic.Operation{Operator: "h"})
		}
	}
}

func alpha(v float64) float64 {
	if v <= 0 || v > 1 {
		return 1
	}
	return v
}

func paintOperator(fill, stroke bool) string {
	switch {
	case fill && stroke:
		return "B"
	case fill:
		return "f"
	default:
		return "S"
	}
}
