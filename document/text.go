package document

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/fonts"
	"github.com/wudi/pdftable/ir/semantic"
)

// Align is a horizontal text alignment.
type Align string

const (
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// TextOptions configures text measurement and drawing. Zero fields fall
// back to the document state.
type TextOptions struct {
	// Width is the wrapping width. Zero wraps at the right margin.
	Width            float64
	Align            Align
	LineGap          float64
	CharacterSpacing float64
	Color            builder.Color
}

// Merge returns o with every non-zero field of over applied on top.
func (o TextOptions) Merge(over TextOptions) TextOptions {
	if over.Width != 0 {
		o.Width = over.Width
	}
	if over.Align != "" {
		o.Align = over.Align
	}
	if over.LineGap != 0 {
		o.LineGap = over.LineGap
	}
	if over.CharacterSpacing != 0 {
		o.CharacterSpacing = over.CharacterSpacing
	}
	if !over.Color.IsZero() {
		o.Color = over.Color
	}
	return o
}

// SetFont makes name the current font. Standard PDF font names are always
// available; other fonts must be registered with WithFont.
func (d *Document) SetFont(name string) error {
	if _, err := d.b.Font(name); err != nil {
		return fmt.Errorf("document: %w", err)
	}
	d.font = name
	return nil
}

// CurrentFont returns the current font name.
func (d *Document) CurrentFont() string { return d.font }

// SetFontSize sets the current font size in points.
func (d *Document) SetFontSize(size float64) {
	if size > 0 {
		d.fontSize = size
	}
}

// CurrentFontSize returns the current font size.
func (d *Document) CurrentFontSize() float64 { return d.fontSize }

// SetLineGap sets the default gap added after every line of text.
func (d *Document) SetLineGap(gap float64) { d.lineGap = gap }

// CurrentLineHeight is the baseline distance of the current font
// including its built-in line gap.
func (d *Document) CurrentLineHeight() float64 {
	font, err := d.b.Font(d.font)
	if err != nil {
		return d.fontSize * 1.2
	}
	return fonts.LineHeight(font, d.fontSize)
}

// WidthOfString returns the unwrapped width of text in the current font.
func (d *Document) WidthOfString(text string, opts TextOptions) (float64, error) {
	font, err := d.b.Font(d.font)
	if err != nil {
		return 0, err
	}
	return d.measure(font, text, opts.CharacterSpacing), nil
}

// HeightOfString returns the height text occupies when wrapped with opts,
// as Text would draw it.
func (d *Document) HeightOfString(text string, opts TextOptions) (float64, error) {
	font, err := d.b.Font(d.font)
	if err != nil {
		return 0, err
	}
	lines := d.wrap(font, text, d.wrapWidth(d.x, opts), opts.CharacterSpacing)
	return float64(len(lines)) * d.lineAdvance(font, opts), nil
}

// Text draws text with its first line's top at (x, y). Lines are wrapped
// at opts.Width. The cursor ends at x, below the last line. Text never
// breaks pages; see Paragraph.
func (d *Document) Text(text string, x, y float64, opts TextOptions) error {
	p, err := d.page()
	if err != nil {
		return err
	}
	font, err := d.b.Font(d.font)
	if err != nil {
		return err
	}
	width := d.wrapWidth(x, opts)
	advance := d.lineAdvance(font, opts)
	for _, ln := range d.wrap(font, text, width, opts.CharacterSpacing) {
		d.drawLine(p, font, ln, x, y, width, opts)
		y += advance
	}
	d.x, d.y = x, y
	return nil
}

// Paragraph draws text at the cursor, wrapping at opts.Width and adding a
// page whenever the next line would cross the bottom margin.
func (d *Document) Paragraph(text string, opts TextOptions) error {
	font, err := d.b.Font(d.font)
	if err != nil {
		return err
	}
	x := d.x
	width := d.wrapWidth(x, opts)
	advance := d.lineAdvance(font, opts)
	for _, ln := range d.wrap(font, text, width, opts.CharacterSpacing) {
		if d.y+advance > d.MaxY() && d.y > d.Margins().Top {
			if err := d.AddPage(); err != nil {
				return err
			}
		}
		p, err := d.page()
		if err != nil {
			return err
		}
		d.drawLine(p, font, ln, x, d.y, width, opts)
		d.y += advance
	}
	d.x = x
	return nil
}

// MoveDown advances the cursor by lines of the current line height.
func (d *Document) MoveDown(lines float64) {
	d.y += d.CurrentLineHeight()*lines + d.lineGap
}

// Superscript writes text at half of fontSize without moving the cursor
// vertically, then restores fontSize. Unless continued, the cursor moves
// down one line afterwards.
func (d *Document) Superscript(text string, fontSize float64, continued bool) error {
	y := d.y
	d.SetFontSize(fontSize / 2)
	err := d.Paragraph(text, TextOptions{})
	d.SetFontSize(fontSize)
	d.y = y
	if err != nil {
		return err
	}
	if !continued {
		d.MoveDown(1)
	}
	return nil
}

type line struct {
	text  string
	width float64
	// last marks the final line of a paragraph, which is never justified.
	last bool
}

func (d *Document) wrapWidth(x float64, opts TextOptions) float64 {
	if opts.Width > 0 {
		return opts.Width
	}
	if w := d.MaxX() - x; w > 0 {
		return w
	}
	return d.UsableWidth()
}

func (d *Document) lineAdvance(font *semantic.Font, opts TextOptions) float64 {
	gap := d.lineGap
	if opts.LineGap != 0 {
		gap = opts.LineGap
	}
	return fonts.LineHeight(font, d.fontSize) + gap
}

func (d *Document) measure(font *semantic.Font, text string, spacing float64) float64 {
	w := fonts.Width(font, text, d.fontSize)
	if n := utf8.RuneCountInString(text); spacing != 0 && n > 1 {
		w += spacing * float64(n-1)
	}
	return w
}

// wrap breaks text into lines no wider than width. Explicit newlines start
// a new paragraph; words wider than width are split between characters.
func (d *Document) wrap(font *semantic.Font, text string, width, spacing float64) []line {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []line
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, line{last: true})
			continue
		}
		var cur string
		var curWidth float64
		flush := func() {
			lines = append(lines, line{text: cur, width: curWidth})
			cur, curWidth = "", 0
		}
		for _, word := range words {
			candidate := word
			if cur != "" {
				candidate = cur + " " + word
			}
			if cw := d.measure(font, candidate, spacing); cw <= width || cur == "" && d.measure(font, word, spacing) <= width {
				cur, curWidth = candidate, cw
				continue
			}
			if cur != "" {
				flush()
			}
			if ww := d.measure(font, word, spacing); ww <= width {
				cur, curWidth = word, ww
				continue
			}
			for _, piece := range d.splitWord(font, word, width, spacing) {
				if cur != "" {
					flush()
				}
				cur, curWidth = piece, d.measure(font, piece, spacing)
			}
		}
		if cur != "" {
			flush()
		}
		lines[len(lines)-1].last = true
	}
	return lines
}

// splitWord cuts a word into pieces that fit width, keeping at least one
// character per piece.
func (d *Document) splitWord(font *semantic.Font, word string, width, spacing float64) []string {
	var pieces []string
	var cur []rune
	for _, r := range word {
		next := append(cur, r)
		if len(cur) > 0 && d.measure(font, string(next), spacing) > width {
			pieces = append(pieces, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	if len(cur) > 0 {
		pieces = append(pieces, string(cur))
	}
	return pieces
}

func (d *Document) drawLine(p *page, font *semantic.Font, ln line, x, top, width float64, opts TextOptions) {
	if ln.text == "" {
		return
	}
	lineX := x
	var wordSpacing float64
	switch opts.Align {
	case AlignCenter:
		lineX = x + (width-ln.width)/2
	case AlignRight:
		lineX = x + width - ln.width
	case AlignJustify:
		// Word spacing only applies to single-byte encoded spaces.
		if spaces := strings.Count(ln.text, " "); !ln.last && spaces > 0 && font.Subtype != "Type0" {
			wordSpacing = (width - ln.width) / float64(spaces)
		}
	}
	color := opts.Color
	if color.IsZero() {
		color = d.fillColor
	}
	baseline := top + fonts.Ascent(font, d.fontSize)
	p.pb.DrawText(ln.text, lineX, p.height-baseline, builder.TextOptions{
		Font:        d.font,
		FontSize:    d.fontSize,
		Color:       color,
		CharSpacing: opts.CharacterSpacing,
		WordSpacing: wordSpacing,
	})
}
