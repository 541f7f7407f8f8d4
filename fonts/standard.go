package fonts

import (
	"strings"

	"github.com/wudi/pdftable/ir/semantic"
)

// Widths below are the AFM advance widths of the printable ASCII range
// (codes 32 through 126) for the base-14 faces.

var helveticaWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

var helveticaBoldWidths = [95]int{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333, 584, 584, 584, 611,
	975, 722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 333, 278, 333, 584, 556,
	333, 556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889, 611, 611,
	611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}

var timesRomanWidths = [95]int{
	250, 333, 408, 500, 500, 833, 778, 180, 333, 333, 500, 564, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 278, 278, 564, 564, 564, 444,
	921, 722, 667, 667, 722, 611, 556, 722, 722, 333, 389, 722, 611, 889, 722, 722,
	556, 722, 667, 556, 611, 722, 722, 944, 722, 722, 611, 333, 278, 333, 469, 500,
	333, 444, 500, 444, 500, 444, 333, 500, 500, 278, 278, 500, 278, 778, 500, 500,
	500, 500, 333, 389, 278, 500, 500, 722, 500, 500, 444, 480, 200, 480, 541,
}

var timesBoldWidths = [95]int{
	250, 333, 555, 500, 500, 1000, 833, 278, 333, 333, 500, 570, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 333, 333, 570, 570, 570, 500,
	930, 722, 667, 722, 722, 667, 611, 778, 778, 389, 500, 778, 667, 944, 722, 778,
	611, 778, 722, 556, 667, 722, 722, 1000, 722, 722, 667, 333, 278, 333, 581, 500,
	333, 500, 556, 444, 556, 444, 333, 500, 556, 278, 333, 556, 278, 833, 556, 500,
	556, 556, 444, 389, 333, 556, 500, 722, 500, 500, 444, 394, 220, 394, 520,
}

type standardFace struct {
	widths  *[95]int
	fixed   int // monospaced advance, used when widths is nil
	missing int
	ascent  float64
	descent float64
	capH    float64
	bbox    [4]float64
	flags   int
	italic  float64
}

// The italic Times faces reuse the upright advance widths.
var standardFaces = map[string]standardFace{
	"Helvetica":             {widths: &helveticaWidths, missing: 556, ascent: 718, descent: -207, capH: 718, bbox: [4]float64{-166, -225, 1000, 931}, flags: 32},
	"Helvetica-Bold":        {widths: &helveticaBoldWidths, missing: 556, ascent: 718, descent: -207, capH: 718, bbox: [4]float64{-170, -228, 1003, 962}, flags: 32},
	"Helvetica-Oblique":     {widths: &helveticaWidths, missing: 556, ascent: 718, descent: -207, capH: 718, bbox: [4]float64{-170, -225, 1116, 931}, flags: 96, italic: -12},
	"Helvetica-BoldOblique": {widths: &helveticaBoldWidths, missing: 556, ascent: 718, descent: -207, capH: 718, bbox: [4]float64{-174, -228, 1114, 962}, flags: 96, italic: -12},
	"Times-Roman":           {widths: &timesRomanWidths, missing: 500, ascent: 683, descent: -217, capH: 662, bbox: [4]float64{-168, -218, 1000, 898}, flags: 34},
	"Times-Bold":            {widths: &timesBoldWidths, missing: 500, ascent: 683, descent: -217, capH: 676, bbox: [4]float64{-168, -218, 1000, 935}, flags: 34},
	"Times-Italic":          {widths: &timesRomanWidths, missing: 500, ascent: 683, descent: -217, capH: 653, bbox: [4]float64{-169, -217, 1010, 883}, flags: 98, italic: -15.5},
	"Times-BoldItalic":      {widths: &timesBoldWidths, missing: 500, ascent: 683, descent: -217, capH: 669, bbox: [4]float64{-200, -218, 996, 921}, flags: 98, italic: -15},
	"Courier":               {fixed: 600, missing: 600, ascent: 629, descent: -157, capH: 562, bbox: [4]float64{-23, -250, 715, 805}, flags: 33},
	"Courier-Bold":          {fixed: 600, missing: 600, ascent: 629, descent: -157, capH: 562, bbox: [4]float64{-113, -250, 749, 801}, flags: 33},
	"Courier-Oblique":       {fixed: 600, missing: 600, ascent: 629, descent: -157, capH: 562, bbox: [4]float64{-27, -250, 849, 805}, flags: 97, italic: -12},
	"Courier-BoldOblique":   {fixed: 600, missing: 600, ascent: 629, descent: -157, capH: 562, bbox: [4]float64{-57, -250, 869, 801}, flags: 97, italic: -12},
}

var standardAliases = map[string]string{
	"times":     "Times-Roman",
	"helvetica": "Helvetica",
	"courier":   "Courier",
	"arial":     "Helvetica",
}

// StandardNames lists the base-14 text faces known to Standard.
func StandardNames() []string {
	names := make([]string, 0, len(standardFaces))
	for name := range standardFaces {
		names = append(names, name)
	}
	return names
}

// Standard returns a non-embedded base-14 font with WinAnsi encoding and
// its AFM metrics. The second result is false for unknown names.
func Standard(name string) (*semantic.Font, bool) {
	face, ok := standardFaces[name]
	if !ok {
		alias, found := standardAliases[strings.ToLower(strings.TrimSpace(name))]
		if !found {
			return nil, false
		}
		name = alias
		face = standardFaces[name]
	}
	widths := make(map[int]int, 223)
	for i := 0; i < 95; i++ {
		w := face.fixed
		if face.widths != nil {
			w = face.widths[i]
		}
		widths[32+i] = w
	}
	// WinAnsi codes above ASCII fall back to the face's average advance.
	for code := 128; code < 256; code++ {
		widths[code] = face.missing
	}
	return &semantic.Font{
		Subtype:  "Type1",
		BaseFont: name,
		Encoding: "WinAnsiEncoding",
		Widths:   widths,
		Standard: true,
		Descriptor: &semantic.FontDescriptor{
			FontName:    name,
			Flags:       face.flags,
			ItalicAngle: face.italic,
			Ascent:      face.ascent,
			Descent:     face.descent,
			CapHeight:   face.capH,
			StemV:       stemV(face.missing),
			FontBBox:    face.bbox,
			LineHeight:  face.bbox[3] - face.bbox[1],
		},
	}, true
}

func stemV(missing int) int {
	if missing == 600 {
		return 51
	}
	return 88
}
