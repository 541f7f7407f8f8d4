// Package semantic holds the in-memory document model produced by the
// builder and serialized by the writer.
package semantic

// Document is the semantic representation of a PDF.
type Document struct {
	Pages []*Page
	Info  *DocumentInfo
}

// Page models a single PDF page.
type Page struct {
	Index     int
	MediaBox  Rectangle
	Resources *Resources
	Contents  []ContentStream
}

// Width returns the MediaBox width.
func (p *Page) Width() float64 { return p.MediaBox.URX - p.MediaBox.LLX }

// Height returns the MediaBox height.
func (p *Page) Height() float64 { return p.MediaBox.URY - p.MediaBox.LLY }

// ContentStream is a sequence of operations on a page.
type ContentStream struct {
	Operations []Operation
	RawBytes   []byte
}

// Operation represents a PDF operator and operands.
type Operation struct {
	Operator string
	Operands []Operand
}

// Operand is a type-safe operand value.
type Operand interface {
	operand()
	Type() string
}

type NumberOperand struct{ Value float64 }

func (NumberOperand) operand()     {}
func (NumberOperand) Type() string { return "number" }

type NameOperand struct{ Value string }

func (NameOperand) operand()     {}
func (NameOperand) Type() string { return "name" }

type StringOperand struct{ Value []byte }

func (StringOperand) operand()     {}
func (StringOperand) Type() string { return "string" }

type ArrayOperand struct{ Values []Operand }

func (ArrayOperand) operand()     {}
func (ArrayOperand) Type() string { return "array" }

// Numbers wraps float values as operands.
func Numbers(vals ...float64) []Operand {
	out := make([]Operand, len(vals))
	for i, v := range vals {
		out[i] = NumberOperand{Value: v}
	}
	return out
}

// Resources holds the named resources a page's content refers to.
type Resources struct {
	Fonts      map[string]*Font
	ExtGStates map[string]ExtGState
	XObjects   map[string]*Image
}

// Font describes a simple (Type1/TrueType) or composite (Type0) font.
type Font struct {
	Subtype        string // Type1 (default), TrueType, Type0
	BaseFont       string
	Encoding       string
	Widths         map[int]int    // character code (or glyph ID for Type0) -> width
	ToUnicode      map[int][]rune // glyph ID -> runes, Type0 only
	CIDSystemInfo  *CIDSystemInfo
	DescendantFont *CIDFont
	Descriptor     *FontDescriptor
	// Standard reports a base-14 font that is never embedded.
	Standard bool
}

// CIDSystemInfo describes the registry/ordering of a CID font.
type CIDSystemInfo struct {
	Registry   string
	Ordering   string
	Supplement int
}

// CIDFont describes a descendant font for Type0 fonts.
type CIDFont struct {
	Subtype       string // CIDFontType2
	BaseFont      string
	CIDSystemInfo CIDSystemInfo
	DW            int
	W             map[int]int // CID -> width
	Descriptor    *FontDescriptor
}

// FontDescriptor carries metrics and font file embedding details.
// Metric values are in glyph space (1/1000 em).
type FontDescriptor struct {
	FontName     string
	Flags        int
	ItalicAngle  float64
	Ascent       float64
	Descent      float64
	CapHeight    float64
	StemV        int
	FontBBox     [4]float64
	FontFile     []byte
	FontFileType string // FontFile2 (TrueType)
	// LineHeight is the recommended baseline-to-baseline distance; zero
	// means the FontBBox height is used.
	LineHeight float64
}

// ExtGState is a graphics state parameter dictionary; only the
// transparency entries are modelled.
type ExtGState struct {
	StrokeAlpha *float64
	FillAlpha   *float64
}

// Image is an image XObject.
type Image struct {
	Width            int
	Height           int
	ColorSpace       string // DeviceRGB, DeviceGray, DeviceCMYK
	BitsPerComponent int
	Filter           string // set when Data is already encoded, e.g. DCTDecode
	Data             []byte
	Decode           []float64
	Interpolate      bool
	SMask            *Image
}

// Rectangle is a box in default user space.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// DocumentInfo mirrors the trailer /Info dictionary.
type DocumentInfo struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
	Keywords []string
}
