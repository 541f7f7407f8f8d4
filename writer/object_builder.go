package writer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wudi/pdftable/ir/raw"
	"github.com/wudi/pdftable/ir/semantic"
)

type objectBuilder struct {
	doc         *semantic.Document
	cfg         Config
	objects     raw.Table
	alloc       raw.Allocator
	fontRefs    map[*semantic.Font]raw.ObjectRef
	xobjectRefs map[*semantic.Image]raw.ObjectRef
}

func newObjectBuilder(doc *semantic.Document, cfg Config) *objectBuilder {
	return &objectBuilder{
		doc:         doc,
		cfg:         cfg,
		objects:     make(raw.Table),
		fontRefs:    make(map[*semantic.Font]raw.ObjectRef),
		xobjectRefs: make(map[*semantic.Image]raw.ObjectRef),
	}
}

func (b *objectBuilder) nextRef() raw.ObjectRef { return b.alloc.Next() }

// Build converts the document into indirect objects and returns them with
// the catalog reference and the optional info dictionary reference.
func (b *objectBuilder) Build() (raw.Table, raw.ObjectRef, *raw.ObjectRef, error) {
	catalogRef := b.nextRef()
	pagesRef := b.nextRef()

	var infoRef *raw.ObjectRef
	if info := b.infoDict(); info != nil {
		ref := b.nextRef()
		infoRef = &ref
		b.objects[ref] = info
	}

	kids := raw.Array()
	for i, p := range b.doc.Pages {
		if p == nil {
			return nil, raw.ObjectRef{}, nil, fmt.Errorf("page %d is nil", i)
		}
		pageRef := b.nextRef()
		kids.Append(raw.Ref(pageRef))
		pageDict := raw.Dict().
			Set("Type", raw.Name("Page")).
			Set("Parent", raw.Ref(pagesRef)).
			Set("MediaBox", rectArray(p.MediaBox))
		res, err := b.resources(p.Resources)
		if err != nil {
			return nil, raw.ObjectRef{}, nil, fmt.Errorf("page %d resources: %w", i, err)
		}
		pageDict.Set("Resources", res)
		contentRef, err := b.contentStream(p.Contents)
		if err != nil {
			return nil, raw.ObjectRef{}, nil, fmt.Errorf("page %d contents: %w", i, err)
		}
		pageDict.Set("Contents", raw.Ref(contentRef))
		b.objects[pageRef] = pageDict
	}

	b.objects[pagesRef] = raw.Dict().
		Set("Type", raw.Name("Pages")).
		Set("Count", raw.Int(int64(len(b.doc.Pages)))).
		Set("Kids", kids)
	b.objects[catalogRef] = raw.Dict().
		Set("Type", raw.Name("Catalog")).
		Set("Pages", raw.Ref(pagesRef))
	return b.objects, catalogRef, infoRef, nil
}

func (b *objectBuilder) infoDict() *raw.DictObj {
	info := b.doc.Info
	if info == nil {
		return nil
	}
	d := raw.Dict()
	setText := func(key, val string) {
		if val != "" {
			d.Set(key, textString(val))
		}
	}
	setText("Title", info.Title)
	setText("Author", info.Author)
	setText("Subject", info.Subject)
	setText("Creator", info.Creator)
	setText("Producer", info.Producer)
	setText("Keywords", strings.Join(info.Keywords, ", "))
	if d.Len() == 0 {
		return nil
	}
	return d
}

func (b *objectBuilder) resources(res *semantic.Resources) (*raw.DictObj, error) {
	d := raw.Dict().Set("ProcSet", raw.Array(raw.Name("PDF"), raw.Name("Text"), raw.Name("ImageB"), raw.Name("ImageC")))
	if res == nil {
		return d, nil
	}
	if len(res.Fonts) > 0 {
		fontsDict := raw.Dict()
		for _, name := range sortedKeys(res.Fonts) {
			ref, err := b.ensureFont(res.Fonts[name])
			if err != nil {
				return nil, fmt.Errorf("font %s: %w", name, err)
			}
			fontsDict.Set(pdfNameLiteral(name), raw.Ref(ref))
		}
		d.Set("Font", fontsDict)
	}
	if len(res.ExtGStates) > 0 {
		gsDict := raw.Dict()
		for _, name := range sortedKeys(res.ExtGStates) {
			gsDict.Set(pdfNameLiteral(name), extGState(res.ExtGStates[name]))
		}
		d.Set("ExtGState", gsDict)
	}
	if len(res.XObjects) > 0 {
		xoDict := raw.Dict()
		for _, name := range sortedKeys(res.XObjects) {
			ref, err := b.ensureXObject(res.XObjects[name])
			if err != nil {
				return nil, fmt.Errorf("xobject %s: %w", name, err)
			}
			xoDict.Set(pdfNameLiteral(name), raw.Ref(ref))
		}
		d.Set("XObject", xoDict)
	}
	return d, nil
}

func (b *objectBuilder) contentStream(contents []semantic.ContentStream) (raw.ObjectRef, error) {
	var data []byte
	for _, cs := range contents {
		data = append(data, serializeContentStream(cs)...)
	}
	stream, err := b.stream(raw.Dict(), data)
	if err != nil {
		return raw.ObjectRef{}, err
	}
	ref := b.nextRef()
	b.objects[ref] = stream
	return ref, nil
}

// stream builds a stream object, flate-compressing data when configured.
func (b *objectBuilder) stream(dict *raw.DictObj, data []byte) (*raw.StreamObj, error) {
	if b.cfg.Compression != 0 && len(data) > 0 {
		encoded, err := flateEncode(data, b.cfg.Compression)
		if err != nil {
			return nil, err
		}
		dict.Set("Filter", raw.Name("FlateDecode"))
		data = encoded
	}
	dict.Set("Length", raw.Int(int64(len(data))))
	return raw.Stream(dict, data), nil
}

func (b *objectBuilder) addFontDescriptor(fd *semantic.FontDescriptor) (*raw.ObjectRef, error) {
	if fd == nil {
		return nil, nil
	}
	name := fd.FontName
	if name == "" {
		name = "CustomFont"
	}
	flags := fd.Flags
	if flags == 0 {
		flags = 4
	}
	stem := fd.StemV
	if stem == 0 {
		stem = 80
	}
	d := raw.Dict().
		Set("Type", raw.Name("FontDescriptor")).
		Set("FontName", raw.Name(pdfNameLiteral(name))).
		Set("Flags", raw.Int(int64(flags))).
		Set("ItalicAngle", raw.Real(fd.ItalicAngle)).
		Set("Ascent", raw.Real(fd.Ascent)).
		Set("Descent", raw.Real(fd.Descent)).
		Set("CapHeight", raw.Real(fd.CapHeight)).
		Set("StemV", raw.Int(int64(stem))).
		Set("FontBBox", raw.Reals(fd.FontBBox[:]...))
	if len(fd.FontFile) > 0 {
		key := fd.FontFileType
		if key == "" {
			key = "FontFile2"
		}
		sd := raw.Dict().Set("Length1", raw.Int(int64(len(fd.FontFile))))
		stream, err := b.stream(sd, fd.FontFile)
		if err != nil {
			return nil, err
		}
		streamRef := b.nextRef()
		b.objects[streamRef] = stream
		d.Set(key, raw.Ref(streamRef))
	}
	ref := b.nextRef()
	b.objects[ref] = d
	return &ref, nil
}

func (b *objectBuilder) addToUnicode(font *semantic.Font) (*raw.ObjectRef, error) {
	cmap := buildToUnicodeCMap(font)
	if len(cmap) == 0 {
		return nil, nil
	}
	stream, err := b.stream(raw.Dict(), cmap)
	if err != nil {
		return nil, err
	}
	ref := b.nextRef()
	b.objects[ref] = stream
	return &ref, nil
}

func (b *objectBuilder) ensureFont(font *semantic.Font) (raw.ObjectRef, error) {
	if font == nil {
		return raw.ObjectRef{}, fmt.Errorf("nil font")
	}
	if ref, ok := b.fontRefs[font]; ok {
		return ref, nil
	}
	base := font.BaseFont
	if base == "" {
		base = "Helvetica"
	}
	subtype := font.Subtype
	if subtype == "" {
		subtype = "Type1"
	}
	fontDict := raw.Dict().
		Set("Type", raw.Name("Font")).
		Set("Subtype", raw.Name(subtype)).
		Set("BaseFont", raw.Name(pdfNameLiteral(base)))

	if subtype == "Type0" {
		encoding := font.Encoding
		if encoding == "" {
			encoding = "Identity-H"
		}
		fontDict.Set("Encoding", raw.Name(encoding))
		descRef, err := b.addDescendant(font, base)
		if err != nil {
			return raw.ObjectRef{}, err
		}
		fontDict.Set("DescendantFonts", raw.Array(raw.Ref(descRef)))
		uref, err := b.addToUnicode(font)
		if err != nil {
			return raw.ObjectRef{}, err
		}
		if uref != nil {
			fontDict.Set("ToUnicode", raw.Ref(*uref))
		}
	} else {
		encoding := font.Encoding
		if encoding == "" {
			encoding = "WinAnsiEncoding"
		}
		fontDict.Set("Encoding", raw.Name(encoding))
		// Base-14 fonts carry their own metrics in every viewer.
		if !font.Standard {
			if len(font.Widths) > 0 {
				first, last, widthsArr := encodeWidths(font.Widths)
				fontDict.Set("FirstChar", raw.Int(int64(first)))
				fontDict.Set("LastChar", raw.Int(int64(last)))
				fontDict.Set("Widths", widthsArr)
			}
			fd, err := b.addFontDescriptor(font.Descriptor)
			if err != nil {
				return raw.ObjectRef{}, err
			}
			if fd != nil {
				fontDict.Set("FontDescriptor", raw.Ref(*fd))
			}
		}
	}
	ref := b.nextRef()
	b.objects[ref] = fontDict
	b.fontRefs[font] = ref
	return ref, nil
}

func (b *objectBuilder) addDescendant(font *semantic.Font, base string) (raw.ObjectRef, error) {
	desc := font.DescendantFont
	descSubtype := "CIDFontType2"
	descBase := base
	csi := semantic.CIDSystemInfo{Registry: "Adobe", Ordering: "Identity"}
	dw := 1000
	widths := font.Widths
	descriptor := font.Descriptor
	if desc != nil {
		if desc.Subtype != "" {
			descSubtype = desc.Subtype
		}
		if desc.BaseFont != "" {
			descBase = desc.BaseFont
		}
		if desc.CIDSystemInfo.Registry != "" {
			csi = desc.CIDSystemInfo
		}
		if desc.DW > 0 {
			dw = desc.DW
		}
		if len(desc.W) > 0 {
			widths = desc.W
		}
		if desc.Descriptor != nil {
			descriptor = desc.Descriptor
		}
	}
	if font.CIDSystemInfo != nil {
		csi = *font.CIDSystemInfo
	}
	d := raw.Dict().
		Set("Type", raw.Name("Font")).
		Set("Subtype", raw.Name(descSubtype)).
		Set("BaseFont", raw.Name(pdfNameLiteral(descBase))).
		Set("CIDSystemInfo", raw.Dict().
			Set("Registry", raw.Str([]byte(csi.Registry))).
			Set("Ordering", raw.Str([]byte(csi.Ordering))).
			Set("Supplement", raw.Int(int64(csi.Supplement)))).
		Set("DW", raw.Int(int64(dw)))
	if descSubtype == "CIDFontType2" {
		d.Set("CIDToGIDMap", raw.Name("Identity"))
	}
	if len(widths) > 0 {
		d.Set("W", encodeCIDWidths(widths))
	}
	fd, err := b.addFontDescriptor(descriptor)
	if err != nil {
		return raw.ObjectRef{}, err
	}
	if fd != nil {
		d.Set("FontDescriptor", raw.Ref(*fd))
	}
	ref := b.nextRef()
	b.objects[ref] = d
	return ref, nil
}

func (b *objectBuilder) ensureXObject(img *semantic.Image) (raw.ObjectRef, error) {
	if img == nil {
		return raw.ObjectRef{}, fmt.Errorf("nil image")
	}
	if ref, ok := b.xobjectRefs[img]; ok {
		return ref, nil
	}
	colorSpace := img.ColorSpace
	if colorSpace == "" {
		colorSpace = "DeviceRGB"
	}
	bpc := img.BitsPerComponent
	if bpc == 0 {
		bpc = 8
	}
	dict := raw.Dict().
		Set("Type", raw.Name("XObject")).
		Set("Subtype", raw.Name("Image")).
		Set("Width", raw.Int(int64(img.Width))).
		Set("Height", raw.Int(int64(img.Height))).
		Set("ColorSpace", raw.Name(colorSpace)).
		Set("BitsPerComponent", raw.Int(int64(bpc)))
	if img.Interpolate {
		dict.Set("Interpolate", raw.Bool(true))
	}
	if len(img.Decode) > 0 {
		dict.Set("Decode", raw.Reals(img.Decode...))
	}
	if img.SMask != nil {
		maskRef, err := b.ensureXObject(img.SMask)
		if err != nil {
			return raw.ObjectRef{}, err
		}
		dict.Set("SMask", raw.Ref(maskRef))
	}
	var stream *raw.StreamObj
	if img.Filter != "" {
		dict.Set("Filter", raw.Name(img.Filter))
		dict.Set("Length", raw.Int(int64(len(img.Data))))
		stream = raw.Stream(dict, img.Data)
	} else {
		var err error
		if stream, err = b.stream(dict, img.Data); err != nil {
			return raw.ObjectRef{}, err
		}
	}
	ref := b.nextRef()
	b.objects[ref] = stream
	b.xobjectRefs[img] = ref
	return ref, nil
}

func extGState(gs semantic.ExtGState) *raw.DictObj {
	d := raw.Dict().Set("Type", raw.Name("ExtGState"))
	if gs.FillAlpha != nil {
		d.Set("ca", raw.Real(*gs.FillAlpha))
	}
	if gs.StrokeAlpha != nil {
		d.Set("CA", raw.Real(*gs.StrokeAlpha))
	}
	return d
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
