package writer

import (
	"bytes"
	"compress/zlib"
	"context"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/fonts"
	"github.com/wudi/pdftable/ir/raw"
	"github.com/wudi/pdftable/ir/semantic"
)

func buildSample(t *testing.T) *semantic.Document {
	t.Helper()
	b := builder.NewBuilder()
	b.SetInfo(&semantic.DocumentInfo{Title: "Sample", Author: "Zoë"})
	b.NewPage(200, 200).
		DrawText("Hello (world)", 10, 20, builder.TextOptions{FontSize: 12}).
		DrawRectangle(5, 5, 50, 20, builder.RectOptions{Fill: true, FillColor: builder.RGB(200, 200, 200), FillOpacity: 0.4})
	b.NewPage(200, 200).DrawText("Second", 10, 20, builder.TextOptions{Font: "Times-Roman"})
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build doc: %v", err)
	}
	return doc
}

func write(t *testing.T, doc *semantic.Document, cfg Config) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := New().Write(context.Background(), doc, &buf, cfg); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return buf.Bytes()
}

func TestWriter_ProducesParseableStructure(t *testing.T) {
	out := write(t, buildSample(t), Config{Deterministic: true})
	s := string(out)
	if !strings.HasPrefix(s, "%PDF-1.7\n") {
		t.Fatalf("missing header: %q", s[:20])
	}
	for _, want := range []string{
		"/Type /Catalog",
		"/Type /Pages",
		"/Count 2",
		"/BaseFont /Helvetica",
		"/BaseFont /Times-Roman",
		"/Encoding /WinAnsiEncoding",
		"/ca 0.4",
		"(Hello \\(world\\)) Tj",
		"/Title (Sample)",
		"/Author <FEFF005A006F00EB>",
		"%%EOF",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("output missing %q", want)
		}
	}
	if strings.Contains(s, "/Widths") {
		t.Fatalf("standard fonts should not carry width arrays")
	}
}

func TestWriter_XRefOffsetsPointAtObjects(t *testing.T) {
	out := write(t, buildSample(t), Config{})
	idx := bytes.LastIndex(out, []byte("startxref\n"))
	if idx < 0 {
		t.Fatalf("startxref missing")
	}
	rest := string(out[idx+len("startxref\n"):])
	xrefOffset, err := strconv.Atoi(strings.TrimSpace(strings.SplitN(rest, "\n", 2)[0]))
	if err != nil {
		t.Fatalf("parse startxref: %v", err)
	}
	if !bytes.HasPrefix(out[xrefOffset:], []byte("xref\n")) {
		t.Fatalf("startxref does not point at xref table")
	}
	entry := regexp.MustCompile(`(\d{10}) 00000 n `)
	matches := entry.FindAllStringSubmatch(string(out[xrefOffset:]), -1)
	if len(matches) == 0 {
		t.Fatalf("no in-use xref entries")
	}
	for i, m := range matches {
		off, _ := strconv.Atoi(m[1])
		want := strconv.Itoa(i+1) + " 0 obj"
		if !bytes.HasPrefix(out[off:], []byte(want)) {
			t.Fatalf("entry %d offset %d does not start %q", i+1, off, want)
		}
	}
}

func TestWriter_CompressedContent(t *testing.T) {
	out := write(t, buildSample(t), Config{Compression: 6})
	s := string(out)
	if !strings.Contains(s, "/Filter /FlateDecode") {
		t.Fatalf("compressed stream filter missing")
	}
	start := strings.Index(s, "stream\n") + len("stream\n")
	end := strings.Index(s[start:], "\nendstream")
	r, err := zlib.NewReader(strings.NewReader(s[start : start+end]))
	if err != nil {
		t.Fatalf("zlib reader: %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	if !bytes.Contains(data, []byte("BT")) {
		t.Fatalf("inflated content unexpected: %q", data)
	}
}

func TestWriter_DeterministicOutput(t *testing.T) {
	a := write(t, buildSample(t), Config{Deterministic: true})
	b := write(t, buildSample(t), Config{Deterministic: true})
	if !bytes.Equal(a, b) {
		t.Fatalf("deterministic output differs")
	}
}

func TestWriter_EmbedsTrueTypeFont(t *testing.T) {
	font, err := fonts.LoadTrueType("Go", goregular.TTF)
	if err != nil {
		t.Fatalf("load font: %v", err)
	}
	b := builder.NewBuilder().RegisterFont("Go", font)
	b.NewPage(100, 100).DrawText("Go", 10, 10, builder.TextOptions{Font: "Go"})
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	s := string(write(t, doc, Config{Compression: 9}))
	for _, want := range []string{"/Subtype /Type0", "/Encoding /Identity-H", "/CIDToGIDMap /Identity", "/FontFile2", "/ToUnicode", "/DescendantFonts"} {
		if !strings.Contains(s, want) {
			t.Fatalf("output missing %q", want)
		}
	}
}

func TestWriter_ImageWithSoftMask(t *testing.T) {
	img := &semantic.Image{
		Width: 1, Height: 1, ColorSpace: "DeviceRGB", BitsPerComponent: 8, Data: []byte{1, 2, 3},
		SMask: &semantic.Image{Width: 1, Height: 1, ColorSpace: "DeviceGray", BitsPerComponent: 8, Data: []byte{9}},
	}
	jpeg := &semantic.Image{Width: 2, Height: 2, ColorSpace: "DeviceGray", BitsPerComponent: 8, Filter: "DCTDecode", Data: []byte{0xFF, 0xD8}}
	b := builder.NewBuilder()
	b.NewPage(100, 100).
		DrawImage(img, 0, 0, 10, 10, builder.ImageOptions{}).
		DrawImage(img, 20, 0, 10, 10, builder.ImageOptions{}).
		DrawImage(jpeg, 40, 0, 10, 10, builder.ImageOptions{})
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	s := string(write(t, doc, Config{Compression: 6}))
	if got := strings.Count(s, "/Subtype /Image"); got != 3 {
		t.Fatalf("expected image, mask and jpeg objects, got %d", got)
	}
	if !strings.Contains(s, "/SMask") || !strings.Contains(s, "/Filter /DCTDecode") {
		t.Fatalf("missing soft mask or passthrough filter")
	}
}

type countingInterceptor struct{ before, after int }

func (c *countingInterceptor) BeforeWrite(ctx context.Context, ref raw.ObjectRef, obj raw.Object) error {
	c.before++
	return nil
}

func (c *countingInterceptor) AfterWrite(ctx context.Context, ref raw.ObjectRef, n int64) error {
	c.after++
	return nil
}

func TestWriter_Interceptors(t *testing.T) {
	ic := &countingInterceptor{}
	w := (&WriterBuilder{}).WithInterceptor(ic).Build()
	var buf bytes.Buffer
	if err := w.Write(context.Background(), buildSample(t), &buf, Config{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ic.before == 0 || ic.before != ic.after {
		t.Fatalf("interceptor calls before=%d after=%d", ic.before, ic.after)
	}
}

func TestWriter_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := New().Write(context.Background(), &semantic.Document{}, &buf, Config{}); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New().Write(ctx, buildSample(t), &buf, Config{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
