package fonts

import (
	"math"
	"testing"

	"github.com/wudi/pdftable/ir/semantic"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestStandard_KnownAndAliases(t *testing.T) {
	font, ok := Standard("Helvetica-Bold")
	if !ok {
		t.Fatalf("Helvetica-Bold should be known")
	}
	if font.BaseFont != "Helvetica-Bold" || font.Encoding != "WinAnsiEncoding" || !font.Standard {
		t.Fatalf("unexpected font: %+v", font)
	}
	if font.Widths['A'] != 722 {
		t.Fatalf("width of A = %d, want 722", font.Widths['A'])
	}
	alias, ok := Standard("times")
	if !ok || alias.BaseFont != "Times-Roman" {
		t.Fatalf("alias times did not resolve: %+v", alias)
	}
	if _, ok := Standard("Wingdings"); ok {
		t.Fatalf("unknown face should not resolve")
	}
	if len(StandardNames()) != 12 {
		t.Fatalf("expected 12 standard text faces, got %d", len(StandardNames()))
	}
}

func TestWidth_StandardFonts(t *testing.T) {
	helv, _ := Standard("Helvetica")
	// H=722 e=556 l=222 l=222 o=556
	if got := Width(helv, "Hello", 10); !almostEqual(got, 22.78) {
		t.Fatalf("Width(Hello) = %v, want 22.78", got)
	}
	courier, _ := Standard("Courier")
	if got := Width(courier, "abcd", 12); !almostEqual(got, 28.8) {
		t.Fatalf("Width(courier) = %v, want 28.8", got)
	}
	if got := Width(helv, "", 12); got != 0 {
		t.Fatalf("empty text should measure 0, got %v", got)
	}
	// é is WinAnsi 0xE9 and uses the face's average advance.
	if got := Width(helv, "é", 10); !almostEqual(got, 5.56) {
		t.Fatalf("Width(é) = %v, want 5.56", got)
	}
}

func TestWidth_CompositeWithoutFontFile(t *testing.T) {
	font := &semantic.Font{
		Subtype:        "Type0",
		Widths:         map[int]int{3: 400, 4: 600},
		ToUnicode:      map[int][]rune{3: {'a'}, 4: {'b'}},
		DescendantFont: &semantic.CIDFont{DW: 1000},
	}
	// a + b + unmapped (glyph 0 falls back to DW)
	if got := Width(font, "abz", 10); !almostEqual(got, 20) {
		t.Fatalf("Width = %v, want 20", got)
	}
}

func TestLineMetrics(t *testing.T) {
	helv, _ := Standard("Helvetica")
	if got := LineHeight(helv, 10); !almostEqual(got, 11.56) {
		t.Fatalf("LineHeight = %v, want 11.56", got)
	}
	if got := Ascent(helv, 10); !almostEqual(got, 7.18) {
		t.Fatalf("Ascent = %v, want 7.18", got)
	}
	if got := Descent(helv, 10); !almostEqual(got, -2.07) {
		t.Fatalf("Descent = %v, want -2.07", got)
	}
	if got := LineHeight(nil, 10); !almostEqual(got, 12) {
		t.Fatalf("LineHeight(nil) = %v, want 12", got)
	}
}

func TestEncodeWinAnsi(t *testing.T) {
	got := EncodeWinAnsi("a€é✓")
	want := []byte{'a', 0x80, 0xE9, '?'}
	if string(got) != string(want) {
		t.Fatalf("EncodeWinAnsi = %x, want %x", got, want)
	}
}

func TestLoadTrueType_Empty(t *testing.T) {
	if _, err := LoadTrueType("x", nil); err == nil {
		t.Fatalf("expected error for empty data")
	}
	if _, err := LoadTrueType("x", []byte("not a font")); err == nil {
		t.Fatalf("expected parse error")
	}
}
