package table

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/document"
)

var _ Surface = (*fakeSurface)(nil)

var approx = cmpopts.EquateApprox(0, 1e-9)

func textGrid(rows, cols int) []Row {
	records := make([][]string, rows)
	for i := range records {
		records[i] = make([]string, cols)
		for j := range records[i] {
			records[i][j] = fmt.Sprintf("r%dc%d", i, j)
		}
	}
	return TextRows(records)
}

func column(texts ...string) []Row {
	rows := make([]Row, len(texts))
	for i, t := range texts {
		rows[i] = Row{TextCell(t)}
	}
	return rows
}

func TestResolve_DefaultColumnWidths(t *testing.T) {
	f := newFake()
	p, err := Resolve(f, textGrid(3, 3), WithStart(50, 30), WithWidth(450))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]float64{150, 150, 150}, p.ColumnWidths, approx); diff != "" {
		t.Fatalf("column widths (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{50, 200, 350}, p.ColumnXs, approx); diff != "" {
		t.Fatalf("column xs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{140, 140, 140}, p.ColumnTextWidths, approx); diff != "" {
		t.Fatalf("column text widths (-want +got):\n%s", diff)
	}
	var sum float64
	for _, w := range p.ColumnWidths {
		sum += w
	}
	if sum != p.Width {
		t.Fatalf("column widths sum to %v, want %v", sum, p.Width)
	}
	if p.ColumnCount != 3 || len(p.RowHeights) != 3 {
		t.Fatalf("column count %d, row heights %d", p.ColumnCount, len(p.RowHeights))
	}
	if p.MaxY != 180 {
		t.Fatalf("maxY = %v, want 180", p.MaxY)
	}
	if len(f.events) != 0 {
		t.Fatalf("resolve drew: %+v", f.events)
	}
}

func TestResolve_ColumnModes(t *testing.T) {
	cases := []struct {
		name       string
		opts       []Option
		wantWidths []float64
		wantXs     []float64
	}{
		{
			name:       "fractions",
			opts:       []Option{WithStart(10, 20), WithWidth(300), WithColumnFractions(0.4, 0.6)},
			wantWidths: []float64{120, 180},
			wantXs:     []float64{10, 130},
		},
		{
			name:       "absolute widths win over fractions",
			opts:       []Option{WithStart(10, 20), WithWidth(300), WithColumnFractions(0.4, 0.6), WithColumnWidths(100, 60)},
			wantWidths: []float64{100, 60},
			wantXs:     []float64{10, 110},
		},
		{
			name:       "defaults to the usable width from the cursor",
			wantWidths: []float64{130, 130},
			wantXs:     []float64{20, 150},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Resolve(newFake(), textGrid(2, 2), tc.opts...)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if diff := cmp.Diff(tc.wantWidths, p.ColumnWidths, approx); diff != "" {
				t.Fatalf("widths (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantXs, p.ColumnXs, approx); diff != "" {
				t.Fatalf("xs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_InvalidConfiguration(t *testing.T) {
	ragged := textGrid(2, 2)
	ragged[1] = ragged[1][:1]
	cases := []struct {
		name string
		rows []Row
		opts []Option
	}{
		{"no rows", nil, nil},
		{"empty first row", []Row{{}}, nil},
		{"ragged rows", ragged, nil},
		{"widths length", textGrid(1, 2), []Option{WithColumnWidths(10, 20, 30)}},
		{"fractions length", textGrid(1, 2), []Option{WithColumnFractions(1)}},
		{"negative padding", textGrid(1, 2), []Option{WithPadding(-1, 5)}},
		{"vertical alignment", textGrid(1, 2), []Option{WithVerticalAlign("sideways")}},
		{"column narrower than padding", textGrid(1, 2), []Option{WithColumnWidths(8, 100)}},
		{"zero width column", textGrid(1, 2), []Option{WithColumnWidths(0, 100)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFake()
			if _, err := Height(f, tc.rows, tc.opts...); !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("Height: expected ErrInvalidConfiguration, got %v", err)
			}
			if err := Draw(f, tc.rows, tc.opts...); !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("Draw: expected ErrInvalidConfiguration, got %v", err)
			}
			if len(f.events) != 0 {
				t.Fatalf("invalid table drew %d events", len(f.events))
			}
		})
	}
}

func TestResolve_RowHeights(t *testing.T) {
	f := newFake()
	f.images["wide"] = [2]float64{280, 140}
	f.images["tiny"] = [2]float64{10, 10}
	rows := []Row{
		{TextCell("a"), TextCell("b\nc"), TextCell("")},
		{Cell{Text: "x", Image: []byte("wide")}, TextCell("y"), TextCell("z")},
		{Cell{Image: []byte("wide"), ImageOptions: &ImageOptions{MaxWidth: 20}}, ImageCell([]byte("tiny")), TextCell("")},
		{TextCell(""), TextCell(""), TextCell("")},
	}
	p, err := Resolve(f, rows, WithWidth(450))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// Image scaled to the 140pt text width stacks above one line of text.
	want := []float64{30, 90, 20, 10}
	if diff := cmp.Diff(want, p.RowHeights, approx); diff != "" {
		t.Fatalf("row heights (-want +got):\n%s", diff)
	}
	if p.TotalHeight != 150 || p.HeightMinNumberOfRows != 140 {
		t.Fatalf("total %v, min rows %v", p.TotalHeight, p.HeightMinNumberOfRows)
	}
	for i, h := range p.RowHeights {
		if h < 2*p.VerPadding {
			t.Fatalf("row %d height %v below padding", i, h)
		}
	}

	f.images = map[string][2]float64{}
	if _, err := Resolve(f, rows, WithWidth(450)); !errors.Is(err, builder.ErrUnsupportedImage) {
		t.Fatalf("expected image error, got %v", err)
	}
}

func TestResolve_FontsAppliedPerCellAndRestored(t *testing.T) {
	f := newFake()
	rows := textGrid(2, 3)
	opts := []Option{
		WithRowStyle(RowStyleFunc(func(row int) RowStyle {
			if row == 0 {
				return RowStyle{FontSize: 20}
			}
			return RowStyle{}
		})),
		WithCellStyle(CellStyleFunc(func(row, col int) CellStyle {
			switch {
			case row == 1 && col == 0:
				return CellStyle{Font: "Courier"}
			case row == 1 && col == 1:
				return CellStyle{FontSize: 30}
			}
			return CellStyle{}
		})),
	}
	p, err := Resolve(f, rows, opts...)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]float64{30, 40}, p.RowHeights); diff != "" {
		t.Fatalf("row heights (-want +got):\n%s", diff)
	}
	if f.font != "Helvetica" || f.size != 10 {
		t.Fatalf("font not restored after resolve: %s %v", f.font, f.size)
	}

	if err := Draw(f, rows, opts...); err != nil {
		t.Fatalf("draw: %v", err)
	}
	type fontUse struct {
		Text string
		Font string
		Size float64
	}
	var got []fontUse
	for _, e := range f.ops("text") {
		got = append(got, fontUse{e.Text, e.Font, e.Size})
	}
	want := []fontUse{
		{"r0c0", "Helvetica", 20}, {"r0c1", "Helvetica", 20}, {"r0c2", "Helvetica", 20},
		{"r1c0", "Courier", 10}, {"r1c1", "Helvetica", 30}, {"r1c2", "Helvetica", 10},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fonts used (-want +got):\n%s", diff)
	}
	if f.font != "Helvetica" || f.size != 10 {
		t.Fatalf("font not restored after draw: %s %v", f.font, f.size)
	}
}

func TestHeight_MatchesDrawnHeight(t *testing.T) {
	f := newFake()
	f.images["img"] = [2]float64{100, 50}
	rows := textGrid(4, 3)
	rows[2][1] = Cell{Text: "with\nimage", Image: []byte("img")}

	h, err := Height(f, rows)
	if err != nil {
		t.Fatalf("height: %v", err)
	}
	if len(f.events) != 0 || f.x != 20 || f.y != 20 {
		t.Fatalf("height query drew or moved the cursor")
	}
	if err := Draw(f, rows); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if f.x != 20 || math.Abs(f.y-20-h) > 1e-9 {
		t.Fatalf("cursor (%v, %v) after drawing %v of height", f.x, f.y, h)
	}
	if got := len(f.ops("hr")); got != len(rows)+1 {
		t.Fatalf("separators = %d, want %d", got, len(rows)+1)
	}
}

func TestDraw_PageBreakRepeatsHeader(t *testing.T) {
	f := newFake()
	// Nine rows of 20pt between y=20 and maxY=180: row 7 ends exactly on
	// the bottom margin, row 8 does not fit.
	rows := column("r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8")
	log := newRecordLogger()
	if err := Draw(f, rows, WithLogger(log)); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if f.pages != 2 || len(f.ops("addPage")) != 1 {
		t.Fatalf("pages = %d", f.pages)
	}
	type placed struct {
		Page int
		Text string
		Y    float64
	}
	var got []placed
	for _, e := range f.ops("text") {
		if e.Page == 1 || e.Text == "r7" {
			got = append(got, placed{e.Page, e.Text, e.Y})
		}
	}
	want := []placed{{0, "r7", 165}, {1, "r0", 25}, {1, "r8", 45}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("placement (-want +got):\n%s", diff)
	}
	var hrs []float64
	for _, e := range f.ops("hr") {
		if e.Page == 1 {
			hrs = append(hrs, e.Y)
		}
	}
	if diff := cmp.Diff([]float64{20, 40, 60}, hrs); diff != "" {
		t.Fatalf("separators on the new page (-want +got):\n%s", diff)
	}
	if f.x != 20 || f.y != 60 {
		t.Fatalf("cursor = (%v, %v), want (20, 60)", f.x, f.y)
	}
	if len(log.messages["debug"]) != 1 {
		t.Fatalf("page break not logged: %v", log.messages)
	}
}

func TestDraw_PageBreakWithoutHeader(t *testing.T) {
	f := newFake()
	rows := column("r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8")
	if err := Draw(f, rows, WithHeaderOnTopOfNewPage(false), WithHorizontalLines(false)); err != nil {
		t.Fatalf("draw: %v", err)
	}
	var page1 []string
	for _, e := range f.ops("text") {
		if e.Page == 1 {
			page1 = append(page1, e.Text)
		}
	}
	if diff := cmp.Diff([]string{"r8"}, page1); diff != "" {
		t.Fatalf("rows on the new page (-want +got):\n%s", diff)
	}
	if len(f.ops("hr")) != 0 {
		t.Fatalf("separators drawn with horizontal lines disabled")
	}
	if f.y != 40 {
		t.Fatalf("cursor y = %v, want 40", f.y)
	}
}

func TestDraw_BufferedPages(t *testing.T) {
	rows := column("r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8")

	f := newFake()
	f.pages = 2
	if err := Draw(f, rows, WithNewPages(false)); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if f.pages != 2 || f.current != 1 || len(f.ops("addPage")) != 0 || len(f.ops("nextPage")) != 1 {
		t.Fatalf("pages %d current %d events %+v", f.pages, f.current, f.ops("addPage", "nextPage"))
	}

	f = newFake()
	err := Draw(f, rows, WithNewPages(false))
	if !errors.Is(err, document.ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 8") {
		t.Fatalf("error does not name the row: %v", err)
	}
	if f.font != "Helvetica" || f.size != 10 {
		t.Fatalf("font not restored after failure")
	}
}

func TestDraw_HeaderDrawnOncePerPage(t *testing.T) {
	f := newFake()
	if err := Draw(f, column("h", "a", "b"), WithStartY(170), WithMinRowsBottomOfPage(1)); err != nil {
		t.Fatalf("draw: %v", err)
	}
	var got []string
	for _, e := range f.ops("text") {
		got = append(got, fmt.Sprintf("%d:%s", e.Page, e.Text))
	}
	if diff := cmp.Diff([]string{"1:h", "1:a", "1:b"}, got); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}

	f = newFake()
	rows := column("h", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11")
	if err := Draw(f, rows); err != nil {
		t.Fatalf("draw: %v", err)
	}
	headers := map[int]int{}
	for _, e := range f.ops("text") {
		if e.Text == "h" {
			headers[e.Page]++
		}
	}
	if diff := cmp.Diff(map[int]int{0: 1, 1: 1}, headers); diff != "" {
		t.Fatalf("headers per page (-want +got):\n%s", diff)
	}
}

func TestDraw_EntryCheck(t *testing.T) {
	f := newFake()
	if err := Draw(f, column("a", "b", "c", "d"), WithStartY(150)); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(f.events) == 0 || f.events[0].Op != "addPage" {
		t.Fatalf("table did not start on a new page: %+v", f.events)
	}
	if first := f.ops("hr")[0]; first.Page != 1 || first.Y != 20 {
		t.Fatalf("first separator = %+v", first)
	}
	if f.y != 100 {
		t.Fatalf("cursor y = %v, want 100", f.y)
	}

	f = newFake()
	if err := Draw(f, column("a", "b", "c"), WithStartY(150), WithMinRowsBottomOfPage(1), WithHeaderOnTopOfNewPage(false)); err != nil {
		t.Fatalf("draw: %v", err)
	}
	var pages []int
	for _, e := range f.ops("text") {
		pages = append(pages, e.Page)
	}
	if diff := cmp.Diff([]int{0, 1, 1}, pages); diff != "" {
		t.Fatalf("row pages (-want +got):\n%s", diff)
	}
}

func TestDraw_OversizedRowIsNotSplit(t *testing.T) {
	f := newFake()
	tall := strings.TrimSuffix(strings.Repeat("line\n", 20), "\n")
	log := newRecordLogger()
	if err := Draw(f, column(tall), WithLogger(log)); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if f.pages != 2 {
		t.Fatalf("pages = %d, want 2", f.pages)
	}
	texts := f.ops("text")
	if len(texts) != 1 || texts[0].Page != 1 {
		t.Fatalf("tall row placement: %+v", texts)
	}
	if f.y != 20+210 {
		t.Fatalf("cursor y = %v, want 230", f.y)
	}
	if len(log.messages["warn"]) != 1 {
		t.Fatalf("oversized row not reported: %v", log.messages)
	}
}

func TestDraw_SurfaceFailure(t *testing.T) {
	f := newFake()
	f.failOp = "text"
	err := Draw(f, textGrid(2, 2))
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected surface error, got %v", err)
	}
	if !strings.Contains(err.Error(), "row 0 cell 0") {
		t.Fatalf("error does not locate the cell: %v", err)
	}
	// The opening separator was already drawn and stays.
	if len(f.ops("hr")) != 1 {
		t.Fatalf("separators = %d", len(f.ops("hr")))
	}

	f = newFake()
	bad := WithCellStyle(CellStyleFunc(func(int, int) CellStyle { return CellStyle{Font: "Missing"} }))
	if _, err := Height(f, textGrid(1, 1), bad); !errors.Is(err, document.ErrUnknownFont) {
		t.Fatalf("expected ErrUnknownFont, got %v", err)
	}
}

func TestDraw_DecorationOrder(t *testing.T) {
	f := newFake()
	rowFill := builder.RGB(10, 20, 30)
	opts := []Option{
		WithHorizontalLines(false),
		WithRowStyle(RowStyleFunc(func(int) RowStyle {
			return RowStyle{HasFill: true, HasStroke: true, FillOpacity: 0.5, FillColor: rowFill}
		})),
		WithCellStyle(CellStyleFunc(func(_, col int) CellStyle {
			if col == 0 {
				return CellStyle{HasStroke: true}
			}
			return CellStyle{HasFill: true, LineWidth: 3}
		})),
	}
	if err := Draw(f, textGrid(1, 2), opts...); err != nil {
		t.Fatalf("draw: %v", err)
	}
	var ops []string
	for _, e := range f.events {
		ops = append(ops, e.Op)
	}
	if diff := cmp.Diff([]string{"fill", "stroke", "stroke", "text", "fill", "text"}, ops); diff != "" {
		t.Fatalf("operations (-want +got):\n%s", diff)
	}
	rowRect := f.events[0]
	if rowRect.X != 20 || rowRect.W != 260 || rowRect.H != 20 || rowRect.Opacity != 0.5 || rowRect.Color != rowFill {
		t.Fatalf("row fill = %+v", rowRect)
	}
	if f.events[1].LineWidth != 1 || f.events[2].LineWidth != 1 {
		t.Fatalf("default line widths: %v %v", f.events[1].LineWidth, f.events[2].LineWidth)
	}
	if cell := f.events[4]; cell.X != 150 || cell.W != 130 {
		t.Fatalf("cell fill = %+v", cell)
	}
}

func TestDraw_VerticalAlignment(t *testing.T) {
	cases := []struct {
		align      VerticalAlign
		imageY     float64
		imageTextY float64
		textY      float64
	}{
		{VAlignTop, 25, 85, 25},
		{VAlignCenter, 25, 85, 55},
		{VAlignBottom, 25, 85, 85},
	}
	for _, tc := range cases {
		t.Run(string(tc.align), func(t *testing.T) {
			f := newFake()
			f.images["img"] = [2]float64{240, 120}
			rows := []Row{{Cell{Text: "t", Image: []byte("img")}, TextCell("u")}}
			if err := Draw(f, rows, WithVerticalAlign(tc.align), WithHorizontalLines(false)); err != nil {
				t.Fatalf("draw: %v", err)
			}
			img := f.ops("image")[0]
			if img.X != 25 || img.Y != tc.imageY || img.W != 120 || img.H != 60 {
				t.Fatalf("image = %+v", img)
			}
			texts := f.ops("text")
			if texts[0].Y != tc.imageTextY || texts[1].Y != tc.textY {
				t.Fatalf("text ys = %v, %v", texts[0].Y, texts[1].Y)
			}
			if f.y != 100 {
				t.Fatalf("cursor y = %v, want 100", f.y)
			}
		})
	}
}

func TestDraw_CellImageOptions(t *testing.T) {
	f := newFake()
	f.images["img"] = [2]float64{240, 120}
	rows := []Row{{
		Cell{Image: []byte("img"), ImageOptions: &ImageOptions{MaxWidth: 60, Align: document.AlignRight}},
		Cell{Image: []byte("img"), ImageOptions: &ImageOptions{MaxWidth: 60, Align: document.AlignCenter}},
	}}
	if err := Draw(f, rows); err != nil {
		t.Fatalf("draw: %v", err)
	}
	imgs := f.ops("image")
	if imgs[0].X != 85 || imgs[0].W != 60 || imgs[0].H != 30 {
		t.Fatalf("right aligned image = %+v", imgs[0])
	}
	if imgs[1].X != 150+5+30 {
		t.Fatalf("centred image x = %v", imgs[1].X)
	}
}

func TestDraw_TextOptionsAndColors(t *testing.T) {
	f := newFake()
	red, green, blue := builder.RGB(255, 0, 0), builder.RGB(0, 255, 0), builder.RGB(0, 0, 255)
	rows := []Row{
		{TextCell("default"), TextCell("cell"), Cell{Text: "explicit", TextOptions: &document.TextOptions{Color: blue, Width: 50}}},
		{TextCell("row"), TextCell("row"), TextCell("row")},
	}
	opts := []Option{
		WithTextColor(red),
		WithAlign(AlignTwoColumnsToExtremes()),
		WithRowStyle(RowStyleFunc(func(row int) RowStyle {
			if row == 1 {
				return RowStyle{TextColor: green}
			}
			return RowStyle{}
		})),
		WithCellStyle(CellStyleFunc(func(row, col int) CellStyle {
			if row == 0 && col == 1 {
				return CellStyle{TextColor: blue}
			}
			return CellStyle{}
		})),
	}
	if err := Draw(f, rows, opts...); err != nil {
		t.Fatalf("draw: %v", err)
	}
	texts := f.ops("text")
	wantColors := []builder.Color{red, blue, blue, green, green, green}
	for i, e := range texts {
		if e.Color != wantColors[i] {
			t.Fatalf("text %d (%s) colour = %v, want %v", i, e.Text, e.Color, wantColors[i])
		}
	}
	if texts[2].W != 50 || texts[1].W != 260.0/3-10 {
		t.Fatalf("text widths = %v, %v", texts[2].W, texts[1].W)
	}
}

func TestParseAlignments(t *testing.T) {
	if v, err := ParseVerticalAlign("Middle"); err != nil || v != VAlignCenter {
		t.Fatalf("ParseVerticalAlign(Middle) = %q, %v", v, err)
	}
	if _, err := ParseVerticalAlign("diagonal"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if a, err := ParseAlign(" RIGHT "); err != nil || a != document.AlignRight {
		t.Fatalf("ParseAlign = %q, %v", a, err)
	}
	if _, err := ParseAlign("up"); err == nil {
		t.Fatalf("expected error for unknown alignment")
	}
}
