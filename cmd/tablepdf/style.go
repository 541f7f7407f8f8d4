package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/document"
	"github.com/wudi/pdftable/ingest"
	"github.com/wudi/pdftable/ir/semantic"
	"github.com/wudi/pdftable/observability"
	"github.com/wudi/pdftable/scripting"
	"github.com/wudi/pdftable/table"
)

// Style is the YAML style file.
type Style struct {
	Page  PageStyle         `yaml:"page"`
	Font  FontStyle         `yaml:"font"`
	Fonts map[string]string `yaml:"fonts"`
	Table TableStyle        `yaml:"table"`
	// Meta fills the document information dictionary: title, author,
	// subject and keywords (comma separated).
	Meta map[string]string `yaml:"meta"`
}

type PageStyle struct {
	Size    string       `yaml:"size"`
	Width   float64      `yaml:"width"`
	Height  float64      `yaml:"height"`
	Margins *MarginStyle `yaml:"margins"`
}

type MarginStyle struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

type FontStyle struct {
	Name string  `yaml:"name"`
	Size float64 `yaml:"size"`
}

type TableStyle struct {
	X                    *float64      `yaml:"x"`
	Y                    *float64      `yaml:"y"`
	Width                float64       `yaml:"width"`
	Padding              *PaddingStyle `yaml:"padding"`
	ColumnWidths         []float64     `yaml:"columnWidths"`
	ColumnFractions      []float64     `yaml:"columnFractions"`
	VerticalAlign        string        `yaml:"verticalAlign"`
	MinRowsBottomOfPage  int           `yaml:"minRowsBottomOfPage"`
	HeaderOnTopOfNewPage *bool         `yaml:"headerOnTopOfNewPage"`
	NewPages             *bool         `yaml:"newPages"`
	HorizontalLines      *bool         `yaml:"horizontalLines"`
	TextColor            string        `yaml:"textColor"`
	// Align is extremes, source, or a fixed alignment.
	Align   string        `yaml:"align"`
	Rows    *RowPreset    `yaml:"rows"`
	Columns *ColumnPreset `yaml:"columns"`
	// Script is a JavaScript file defining align, rowStyle or cellStyle.
	Script string `yaml:"script"`
}

type PaddingStyle struct {
	Horizontal float64 `yaml:"horizontal"`
	Vertical   float64 `yaml:"vertical"`
}

// RowPreset selects a row style policy: highlight-headers or alternate.
type RowPreset struct {
	Preset      string  `yaml:"preset"`
	HeaderFill  string  `yaml:"headerFill"`
	HeaderFont  string  `yaml:"headerFont"`
	Fill        string  `yaml:"fill"`
	AltFill     string  `yaml:"altFill"`
	Font        string  `yaml:"font"`
	FontSize    float64 `yaml:"fontSize"`
	FillOpacity float64 `yaml:"fillOpacity"`
	Stroke      bool    `yaml:"stroke"`
}

// ColumnPreset selects a cell style policy: even-bold or odd-bold.
type ColumnPreset struct {
	Preset string `yaml:"preset"`
	Font   string `yaml:"font"`
	Bold   string `yaml:"bold"`
}

// LoadStyle reads a style file. An empty path returns the zero style.
func LoadStyle(path string) (*Style, error) {
	var s Style
	if path == "" {
		return &s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse style %s: %w", path, err)
	}
	for name, p := range s.Fonts {
		if !filepath.IsAbs(p) {
			s.Fonts[name] = filepath.Join(filepath.Dir(path), p)
		}
	}
	if s.Table.Script != "" && !filepath.IsAbs(s.Table.Script) {
		s.Table.Script = filepath.Join(filepath.Dir(path), s.Table.Script)
	}
	return &s, nil
}

// DocumentOptions builds the document options of the style.
func (s *Style) DocumentOptions(log observability.Logger) ([]document.Option, error) {
	opts := []document.Option{document.WithLogger(log)}
	if s.Page.Size != "" {
		if _, ok := document.PaperSize(s.Page.Size); !ok {
			return nil, fmt.Errorf("unknown page size %q", s.Page.Size)
		}
		opts = append(opts, document.WithPaperSize(s.Page.Size))
	}
	if s.Page.Width > 0 && s.Page.Height > 0 {
		opts = append(opts, document.WithPageSize(s.Page.Width, s.Page.Height))
	}
	if m := s.Page.Margins; m != nil {
		opts = append(opts, document.WithMargins(document.Margins{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left}))
	}
	names := make([]string, 0, len(s.Fonts))
	for name := range s.Fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := os.ReadFile(s.Fonts[name])
		if err != nil {
			return nil, fmt.Errorf("font %s: %w", name, err)
		}
		opts = append(opts, document.WithFont(name, data))
	}
	if len(s.Meta) > 0 {
		opts = append(opts, document.WithInfo(info(s.Meta)))
	}
	return opts, nil
}

// ApplyFont sets the base font of the document.
func (s *Style) ApplyFont(doc *document.Document) error {
	if s.Font.Name != "" {
		if err := doc.SetFont(s.Font.Name); err != nil {
			return err
		}
	}
	doc.SetFontSize(s.Font.Size)
	return nil
}

// TableOptions builds the table options of the style. The returned
// policies are nil unless the style names a script.
func (s *Style) TableOptions(ctx context.Context, src ingest.Table, log observability.Logger) ([]table.Option, *scripting.Policies, error) {
	t := s.Table
	opts := []table.Option{table.WithLogger(log)}
	if t.X != nil {
		opts = append(opts, table.WithStartX(*t.X))
	}
	if t.Y != nil {
		opts = append(opts, table.WithStartY(*t.Y))
	}
	if t.Width > 0 {
		opts = append(opts, table.WithWidth(t.Width))
	}
	if t.Padding != nil {
		opts = append(opts, table.WithPadding(t.Padding.Horizontal, t.Padding.Vertical))
	}
	if len(t.ColumnWidths) > 0 {
		opts = append(opts, table.WithColumnWidths(t.ColumnWidths...))
	}
	if len(t.ColumnFractions) > 0 {
		opts = append(opts, table.WithColumnFractions(t.ColumnFractions...))
	}
	if t.VerticalAlign != "" {
		v, err := table.ParseVerticalAlign(t.VerticalAlign)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, table.WithVerticalAlign(v))
	}
	opts = append(opts, table.WithMinRowsBottomOfPage(t.MinRowsBottomOfPage))
	if t.HeaderOnTopOfNewPage != nil {
		opts = append(opts, table.WithHeaderOnTopOfNewPage(*t.HeaderOnTopOfNewPage))
	}
	if t.NewPages != nil {
		opts = append(opts, table.WithNewPages(*t.NewPages))
	}
	if t.HorizontalLines != nil {
		opts = append(opts, table.WithHorizontalLines(*t.HorizontalLines))
	}
	if t.TextColor != "" {
		c, err := builder.ParseColor(t.TextColor)
		if err != nil {
			return nil, nil, fmt.Errorf("textColor: %w", err)
		}
		opts = append(opts, table.WithTextColor(c))
	}

	switch strings.ToLower(t.Align) {
	case "":
	case "extremes":
		opts = append(opts, table.WithAlign(table.AlignTwoColumnsToExtremes()))
	case "source":
		opts = append(opts, table.WithAlign(src.AlignPolicy(document.AlignCenter)))
	default:
		a, err := table.ParseAlign(t.Align)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, table.WithAlign(table.FixedAlign(a)))
	}

	if t.Rows != nil {
		p, err := t.Rows.policy()
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, table.WithRowStyle(p))
	}
	if t.Columns != nil {
		p, err := t.Columns.policy()
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, table.WithCellStyle(p))
	}

	if t.Script == "" {
		return opts, nil, nil
	}
	code, err := os.ReadFile(t.Script)
	if err != nil {
		return nil, nil, fmt.Errorf("read script: %w", err)
	}
	engine := scripting.NewEngine(log)
	if err := engine.RegisterTable(gridOf(src.Rows)); err != nil {
		return nil, nil, err
	}
	policies, err := engine.Policies(ctx, string(code))
	if err != nil {
		return nil, nil, fmt.Errorf("script %s: %w", t.Script, err)
	}
	return append(opts, policies.Options()...), policies, nil
}

func (r *RowPreset) policy() (table.RowStylePolicy, error) {
	common := table.RowStyle{FontSize: r.FontSize, FillOpacity: r.FillOpacity, HasStroke: r.Stroke}
	switch r.Preset {
	case "highlight-headers":
		h := table.HeaderHighlight{HeadersFont: r.HeaderFont, RowFont: r.Font}
		var err error
		if h.HeadersFill, err = optionalColor(r.HeaderFill); err != nil {
			return nil, fmt.Errorf("headerFill: %w", err)
		}
		if h.RowFill, err = optionalColor(r.Fill); err != nil {
			return nil, fmt.Errorf("fill: %w", err)
		}
		return table.HighlightHeaders(h, common), nil
	case "alternate":
		fill, err := optionalColor(r.Fill)
		if err != nil {
			return nil, fmt.Errorf("fill: %w", err)
		}
		alt, err := optionalColor(r.AltFill)
		if err != nil {
			return nil, fmt.Errorf("altFill: %w", err)
		}
		common.Font = r.Font
		return table.AlternateMainColors(fill, alt, common), nil
	}
	return nil, fmt.Errorf("unknown rows preset %q", r.Preset)
}

func (c *ColumnPreset) policy() (table.CellStylePolicy, error) {
	main, bold := c.Font, c.Bold
	if main == "" {
		main = "Helvetica"
	}
	if bold == "" {
		bold = "Helvetica-Bold"
	}
	switch c.Preset {
	case "even-bold":
		return table.EvenColumnsBold(main, bold), nil
	case "odd-bold":
		return table.OddColumnsBold(main, bold), nil
	}
	return nil, fmt.Errorf("unknown columns preset %q", c.Preset)
}

func info(meta map[string]string) semantic.DocumentInfo {
	di := semantic.DocumentInfo{
		Title:   meta["title"],
		Author:  meta["author"],
		Subject: meta["subject"],
		Creator: "tablepdf",
	}
	for _, k := range strings.Split(meta["keywords"], ",") {
		if k = strings.TrimSpace(k); k != "" {
			di.Keywords = append(di.Keywords, k)
		}
	}
	return di
}

func optionalColor(s string) (builder.Color, error) {
	if s == "" {
		return builder.Color{}, nil
	}
	return builder.ParseColor(s)
}

func gridOf(rows []table.Row) scripting.GridView {
	grid := make(scripting.GridView, len(rows))
	for i, r := range rows {
		grid[i] = make([]string, len(r))
		for j, c := range r {
			grid[i][j] = c.Text
		}
	}
	return grid
}
