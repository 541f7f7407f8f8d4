package scripting

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dop251/goja"

	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/document"
	"github.com/wudi/pdftable/observability"
	"github.com/wudi/pdftable/table"
)

// ErrNoPolicy is returned when a script defines none of the policy hooks.
var ErrNoPolicy = errors.New("script defines no align, rowStyle or cellStyle function")

// Policies are table policies backed by functions a script defines:
//
//	align(row, col)     -> "left" | "center" | "right" | "justify"
//	rowStyle(row)       -> {fill, stroke, fillOpacity, font, fontSize, textColor}
//	cellStyle(row, col) -> rowStyle fields plus lineWidth
//
// Policy interfaces cannot fail, so the first script error is kept and the
// affected cell falls back to the defaults. Check Err after drawing.
type Policies struct {
	engine    *GojaEngine
	ctx       context.Context
	align     goja.Callable
	rowStyle  goja.Callable
	cellStyle goja.Callable
	err       error
}

// Policies runs script and binds the hooks it defines. Every later hook call
// is bounded by ctx.
func (e *GojaEngine) Policies(ctx context.Context, script string) (*Policies, error) {
	if _, err := e.guard(ctx, func() (goja.Value, error) { return e.vm.RunString(script) }); err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}
	p := &Policies{engine: e, ctx: ctx}
	p.align, _ = goja.AssertFunction(e.vm.Get("align"))
	p.rowStyle, _ = goja.AssertFunction(e.vm.Get("rowStyle"))
	p.cellStyle, _ = goja.AssertFunction(e.vm.Get("cellStyle"))
	if p.align == nil && p.rowStyle == nil && p.cellStyle == nil {
		return nil, ErrNoPolicy
	}
	return p, nil
}

// Options returns the table options for the hooks the script defined.
func (p *Policies) Options() []table.Option {
	var opts []table.Option
	if p.align != nil {
		opts = append(opts, table.WithAlign(table.AlignFunc(p.Align)))
	}
	if p.rowStyle != nil {
		opts = append(opts, table.WithRowStyle(table.RowStyleFunc(p.RowStyle)))
	}
	if p.cellStyle != nil {
		opts = append(opts, table.WithCellStyle(table.CellStyleFunc(p.CellStyle)))
	}
	return opts
}

// Err returns the first error raised by a hook.
func (p *Policies) Err() error { return p.err }

func (p *Policies) fail(hook string, err error, fields ...observability.Field) {
	fields = append(fields, observability.String("hook", hook), observability.Error("error", err))
	p.engine.log.Warn("script hook failed", fields...)
	if p.err == nil {
		p.err = fmt.Errorf("%s: %w", hook, err)
	}
}

func (p *Policies) call(fn goja.Callable, args ...int) (goja.Value, error) {
	vals := make([]goja.Value, len(args))
	for i, a := range args {
		vals[i] = p.engine.vm.ToValue(a)
	}
	return p.engine.guard(p.ctx, func() (goja.Value, error) {
		return fn(goja.Undefined(), vals...)
	})
}

func (p *Policies) Align(row, col int) document.Align {
	if p.align == nil {
		return document.AlignCenter
	}
	v, err := p.call(p.align, row, col)
	if err == nil && !isNullish(v) {
		var a document.Align
		if a, err = table.ParseAlign(v.String()); err == nil {
			return a
		}
	}
	if err != nil {
		p.fail("align", err, observability.Int("row", row), observability.Int("col", col))
	}
	return document.AlignCenter
}

func (p *Policies) RowStyle(row int) table.RowStyle {
	if p.rowStyle == nil {
		return table.RowStyle{}
	}
	v, err := p.call(p.rowStyle, row)
	if err != nil {
		p.fail("rowStyle", err, observability.Int("row", row))
		return table.RowStyle{}
	}
	s, err := decodeStyle(v)
	if err != nil {
		p.fail("rowStyle", err, observability.Int("row", row))
		return table.RowStyle{}
	}
	return table.RowStyle{
		HasFill:     s.HasFill,
		HasStroke:   s.HasStroke,
		FillOpacity: s.FillOpacity,
		Font:        s.Font,
		FontSize:    s.FontSize,
		TextColor:   s.TextColor,
		FillColor:   s.FillColor,
		StrokeColor: s.StrokeColor,
	}
}

func (p *Policies) CellStyle(row, col int) table.CellStyle {
	if p.cellStyle == nil {
		return table.CellStyle{}
	}
	v, err := p.call(p.cellStyle, row, col)
	if err == nil {
		var s table.CellStyle
		if s, err = decodeStyle(v); err == nil {
			return s
		}
	}
	p.fail("cellStyle", err, observability.Int("row", row), observability.Int("col", col))
	return table.CellStyle{}
}

func isNullish(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

// decodeStyle reads a style object. fill and stroke accept a color string,
// or true to use the document colors.
func decodeStyle(v goja.Value) (table.CellStyle, error) {
	var s table.CellStyle
	if isNullish(v) {
		return s, nil
	}
	m, ok := v.Export().(map[string]interface{})
	if !ok {
		return s, fmt.Errorf("style must be an object, got %s", v.String())
	}
	var err error
	if s.HasFill, s.FillColor, err = paint(m, "fill"); err != nil {
		return s, err
	}
	if s.HasStroke, s.StrokeColor, err = paint(m, "stroke"); err != nil {
		return s, err
	}
	if c, ok := m["textColor"]; ok {
		if s.TextColor, err = builder.ParseColor(fmt.Sprint(c)); err != nil {
			return s, fmt.Errorf("textColor: %w", err)
		}
	}
	if f, ok := m["font"]; ok {
		s.Font = fmt.Sprint(f)
	}
	for key, dst := range map[string]*float64{
		"fillOpacity": &s.FillOpacity,
		"fontSize":    &s.FontSize,
		"lineWidth":   &s.LineWidth,
	} {
		raw, ok := m[key]
		if !ok {
			continue
		}
		n, ok := number(raw)
		if !ok || n < 0 {
			return s, fmt.Errorf("%s must be a non-negative number, got %v", key, raw)
		}
		*dst = n
	}
	return s, nil
}

func paint(m map[string]interface{}, key string) (bool, builder.Color, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return false, builder.Color{}, nil
	}
	switch v := raw.(type) {
	case bool:
		return v, builder.Color{}, nil
	case string:
		c, err := builder.ParseColor(v)
		if err != nil {
			return false, builder.Color{}, fmt.Errorf("%s: %w", key, err)
		}
		return true, c, nil
	}
	return false, builder.Color{}, fmt.Errorf("%s must be a color or boolean, got %v", key, raw)
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	}
	return 0, false
}
