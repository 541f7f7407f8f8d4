package scripting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/wudi/pdftable/builder"
	"github.com/wudi/pdftable/document"
	"github.com/wudi/pdftable/observability"
	"github.com/wudi/pdftable/table"
)

type logEntry struct {
	level, msg string
	fields     map[string]interface{}
}

type recordLogger struct{ entries *[]logEntry }

func newRecordLogger() recordLogger { return recordLogger{entries: &[]logEntry{}} }

func (l recordLogger) add(level, msg string, fields []observability.Field) {
	m := map[string]interface{}{}
	for _, f := range fields {
		m[f.Key()] = f.Value()
	}
	*l.entries = append(*l.entries, logEntry{level, msg, m})
}

func (l recordLogger) Debug(msg string, f ...observability.Field)       { l.add("debug", msg, f) }
func (l recordLogger) Info(msg string, f ...observability.Field)        { l.add("info", msg, f) }
func (l recordLogger) Warn(msg string, f ...observability.Field)        { l.add("warn", msg, f) }
func (l recordLogger) Error(msg string, f ...observability.Field)       { l.add("error", msg, f) }
func (l recordLogger) With(...observability.Field) observability.Logger { return l }

func TestGojaEngine_ContextCancellation(t *testing.T) {
	engine := NewEngine(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	if _, err := engine.Execute(ctx, "while (true) {}"); err == nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline error, got %v", err)
	}

	if _, err := engine.Execute(context.Background(), "1 + 1"); err != nil {
		t.Fatalf("engine should recover after cancellation, got %v", err)
	}
}

func TestGojaEngine_ImmediateCancel(t *testing.T) {
	engine := NewEngine(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Execute(ctx, "42"); err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled error, got %v", err)
	}
}

func TestGojaEngine_TableView(t *testing.T) {
	log := newRecordLogger()
	engine := NewEngine(log)
	if err := engine.RegisterTable(GridView{{"a", "b"}, {"c", "d"}, {"e", "f"}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := engine.Execute(context.Background(), `
		console.log("rows " + table.rows);
		table.rows * 10 + table.columns + ":" + table.text(1, 1) + table.text(9, 9)`)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "32:d" {
		t.Fatalf("result = %v, want 32:d", got)
	}
	if len(*log.entries) != 1 || (*log.entries)[0].fields["message"] != "rows 3" {
		t.Fatalf("log entries = %+v", *log.entries)
	}
}

func TestPolicies(t *testing.T) {
	engine := NewEngine(nil)
	if err := engine.RegisterTable(GridView{{"Name", "Total"}, {"x", "-3"}, {"y", "4"}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	p, err := engine.Policies(context.Background(), `
		function align(row, col) { return col === table.columns - 1 ? "right" : "left"; }
		function rowStyle(row) {
			if (row === 0) return {fill: "#cccccc", font: "Helvetica-Bold"};
			return {fill: row % 2 === 0, stroke: "black", fontSize: 9};
		}
		function cellStyle(row, col) {
			if (row > 0 && col === 1 && table.text(row, col).startsWith("-")) {
				return {textColor: "red", lineWidth: 0.5};
			}
			return null;
		}`)
	if err != nil {
		t.Fatalf("policies: %v", err)
	}
	if n := len(p.Options()); n != 3 {
		t.Fatalf("options = %d, want 3", n)
	}
	if p.Align(1, 0) != document.AlignLeft || p.Align(1, 1) != document.AlignRight {
		t.Fatalf("align = %s %s", p.Align(1, 0), p.Align(1, 1))
	}
	wantRows := []table.RowStyle{
		{HasFill: true, FillColor: builder.MustParseColor("#cccccc"), Font: "Helvetica-Bold"},
		{HasStroke: true, StrokeColor: builder.MustParseColor("black"), FontSize: 9},
		{HasFill: true, HasStroke: true, StrokeColor: builder.MustParseColor("black"), FontSize: 9},
	}
	for row, want := range wantRows {
		if diff := cmp.Diff(want, p.RowStyle(row)); diff != "" {
			t.Fatalf("row %d style (-want +got):\n%s", row, diff)
		}
	}
	want := table.CellStyle{TextColor: builder.MustParseColor("red"), LineWidth: 0.5}
	if diff := cmp.Diff(want, p.CellStyle(1, 1)); diff != "" {
		t.Fatalf("cell style (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(table.CellStyle{}, p.CellStyle(2, 1)); diff != "" {
		t.Fatalf("null style (-want +got):\n%s", diff)
	}
	if p.Err() != nil {
		t.Fatalf("unexpected hook error: %v", p.Err())
	}
}

func TestPolicies_Errors(t *testing.T) {
	engine := NewEngine(nil)
	if _, err := engine.Policies(context.Background(), "var x = 1;"); !errors.Is(err, ErrNoPolicy) {
		t.Fatalf("err = %v, want ErrNoPolicy", err)
	}
	if _, err := engine.Policies(context.Background(), "function ("); err == nil {
		t.Fatalf("expected syntax error")
	}

	log := newRecordLogger()
	engine = NewEngine(log)
	p, err := engine.Policies(context.Background(), `
		function align(row, col) { if (row === 1) throw new Error("boom"); return "sideways"; }
		function rowStyle(row) { return {fontSize: "big"}; }`)
	if err != nil {
		t.Fatalf("policies: %v", err)
	}
	if p.Align(1, 0) != document.AlignCenter {
		t.Fatalf("failing hook should fall back to center")
	}
	if p.Align(0, 0) != document.AlignCenter {
		t.Fatalf("unknown alignment should fall back to center")
	}
	if diff := cmp.Diff(table.RowStyle{}, p.RowStyle(0)); diff != "" {
		t.Fatalf("bad style should fall back (-want +got):\n%s", diff)
	}
	if p.Err() == nil {
		t.Fatalf("expected hook error")
	}
	if len(*log.entries) != 3 {
		t.Fatalf("warnings = %d, want 3", len(*log.entries))
	}
	if n := len(p.Options()); n != 2 {
		t.Fatalf("options = %d, want 2", n)
	}
}

func TestPolicies_HookTimeout(t *testing.T) {
	engine := NewEngine(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	p, err := engine.Policies(ctx, `function cellStyle() { while (true) {} }`)
	if err != nil {
		t.Fatalf("policies: %v", err)
	}
	p.CellStyle(0, 0)
	if !errors.Is(p.Err(), context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", p.Err())
	}
}
