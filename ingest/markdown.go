package ingest

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/wudi/pdftable/document"
	"github.com/wudi/pdftable/table"
)

// FromMarkdown returns every GitHub-flavoured pipe table in source, in
// document order. Inline formatting is dropped and only the text is kept.
func FromMarkdown(source []byte) ([]Table, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(source))

	var tables []Table
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		tn, ok := n.(*east.Table)
		if !ok {
			return ast.WalkContinue, nil
		}
		tables = append(tables, markdownTable(tn, source))
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, ErrNoTable
	}
	return tables, nil
}

func markdownTable(tn *east.Table, source []byte) Table {
	t := Table{Aligns: make([]document.Align, len(tn.Alignments))}
	for i, a := range tn.Alignments {
		switch a {
		case east.AlignLeft:
			t.Aligns[i] = document.AlignLeft
		case east.AlignCenter:
			t.Aligns[i] = document.AlignCenter
		case east.AlignRight:
			t.Aligns[i] = document.AlignRight
		}
	}
	for child := tn.FirstChild(); child != nil; child = child.NextSibling() {
		var row table.Row
		for c := child.FirstChild(); c != nil; c = c.NextSibling() {
			if _, ok := c.(*east.TableCell); ok {
				row = append(row, table.TextCell(inlineText(c, source)))
			}
		}
		if _, ok := child.(*east.TableHeader); ok {
			t.HasHeader = true
		}
		t.Rows = append(t.Rows, row)
	}
	t.Rows = normalize(t.Rows)
	return t
}

// inlineText concatenates the text segments below n.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
