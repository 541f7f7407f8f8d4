package ingest

import (
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/pdftable/document"
	"github.com/wudi/pdftable/table"
)

// maxColspan caps colspan attributes so a hostile document cannot blow up
// the grid.
const maxColspan = 64

// FromHTML returns the top-level <table> elements of the document read from
// r. A cell spanning several columns becomes the cell followed by empty
// cells. The first embedded data: URI image of a cell becomes its image.
func FromHTML(r io.Reader) ([]Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var tables []Table
	var walk func(*html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			t, err := htmlTable(n)
			if err != nil {
				return err
			}
			if len(t.Rows) > 0 {
				tables = append(tables, t)
			}
			return nil
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc); err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, ErrNoTable
	}
	return tables, nil
}

func htmlTable(n *html.Node) (Table, error) {
	var t Table
	var rowErr error
	var collect func(*html.Node, bool)
	collect = func(n *html.Node, inHead bool) {
		for c := n.FirstChild; c != nil && rowErr == nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Thead:
				collect(c, true)
			case atom.Tbody, atom.Tfoot:
				collect(c, false)
			case atom.Tr:
				row, aligns, allHeader, err := htmlRow(c)
				if err != nil {
					rowErr = fmt.Errorf("row %d: %w", len(t.Rows), err)
					return
				}
				if len(t.Rows) == 0 {
					t.HasHeader = inHead || (allHeader && len(row) > 0)
					t.Aligns = aligns
				}
				t.Rows = append(t.Rows, row)
			}
		}
	}
	collect(n, false)
	if rowErr != nil {
		return Table{}, rowErr
	}
	t.Rows = normalize(t.Rows)
	return t, nil
}

func htmlRow(tr *html.Node) (table.Row, []document.Align, bool, error) {
	var row table.Row
	var aligns []document.Align
	allHeader := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		if c.DataAtom == atom.Td {
			allHeader = false
		}
		cell := table.Cell{Text: cellText(c)}
		if src, ok := firstImage(c); ok {
			data, err := decodeDataURI(src)
			if err != nil {
				return nil, nil, false, err
			}
			cell.Image = data
		}
		row = append(row, cell)
		align := cellAlign(c)
		aligns = append(aligns, align)
		for i := 1; i < colspan(c); i++ {
			row = append(row, table.Cell{})
			aligns = append(aligns, align)
		}
	}
	return row, aligns, allHeader, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func colspan(n *html.Node) int {
	v, ok := attr(n, "colspan")
	if !ok {
		return 1
	}
	span, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || span < 1 {
		return 1
	}
	if span > maxColspan {
		return maxColspan
	}
	return span
}

// cellAlign reads the align attribute or a text-align declaration.
func cellAlign(n *html.Node) document.Align {
	if v, ok := attr(n, "align"); ok {
		if a, err := table.ParseAlign(v); err == nil {
			return a
		}
	}
	style, _ := attr(n, "style")
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(prop), "text-align") {
			continue
		}
		if a, err := table.ParseAlign(val); err == nil {
			return a
		}
	}
	return ""
}

// cellText extracts the text of a cell. Whitespace runs collapse to one
// space and <br> becomes a line break. Nested tables are skipped.
func cellText(n *html.Node) string {
	var lines []string
	var cur strings.Builder
	flush := func() {
		lines = append(lines, strings.Join(strings.Fields(cur.String()), " "))
		cur.Reset()
	}
	var f func(*html.Node)
	f = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			cur.WriteString(n.Data)
			return
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			flush()
			return
		case n.Type == html.ElementNode && n.DataAtom == atom.Table:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	flush()
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func firstImage(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		if src, ok := attr(n, "src"); ok && strings.HasPrefix(src, "data:") {
			return src, true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Table {
			continue
		}
		if src, ok := firstImage(c); ok {
			return src, true
		}
	}
	return "", false
}

func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data uri")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data uri %q is not base64", meta)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return data, nil
}
