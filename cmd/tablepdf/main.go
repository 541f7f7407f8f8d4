// Command tablepdf lays out a table read from Markdown, HTML or CSV into a
// paginated PDF.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wudi/pdftable/document"
	"github.com/wudi/pdftable/ingest"
	"github.com/wudi/pdftable/observability"
	"github.com/wudi/pdftable/table"
)

type options struct {
	style     string
	format    string
	index     int
	csvHeader bool
	verbose   bool
	timeout   time.Duration

	output string
	title  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tablepdf: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "tablepdf",
		Short: "Lay out tables as paginated PDF",
		Long: `tablepdf reads a table from a Markdown, HTML or CSV file and lays it out
as a PDF, repeating the header row on every new page.

Use - as the input to read from standard input.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.style, "style", "s", "", "YAML style file")
	pf.StringVarP(&opts.format, "format", "f", "", "input format: markdown, html, csv or tsv (default from extension)")
	pf.IntVar(&opts.index, "table", 0, "index of the table to use when the input holds several")
	pf.BoolVar(&opts.csvHeader, "csv-header", true, "treat the first CSV record as a header row")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log page breaks and script output")
	pf.DurationVar(&opts.timeout, "script-timeout", 10*time.Second, "time budget for style scripts")

	root.AddCommand(newRenderCmd(opts), newHeightCmd(opts))
	return root
}

func newRenderCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <input>",
		Short: "Render a table to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: input name with .pdf)")
	cmd.Flags().StringVar(&opts.title, "title", "", "paragraph printed above the table")
	return cmd
}

func newHeightCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "height <input>",
		Short: "Print the height the table would occupy, in points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeight(cmd, opts, args[0])
		},
	}
}

// session is the state shared by both commands.
type session struct {
	log    observability.Logger
	style  *Style
	src    ingest.Table
	doc    *document.Document
	ctx    context.Context
	cancel context.CancelFunc
}

func newSession(cmd *cobra.Command, opts *options, input string) (*session, error) {
	l := logrus.New()
	l.SetOutput(cmd.ErrOrStderr())
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	if opts.verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	s := &session{log: observability.NewLogrus(l)}

	style, err := LoadStyle(opts.style)
	if err != nil {
		return nil, err
	}
	s.style = style
	if s.src, err = readTable(input, opts, cmd.InOrStdin()); err != nil {
		return nil, err
	}
	docOpts, err := style.DocumentOptions(s.log)
	if err != nil {
		return nil, err
	}
	if s.doc, err = document.New(docOpts...); err != nil {
		return nil, err
	}
	if err := style.ApplyFont(s.doc); err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithTimeout(ctx, opts.timeout)
	return s, nil
}

func (s *session) tableOptions() ([]table.Option, func() error, error) {
	var opts []table.Option
	if !s.src.HasHeader {
		opts = append(opts, table.WithHeaderOnTopOfNewPage(false))
	}
	styled, policies, err := s.style.TableOptions(s.ctx, s.src, s.log)
	if err != nil {
		return nil, nil, err
	}
	check := func() error {
		if policies != nil && policies.Err() != nil {
			return fmt.Errorf("style script: %w", policies.Err())
		}
		return nil
	}
	return append(opts, styled...), check, nil
}

func runRender(cmd *cobra.Command, opts *options, input string) error {
	s, err := newSession(cmd, opts, input)
	if err != nil {
		return err
	}
	defer s.cancel()

	if opts.title != "" {
		if err := s.doc.Paragraph(opts.title, document.TextOptions{}); err != nil {
			return err
		}
		s.doc.MoveDown(1)
	}
	tableOpts, check, err := s.tableOptions()
	if err != nil {
		return err
	}
	if err := table.Draw(s.doc, s.src.Rows, tableOpts...); err != nil {
		return err
	}
	if err := check(); err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		if input == "-" {
			out = "-"
		} else {
			out = strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"
		}
	}
	if out == "-" {
		_, err := s.doc.WriteTo(cmd.OutOrStdout())
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if _, err := s.doc.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.log.Info("wrote pdf",
		observability.String("path", out),
		observability.Int("pages", s.doc.PageCount()),
		observability.Int("rows", len(s.src.Rows)))
	return nil
}

func runHeight(cmd *cobra.Command, opts *options, input string) error {
	s, err := newSession(cmd, opts, input)
	if err != nil {
		return err
	}
	defer s.cancel()

	tableOpts, check, err := s.tableOptions()
	if err != nil {
		return err
	}
	h, err := table.Height(s.doc, s.src.Rows, tableOpts...)
	if err != nil {
		return err
	}
	if err := check(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", h)
	return err
}

func readTable(input string, opts *options, stdin io.Reader) (ingest.Table, error) {
	var data []byte
	var err error
	if input == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return ingest.Table{}, fmt.Errorf("read input: %w", err)
	}

	format := strings.ToLower(opts.format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(input)), ".")
	}
	var tables []ingest.Table
	switch format {
	case "md", "markdown":
		tables, err = ingest.FromMarkdown(data)
	case "html", "htm":
		tables, err = ingest.FromHTML(bytes.NewReader(data))
	case "csv", "tsv":
		csvOpts := ingest.CSVOptions{Header: opts.csvHeader}
		if format == "tsv" {
			csvOpts.Comma = '\t'
		}
		var t ingest.Table
		t, err = ingest.FromCSV(bytes.NewReader(data), csvOpts)
		tables = []ingest.Table{t}
	default:
		return ingest.Table{}, fmt.Errorf("unknown input format %q, use --format", format)
	}
	if err != nil {
		return ingest.Table{}, fmt.Errorf("%s: %w", input, err)
	}
	if opts.index < 0 || opts.index >= len(tables) {
		return ingest.Table{}, fmt.Errorf("%s: table %d requested, found %d", input, opts.index, len(tables))
	}
	return tables[opts.index], nil
}
