// Package writer serializes a semantic document into PDF bytes.
package writer

import (
	"context"
	"io"

	"github.com/wudi/pdftable/ir/raw"
	"github.com/wudi/pdftable/ir/semantic"
)

type PDFVersion string

const (
	PDF14 PDFVersion = "1.4"
	PDF17 PDFVersion = "1.7"
)

// Config controls serialization.
type Config struct {
	Version PDFVersion
	// Compression is the flate level applied to content, image and font
	// streams; zero leaves streams uncompressed.
	Compression int
	// Deterministic derives the trailer /ID from the document content
	// instead of the wall clock.
	Deterministic bool
}

type Writer interface {
	Write(ctx context.Context, doc *semantic.Document, w io.Writer, cfg Config) error
}

// Interceptor observes every indirect object as it is serialized. An error
// aborts the write.
type Interceptor interface {
	BeforeWrite(ctx context.Context, ref raw.ObjectRef, obj raw.Object) error
	AfterWrite(ctx context.Context, ref raw.ObjectRef, bytesWritten int64) error
}

type WriterBuilder struct{ interceptors []Interceptor }

func (b *WriterBuilder) WithInterceptor(i Interceptor) *WriterBuilder {
	b.interceptors = append(b.interceptors, i)
	return b
}

func (b *WriterBuilder) Build() Writer { return &impl{interceptors: b.interceptors} }

// New returns a Writer without interceptors.
func New() Writer { return (&WriterBuilder{}).Build() }
