package writer

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/wudi/pdftable/ir/raw"
	"github.com/wudi/pdftable/ir/semantic"
)

// ErrEmptyDocument is returned when a document has no pages.
var ErrEmptyDocument = errors.New("document has no pages")

type impl struct{ interceptors []Interceptor }

func serializeObject(ref raw.ObjectRef, obj raw.Object) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
	buf.Write(serializePrimitive(obj))
	buf.WriteString("\nendobj\n")
	return buf.Bytes()
}

func (w *impl) Write(ctx context.Context, doc *semantic.Document, out io.Writer, cfg Config) error {
	if doc == nil || len(doc.Pages) == 0 {
		return ErrEmptyDocument
	}
	ob := newObjectBuilder(doc, cfg)
	objects, catalogRef, infoRef, err := ob.Build()
	if err != nil {
		return err
	}

	version := cfg.Version
	if version == "" {
		version = PDF17
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n%%\xE2\xE3\xCF\xD3\n", version)

	ordered := make([]raw.ObjectRef, 0, len(objects))
	for ref := range objects {
		ordered = append(ordered, ref)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Num < ordered[j].Num })

	offsets := make(map[int]int64, len(ordered))
	for _, ref := range ordered {
		if err := ctx.Err(); err != nil {
			return err
		}
		obj := objects[ref]
		for _, ic := range w.interceptors {
			if err := ic.BeforeWrite(ctx, ref, obj); err != nil {
				return fmt.Errorf("interceptor before %s: %w", ref, err)
			}
		}
		offsets[ref.Num] = int64(buf.Len())
		serialized := serializeObject(ref, obj)
		buf.Write(serialized)
		for _, ic := range w.interceptors {
			if err := ic.AfterWrite(ctx, ref, int64(len(serialized))); err != nil {
				return fmt.Errorf("interceptor after %s: %w", ref, err)
			}
		}
	}

	xrefOffset := buf.Len()
	maxObjNum := ordered[len(ordered)-1].Num
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxObjNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxObjNum; i++ {
		if off, ok := offsets[i]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}

	id := fileID(buf.Bytes(), cfg)
	trailer := raw.Dict().
		Set("Size", raw.Int(int64(maxObjNum+1))).
		Set("Root", raw.Ref(catalogRef)).
		Set("ID", raw.Array(raw.HexStr(id), raw.HexStr(id)))
	if infoRef != nil {
		trailer.Set("Info", raw.Ref(*infoRef))
	}
	buf.WriteString("trailer\n")
	buf.Write(serializePrimitive(trailer))
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err = out.Write(buf.Bytes())
	return err
}

// fileID hashes the serialized body. The current time is mixed in unless
// cfg.Deterministic is set.
func fileID(body []byte, cfg Config) []byte {
	h := xxhash.New()
	_, _ = h.Write(body)
	first := h.Sum64()
	if !cfg.Deterministic {
		var ts [8]byte
		binary.BigEndian.PutUint64(ts[:], uint64(time.Now().UnixNano()))
		_, _ = h.Write(ts[:])
	}
	_, _ = h.WriteString("pdftable")
	second := h.Sum64()
	id := make([]byte, 16)
	binary.BigEndian.PutUint64(id[:8], first)
	binary.BigEndian.PutUint64(id[8:], second)
	return id
}
