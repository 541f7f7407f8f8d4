package raw

import "sort"

// NameObj is a PDF name such as /Type.
type NameObj struct{ Val string }

func (n NameObj) Type() string     { return "name" }
func (n NameObj) IsIndirect() bool { return false }
func (n NameObj) Value() string    { return n.Val }

// NumberObj holds an integer or real value.
type NumberObj struct {
	I     int64
	F     float64
	IsInt bool
}

func (n NumberObj) Type() string     { return "number" }
func (n NumberObj) IsIndirect() bool { return false }
func (n NumberObj) Int() int64       { return n.I }
func (n NumberObj) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}
func (n NumberObj) IsInteger() bool { return n.IsInt }

// BoolObj is true or false.
type BoolObj struct{ V bool }

func (b BoolObj) Type() string     { return "boolean" }
func (b BoolObj) IsIndirect() bool { return false }
func (b BoolObj) Value() bool      { return b.V }

// StringObj is a literal string; Hex selects <...> serialization.
type StringObj struct {
	Bytes []byte
	Hex   bool
}

func (s StringObj) Type() string     { return "string" }
func (s StringObj) IsIndirect() bool { return false }
func (s StringObj) Value() []byte    { return s.Bytes }

// ArrayObj is an ordered list of objects.
type ArrayObj struct{ Items []Object }

func (a *ArrayObj) Type() string     { return "array" }
func (a *ArrayObj) IsIndirect() bool { return false }
func (a *ArrayObj) Len() int         { return len(a.Items) }
func (a *ArrayObj) Append(o ...Object) {
	a.Items = append(a.Items, o...)
}

// DictObj maps names to objects.
type DictObj struct{ KV map[string]Object }

func (d *DictObj) Type() string     { return "dict" }
func (d *DictObj) IsIndirect() bool { return false }
func (d *DictObj) Len() int         { return len(d.KV) }

func (d *DictObj) Get(key string) (Object, bool) {
	o, ok := d.KV[key]
	return o, ok
}

// Set stores value under key; a nil value removes the key.
func (d *DictObj) Set(key string, value Object) *DictObj {
	if d.KV == nil {
		d.KV = make(map[string]Object)
	}
	if value == nil {
		delete(d.KV, key)
		return d
	}
	d.KV[key] = value
	return d
}

// Keys returns the dictionary keys in sorted order.
func (d *DictObj) Keys() []string {
	keys := make([]string, 0, len(d.KV))
	for k := range d.KV {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StreamObj is a dictionary followed by (possibly encoded) data.
type StreamObj struct {
	Dict *DictObj
	Data []byte
}

func (s *StreamObj) Type() string     { return "stream" }
func (s *StreamObj) IsIndirect() bool { return false }
func (s *StreamObj) Length() int64    { return int64(len(s.Data)) }

// RefObj points at an indirect object.
type RefObj struct{ R ObjectRef }

func (r RefObj) Type() string     { return "ref" }
func (r RefObj) IsIndirect() bool { return true }
func (r RefObj) Ref() ObjectRef   { return r.R }

func Name(v string) NameObj                  { return NameObj{Val: v} }
func Int(i int64) NumberObj                  { return NumberObj{I: i, IsInt: true} }
func Real(f float64) NumberObj               { return NumberObj{F: f} }
func Bool(v bool) BoolObj                    { return BoolObj{V: v} }
func Str(b []byte) StringObj                 { return StringObj{Bytes: b} }
func HexStr(b []byte) StringObj              { return StringObj{Bytes: b, Hex: true} }
func Array(items ...Object) *ArrayObj        { return &ArrayObj{Items: items} }
func Dict() *DictObj                         { return &DictObj{KV: make(map[string]Object)} }
func Stream(d *DictObj, b []byte) *StreamObj { return &StreamObj{Dict: d, Data: b} }
func Ref(ref ObjectRef) RefObj               { return RefObj{R: ref} }

// Reals converts a float slice into an array of real numbers.
func Reals(vals ...float64) *ArrayObj {
	arr := &ArrayObj{Items: make([]Object, 0, len(vals))}
	for _, v := range vals {
		arr.Items = append(arr.Items, Real(v))
	}
	return arr
}
