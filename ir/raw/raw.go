package raw

import "fmt"

// ObjectRef uniquely identifies an indirect PDF object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Object is the base interface for all raw PDF objects.
type Object interface {
	Type() string
	IsIndirect() bool
}

// Table is the set of indirect objects that make up a document body,
// keyed by reference. The writer emits them in ascending object number.
type Table map[ObjectRef]Object

// Allocator hands out sequential object references starting at 1.
type Allocator struct {
	next int
}

// Next returns a fresh reference with generation 0.
func (a *Allocator) Next() ObjectRef {
	if a.next == 0 {
		a.next = 1
	}
	ref := ObjectRef{Num: a.next}
	a.next++
	return ref
}

// Count reports how many references were allocated.
func (a *Allocator) Count() int {
	if a.next == 0 {
		return 0
	}
	return a.next - 1
}
