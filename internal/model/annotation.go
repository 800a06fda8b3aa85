package model

import "sort"

// AnnotationKind is the kind of out-of-band marker attached to a source offset.
type AnnotationKind int

const (
	// AnnotationPure marks a call expression as free of side effects.
	AnnotationPure AnnotationKind = iota + 1
)

// PureMarker is the comment the printer emits for AnnotationPure.
const PureMarker = "/*#__PURE__*/"

func (k AnnotationKind) String() string {
	switch k {
	case AnnotationPure:
		return "pure"
	default:
		return "unknown"
	}
}

// AnnotationSink receives annotations while a pass runs.
type AnnotationSink interface {
	AddPure(offset int)
}

// Annotations is the position-keyed side-table filled by a pipeline run and
// consumed by the printer. It is never read back by the passes.
type Annotations struct {
	byOffset map[int]AnnotationKind
}

// NewAnnotations returns an empty side-table.
func NewAnnotations() *Annotations {
	return &Annotations{byOffset: make(map[int]AnnotationKind)}
}

// AddPure implements AnnotationSink. Negative offsets are ignored.
func (a *Annotations) AddPure(offset int) {
	if offset < 0 {
		return
	}

	a.byOffset[offset] = AnnotationPure
}

// At returns the annotation recorded at offset.
func (a *Annotations) At(offset int) (AnnotationKind, bool) {
	if a == nil {
		return 0, false
	}

	k, ok := a.byOffset[offset]

	return k, ok
}

// Len returns the number of annotated offsets.
func (a *Annotations) Len() int {
	if a == nil {
		return 0
	}

	return len(a.byOffset)
}

// Offsets returns the annotated offsets in ascending order.
func (a *Annotations) Offsets() []int {
	if a == nil {
		return nil
	}

	offsets := make([]int, 0, len(a.byOffset))
	for off := range a.byOffset {
		offsets = append(offsets, off)
	}

	sort.Ints(offsets)

	return offsets
}

// Clone returns an independent copy, so a consumer can take entries without
// affecting the owner.
func (a *Annotations) Clone() *Annotations {
	c := NewAnnotations()
	if a == nil {
		return c
	}

	for off, k := range a.byOffset {
		c.byOffset[off] = k
	}

	return c
}

// Take returns and removes the annotation at offset.
func (a *Annotations) Take(offset int) (AnnotationKind, bool) {
	k, ok := a.At(offset)
	if ok {
		delete(a.byOffset, offset)
	}

	return k, ok
}
