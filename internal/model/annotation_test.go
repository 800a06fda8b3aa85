package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotations(t *testing.T) {
	notes := NewAnnotations()
	notes.AddPure(12)
	notes.AddPure(3)
	notes.AddPure(12)
	notes.AddPure(-1)

	assert.Equal(t, 2, notes.Len())
	assert.Equal(t, []int{3, 12}, notes.Offsets())

	kind, ok := notes.At(3)
	assert.True(t, ok)
	assert.Equal(t, AnnotationPure, kind)
	assert.Equal(t, "pure", kind.String())

	clone := notes.Clone()

	kind, ok = clone.Take(3)
	assert.True(t, ok)
	assert.Equal(t, AnnotationPure, kind)

	_, ok = clone.Take(3)
	assert.False(t, ok)
	assert.Equal(t, 1, clone.Len())
	assert.Equal(t, 2, notes.Len())
}

func TestAnnotations_Nil(t *testing.T) {
	var notes *Annotations

	_, ok := notes.At(0)
	assert.False(t, ok)
	assert.Zero(t, notes.Len())
	assert.Nil(t, notes.Offsets())
	assert.Zero(t, notes.Clone().Len())
	assert.Equal(t, "unknown", AnnotationKind(0).String())
}
