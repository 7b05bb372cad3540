package tensor

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

// Leading returns the dimensions that precede the trailing n dimensions.
// These are the batch/channel dimensions when n is the patch rank.
func (s Shape) Leading(n int) Shape {
	if n > len(s) {
		return Shape{}
	}
	return s[:len(s)-n].Clone()
}

// Trailing returns the last n dimensions.
func (s Shape) Trailing(n int) Shape {
	if n > len(s) {
		return s.Clone()
	}
	return s[len(s)-n:].Clone()
}

// Concat returns s followed by other.
func (s Shape) Concat(other Shape) Shape {
	out := make(Shape, 0, len(s)+len(other))
	out = append(out, s...)
	return append(out, other...)
}

// LessEqual reports whether s[i] <= other[i] for every dimension.
// Shapes of different rank are never comparable.
func (s Shape) LessEqual(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] > other[i] {
			return false
		}
	}
	return true
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Unravel converts a flat row-major index into a multi-index, writing into idx.
// idx must have len(s) entries.
func (s Shape) Unravel(flat int, idx []int) {
	for d := len(s) - 1; d >= 0; d-- {
		idx[d] = flat % s[d]
		flat /= s[d]
	}
}

// PadWidth is the amount of padding added before and after one dimension.
type PadWidth struct {
	Before int
	After  int
}

// Total returns Before + After.
func (p PadWidth) Total() int {
	return p.Before + p.After
}

// PaddedShape returns s grown by widths along its trailing len(widths) dimensions.
func PaddedShape(s Shape, widths []PadWidth) (Shape, error) {
	if len(widths) > len(s) {
		return nil, fmt.Errorf("pad: %d pad widths for %dD shape %v", len(widths), len(s), s)
	}
	out := s.Clone()
	lead := len(s) - len(widths)
	for i, w := range widths {
		if w.Before < 0 || w.After < 0 {
			return nil, fmt.Errorf("pad: negative width %+v at dimension %d", w, lead+i)
		}
		out[lead+i] += w.Total()
	}
	return out, nil
}
