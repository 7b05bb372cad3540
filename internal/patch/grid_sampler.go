package patch

import (
	"fmt"

	"github.com/born-ml/volpatch/internal/tensor"
)

// GridSampler splits one array into grid patches and stitches processed
// patches back together.
//
// Sampling covers the trailing len(patchShape) dimensions; leading
// batch/channel dimensions ride along whole in every patch. Iteration is a
// single pass: build a new sampler to iterate again.
type GridSampler[T tensor.DType, B tensor.Backend] struct {
	full    tensor.Shape // shape of the unpadded input, leading dims included
	padded  *tensor.Tensor[T, B]
	coords  *GridCoordinates
	shrink  Coordinate // center of the valid region inside a patch
	cursor  int
	backend B
}

// GridOption configures a GridSampler.
type GridOption func(*gridOptions)

type gridOptions struct {
	valid tensor.Shape
}

// WithValidShape sets the region of each patch kept on Restore.
// Defaults to the patch shape.
func WithValidShape(valid tensor.Shape) GridOption {
	return func(o *gridOptions) {
		o.valid = valid.Clone()
	}
}

// NewGridSampler tiles data with patches of patchShape.
//
// When the valid shape is smaller than the patch shape the data is zero
// padded along the sampled dimensions so that border tiles still get a full
// patch of context.
func NewGridSampler[T tensor.DType, B tensor.Backend](data *tensor.Tensor[T, B], patchShape tensor.Shape, opts ...GridOption) (*GridSampler[T, B], error) {
	options := &gridOptions{valid: patchShape.Clone()}
	for _, opt := range opts {
		opt(options)
	}

	full := data.Shape()
	if len(full) < len(patchShape) {
		return nil, fmt.Errorf("%w: %d-dim data for %d-dim patch", ErrShapeMismatch, len(full), len(patchShape))
	}
	coords, err := NewGridCoordinates(full.Trailing(len(patchShape)), patchShape, options.valid)
	if err != nil {
		return nil, err
	}

	padded := data
	if !options.valid.Equal(patchShape) {
		padded = data.Pad(coords.Padding())
	}

	shrink := CenterOf(options.valid)
	for d, w := range coords.Padding() {
		shrink[d] += w.Before
	}

	return &GridSampler[T, B]{
		full:    full.Clone(),
		padded:  padded,
		coords:  coords,
		shrink:  shrink,
		backend: data.Backend(),
	}, nil
}

// Len returns the number of patches in the grid.
func (s *GridSampler[T, B]) Len() int {
	return s.coords.Len()
}

// Next returns the next patch in grid order, or false once all have been produced.
func (s *GridSampler[T, B]) Next() (*tensor.Tensor[T, B], bool) {
	if s.cursor >= s.coords.Len() {
		return nil, false
	}
	center := s.coords.At(s.cursor)
	s.cursor++
	return CentralCropTensor(s.padded, center, s.coords.patch), true
}

// Restore reassembles patches, one per grid coordinate in grid order, into
// an array of restoreShape. A nil restoreShape means the shape of the data
// the sampler was built from.
//
// The leading dimensions of restoreShape may differ from the input data but
// must match those of the patches; its trailing dimensions must match the
// input. Each patch contributes only its central valid-shape region. Where
// tiles overlap the later patch overwrites the earlier one.
func (s *GridSampler[T, B]) Restore(patches []*tensor.Tensor[T, B], restoreShape tensor.Shape) (*tensor.Tensor[T, B], error) {
	if len(patches) == 0 {
		return nil, fmt.Errorf("%w: no patches to restore", ErrShapeMismatch)
	}
	if len(patches) != s.coords.Len() {
		return nil, fmt.Errorf("%w: got %d patches for %d coordinates", ErrShapeMismatch, len(patches), s.coords.Len())
	}
	if restoreShape == nil {
		restoreShape = s.full
	}

	rank := len(s.coords.patch)
	if len(restoreShape) < rank || !restoreShape.Trailing(rank).Equal(s.coords.original) {
		return nil, fmt.Errorf("%w: restore shape %v does not end in %v", ErrShapeMismatch, restoreShape, s.coords.original)
	}
	if err := restoreShape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: restore shape: %v", ErrShapeMismatch, err)
	}
	lead := restoreShape.Leading(rank)
	for i, p := range patches {
		shape := p.Shape()
		if len(shape) != len(restoreShape) || !shape.Trailing(rank).Equal(s.coords.patch) || !shape.Leading(rank).Equal(lead) {
			return nil, fmt.Errorf("%w: patch %d has shape %v, want %v", ErrShapeMismatch, i, shape, lead.Concat(s.coords.patch))
		}
	}

	out := tensor.Zeros[T, B](restoreShape, s.backend)
	for i, p := range patches {
		block := p
		if !s.coords.valid.Equal(s.coords.patch) {
			block = CentralCropTensor(p, s.shrink, s.coords.valid)
		}
		out.Paste(block, Origin(s.coords.ValidCenter(i), s.coords.valid))
	}
	return out, nil
}

// Coordinates returns the grid generator.
func (s *GridSampler[T, B]) Coordinates() *GridCoordinates {
	return s.coords
}

// Padded returns the padded array patches are cropped from.
func (s *GridSampler[T, B]) Padded() *tensor.Tensor[T, B] {
	return s.padded
}

// OriginalShape returns the unpadded shape of the sampled dimensions.
func (s *GridSampler[T, B]) OriginalShape() tensor.Shape {
	return s.coords.OriginalShape()
}

// PatchShape returns the shape of the sampled dimensions of each patch.
func (s *GridSampler[T, B]) PatchShape() tensor.Shape {
	return s.coords.PatchShape()
}

// ValidShape returns the region of each patch kept on Restore.
func (s *GridSampler[T, B]) ValidShape() tensor.Shape {
	return s.coords.ValidShape()
}
