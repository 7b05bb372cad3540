package patch

import (
	"fmt"

	"github.com/born-ml/volpatch/internal/tensor"
)

// Coordinate is the center of a patch, one entry per patch dimension.
type Coordinate []int

// Margin is the extent of a patch on either side of its center along one
// dimension: Lower + 1 + Upper equals the patch extent.
type Margin struct {
	Lower int
	Upper int
}

// MarginOf returns the per-dimension margins of shape.
// Lower is (s-1)/2, so even extents put one more element above the center.
func MarginOf(shape tensor.Shape) []Margin {
	margins := make([]Margin, len(shape))
	for d, s := range shape {
		lower := (s - 1) / 2
		margins[d] = Margin{Lower: lower, Upper: s - 1 - lower}
	}
	return margins
}

// CenterOf returns the center coordinate of a box with the given shape
// whose first element is at the origin.
func CenterOf(shape tensor.Shape) Coordinate {
	center := make(Coordinate, len(shape))
	for d, m := range MarginOf(shape) {
		center[d] = m.Lower
	}
	return center
}

// Origin returns the first index covered by a patch of the given shape
// centered at center. It is the inverse of CentralCrop's placement:
// pasting a crop at Origin(c, s) puts every element back where it came from.
func Origin(center Coordinate, shape tensor.Shape) []int {
	start := make([]int, len(center))
	for d, m := range MarginOf(shape) {
		start[d] = center[d] - m.Lower
	}
	return start
}

// CentralCrop copies the patch of the given shape centered at center out of
// x. The patch covers the trailing len(shape) dimensions; leading dimensions
// are kept whole.
//
// Panics with an error wrapping ErrOutOfBounds if the patch does not fit.
func CentralCrop(backend tensor.Backend, x *tensor.RawTensor, center Coordinate, shape tensor.Shape) *tensor.RawTensor {
	start, err := cropStart(x.Shape(), center, shape)
	if err != nil {
		panic(err)
	}
	return backend.Crop(x, start, shape)
}

// CentralCropTensor is CentralCrop for typed tensors.
func CentralCropTensor[T tensor.DType, B tensor.Backend](x *tensor.Tensor[T, B], center Coordinate, shape tensor.Shape) *tensor.Tensor[T, B] {
	return tensor.New[T, B](CentralCrop(x.Backend(), x.Raw(), center, shape), x.Backend())
}

func cropStart(full tensor.Shape, center Coordinate, shape tensor.Shape) ([]int, error) {
	if len(center) != len(shape) || len(shape) > len(full) {
		return nil, fmt.Errorf("%w: %d-dim center for %d-dim patch in %d-dim array",
			ErrOutOfBounds, len(center), len(shape), len(full))
	}
	start := Origin(center, shape)
	if err := tensor.CheckRegion(full, start, shape); err != nil {
		return nil, fmt.Errorf("%w: center %v, patch %v: %v", ErrOutOfBounds, center, shape, err)
	}
	return start, nil
}
