package tensor

import "fmt"

// Backend defines the array primitives the samplers need from a compute backend.
//
// All region arguments address the trailing len(start) dimensions of a tensor;
// leading (batch/channel) dimensions are always taken whole. Every operation
// returns or writes owned memory, never a view.
//
// Implementations:
//   - CPU: Pure Go, byte-level row copies (internal/backend/cpu)
//   - Mock: element-by-element reference used in tests
type Backend interface {
	// Crop copies the box [start, start+size) of x into a new tensor.
	// Panics if the box does not fit inside x.
	Crop(x *RawTensor, start []int, size Shape) *RawTensor

	// Pad returns a copy of x with zeros added around its trailing
	// len(widths) dimensions.
	Pad(x *RawTensor, widths []PadWidth) *RawTensor

	// Paste overwrites the box of dst starting at start with src.
	// dst and src must share dtype and leading dimensions.
	Paste(dst, src *RawTensor, start []int)

	// Metadata
	Name() string
	Device() Device
}

// CheckRegion verifies that the box [start, start+size) fits inside the
// trailing dimensions of shape.
func CheckRegion(shape Shape, start []int, size Shape) error {
	if len(start) != len(size) {
		return fmt.Errorf("region: start has %d dims, size has %d", len(start), len(size))
	}
	if len(start) > len(shape) {
		return fmt.Errorf("region: %dD region in %dD tensor", len(start), len(shape))
	}
	lead := len(shape) - len(start)
	for i := range start {
		extent := shape[lead+i]
		if size[i] <= 0 || start[i] < 0 || start[i]+size[i] > extent {
			return fmt.Errorf("region: span [%d, %d) outside dimension %d of size %d",
				start[i], start[i]+size[i], lead+i, extent)
		}
	}
	return nil
}

// FullRegion expands a trailing region to cover every dimension of shape:
// leading dimensions start at 0 and keep their full extent.
func FullRegion(shape Shape, start []int, size Shape) ([]int, Shape) {
	lead := len(shape) - len(start)
	fullStart := make([]int, len(shape))
	fullSize := shape.Clone()
	copy(fullStart[lead:], start)
	copy(fullSize[lead:], size)
	return fullStart, fullSize
}
