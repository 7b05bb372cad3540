package tensor

import "fmt"

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a simple backend for testing.
// It implements all operations naively, one element at a time, for
// correctness verification of faster backends.
type MockBackend struct{}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return CPU
}

// Crop copies a box out of x element by element.
func (m *MockBackend) Crop(x *RawTensor, start []int, size Shape) *RawTensor {
	if err := CheckRegion(x.Shape(), start, size); err != nil {
		panic(fmt.Sprintf("crop: %v", err))
	}
	fullStart, fullSize := FullRegion(x.Shape(), start, size)

	result, err := NewRaw(fullSize, x.DType(), m.Device())
	if err != nil {
		panic(fmt.Sprintf("crop: %v", err))
	}
	m.copyBox(result, x, make([]int, len(fullSize)), fullStart, fullSize)
	return result
}

// Pad allocates a zeroed tensor of the padded shape and copies x into its interior.
func (m *MockBackend) Pad(x *RawTensor, widths []PadWidth) *RawTensor {
	padded, err := PaddedShape(x.Shape(), widths)
	if err != nil {
		panic(err)
	}
	result, err := NewRaw(padded, x.DType(), m.Device())
	if err != nil {
		panic(fmt.Sprintf("pad: %v", err))
	}

	before := make([]int, len(widths))
	for i, w := range widths {
		before[i] = w.Before
	}
	dstStart, _ := FullRegion(padded, before, x.Shape().Trailing(len(widths)))
	m.copyBox(result, x, dstStart, make([]int, len(x.Shape())), x.Shape())
	return result
}

// Paste writes src into dst at start element by element.
func (m *MockBackend) Paste(dst, src *RawTensor, start []int) {
	if dst.DType() != src.DType() {
		panic(fmt.Sprintf("paste: dtype %s into %s", src.DType(), dst.DType()))
	}
	if len(src.Shape()) != len(dst.Shape()) {
		panic(fmt.Sprintf("paste: %dD source into %dD destination", len(src.Shape()), len(dst.Shape())))
	}
	n := len(start)
	if !src.Shape().Leading(n).Equal(dst.Shape().Leading(n)) {
		panic(fmt.Sprintf("paste: leading dims %v vs %v", src.Shape().Leading(n), dst.Shape().Leading(n)))
	}
	if err := CheckRegion(dst.Shape(), start, src.Shape().Trailing(n)); err != nil {
		panic(fmt.Sprintf("paste: %v", err))
	}
	dstStart, _ := FullRegion(dst.Shape(), start, src.Shape().Trailing(n))
	m.copyBox(dst, src, dstStart, make([]int, len(src.Shape())), src.Shape())
}

// copyBox copies every element of box from src (at srcStart) to dst (at dstStart).
func (m *MockBackend) copyBox(dst, src *RawTensor, dstStart, srcStart []int, box Shape) {
	esize := src.DType().Size()
	idx := make([]int, len(box))
	for flat := 0; flat < box.NumElements(); flat++ {
		box.Unravel(flat, idx)
		so, do := 0, 0
		for d := range box {
			so += (srcStart[d] + idx[d]) * src.Strides()[d]
			do += (dstStart[d] + idx[d]) * dst.Strides()[d]
		}
		copy(dst.Data()[do*esize:(do+1)*esize], src.Data()[so*esize:(so+1)*esize])
	}
}
