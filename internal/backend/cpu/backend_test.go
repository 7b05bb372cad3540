package cpu

import (
	"math/rand/v2"
	"testing"

	"github.com/born-ml/volpatch/internal/parallel"
	"github.com/born-ml/volpatch/internal/tensor"
)

// Backends under test: default config, forced goroutine per row, sequential.
func testBackends() map[string]*CPUBackend {
	return map[string]*CPUBackend{
		"default":    New(),
		"parallel":   New(WithParallel(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})),
		"sequential": New(WithParallel(parallel.Config{Enabled: false})),
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	if backend == nil {
		t.Fatal("New() returned nil")
	}
	if backend.Name() != "CPU" {
		t.Errorf("Expected name 'CPU', got '%s'", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Expected device CPU, got %v", backend.Device())
	}
}

// TestCPUBackend_CropMatchesMock crops random boxes out of random volumes and
// compares against the element-by-element reference.
func TestCPUBackend_CropMatchesMock(t *testing.T) {
	mock := tensor.NewMockBackend()
	rng := rand.New(rand.NewPCG(7, 11))

	for name, backend := range testBackends() {
		t.Run(name, func(t *testing.T) {
			for trial := 0; trial < 50; trial++ {
				shape := tensor.Shape{1 + rng.IntN(3), 2 + rng.IntN(9), 2 + rng.IntN(9), 2 + rng.IntN(9)}
				x := tensor.Iota[float64](shape, mock)

				nd := 1 + rng.IntN(3)
				spatial := shape.Trailing(nd)
				start := make([]int, nd)
				size := make(tensor.Shape, nd)
				for d := range spatial {
					size[d] = 1 + rng.IntN(spatial[d])
					start[d] = rng.IntN(spatial[d] - size[d] + 1)
				}

				got := backend.Crop(x.Raw(), start, size)
				want := mock.Crop(x.Raw(), start, size)
				if !got.Shape().Equal(want.Shape()) {
					t.Fatalf("shape %v, want %v", got.Shape(), want.Shape())
				}
				if !bytesEqual(got.Data(), want.Data()) {
					t.Fatalf("crop %v size %v of %v differs from reference", start, size, shape)
				}
			}
		})
	}
}

// TestCPUBackend_Crop tests a known 2D crop for every dtype width.
func TestCPUBackend_Crop(t *testing.T) {
	backend := New()

	f32 := tensor.Iota[float32](tensor.Shape{4, 5}, backend)
	got := tensor.New[float32](backend.Crop(f32.Raw(), []int{1, 2}, tensor.Shape{2, 3}), backend)
	want := []float32{7, 8, 9, 12, 13, 14}
	for i, v := range got.Data() {
		if v != want[i] {
			t.Errorf("float32 crop[%d] = %v, want %v", i, v, want[i])
		}
	}

	i64 := tensor.Iota[int64](tensor.Shape{4, 5}, backend)
	gotI := tensor.New[int64](backend.Crop(i64.Raw(), []int{3, 0}, tensor.Shape{1, 5}), backend)
	for i, v := range gotI.Data() {
		if v != int64(15+i) {
			t.Errorf("int64 crop[%d] = %v, want %v", i, v, 15+i)
		}
	}
}

// TestCPUBackend_CropPanics tests out-of-bounds boxes.
func TestCPUBackend_CropPanics(t *testing.T) {
	backend := New()
	x := tensor.Zeros[float32](tensor.Shape{4, 4}, backend)

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic")
		}
	}()
	backend.Crop(x.Raw(), []int{1, 3}, tensor.Shape{2, 2})
}

// TestCPUBackend_PadMatchesMock compares padding against the reference.
func TestCPUBackend_PadMatchesMock(t *testing.T) {
	mock := tensor.NewMockBackend()

	for name, backend := range testBackends() {
		t.Run(name, func(t *testing.T) {
			x := tensor.Iota[int32](tensor.Shape{2, 5, 6, 7}, mock)
			widths := []tensor.PadWidth{{Before: 1, After: 2}, {Before: 0, After: 3}, {Before: 2, After: 2}}

			got := backend.Pad(x.Raw(), widths)
			want := mock.Pad(x.Raw(), widths)
			if !got.Shape().Equal(tensor.Shape{2, 8, 9, 11}) {
				t.Fatalf("padded shape %v", got.Shape())
			}
			if !bytesEqual(got.Data(), want.Data()) {
				t.Fatal("padding differs from reference")
			}
		})
	}
}

// TestCPUBackend_PadZeroWidth returns an equal copy.
func TestCPUBackend_PadZeroWidth(t *testing.T) {
	backend := New()
	x := tensor.Iota[uint8](tensor.Shape{3, 3}, backend)

	got := backend.Pad(x.Raw(), []tensor.PadWidth{{}, {}})
	if !bytesEqual(got.Data(), x.Raw().Data()) {
		t.Error("zero-width pad changed data")
	}
	got.Data()[0] = 99
	if x.Raw().Data()[0] != 0 {
		t.Error("zero-width pad aliased its input")
	}
}

// TestCPUBackend_Paste tests overwriting a box, including the overlap order.
func TestCPUBackend_Paste(t *testing.T) {
	for name, backend := range testBackends() {
		t.Run(name, func(t *testing.T) {
			dst := tensor.Zeros[float32](tensor.Shape{2, 6}, backend)
			first := tensor.Full[float32](tensor.Shape{2, 4}, 1, backend)
			second := tensor.Full[float32](tensor.Shape{2, 4}, 2, backend)

			backend.Paste(dst.Raw(), first.Raw(), []int{0})
			backend.Paste(dst.Raw(), second.Raw(), []int{2})

			want := []float32{1, 1, 2, 2, 2, 2}
			for b := 0; b < 2; b++ {
				for i, w := range want {
					if got := dst.At(b, i); got != w {
						t.Errorf("dst[%d, %d] = %v, want %v", b, i, got, w)
					}
				}
			}
		})
	}
}

// TestCPUBackend_PastePanics tests invalid destinations.
func TestCPUBackend_PastePanics(t *testing.T) {
	backend := New()

	tests := []struct {
		name  string
		dst   *tensor.RawTensor
		src   *tensor.RawTensor
		start []int
	}{
		{
			name:  "dtype mismatch",
			dst:   tensor.Zeros[float32](tensor.Shape{4}, backend).Raw(),
			src:   tensor.Zeros[int32](tensor.Shape{2}, backend).Raw(),
			start: []int{0},
		},
		{
			name:  "out of bounds",
			dst:   tensor.Zeros[float32](tensor.Shape{4}, backend).Raw(),
			src:   tensor.Zeros[float32](tensor.Shape{2}, backend).Raw(),
			start: []int{3},
		},
		{
			name:  "rank mismatch",
			dst:   tensor.Zeros[float32](tensor.Shape{2, 4}, backend).Raw(),
			src:   tensor.Zeros[float32](tensor.Shape{2}, backend).Raw(),
			start: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("expected panic")
				}
			}()
			backend.Paste(tt.dst, tt.src, tt.start)
		})
	}
}

func BenchmarkCrop(b *testing.B) {
	x := tensor.Zeros[float32](tensor.Shape{1, 128, 128, 128}, New())

	for name, backend := range testBackends() {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				backend.Crop(x.Raw(), []int{10, 20, 30}, tensor.Shape{64, 64, 64})
			}
		})
	}
}
