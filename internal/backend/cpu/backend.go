// Package cpu implements the CPU backend: byte-level region copies for crop,
// zero padding and paste, split across goroutines for large tensors.
package cpu

import (
	"fmt"

	"github.com/born-ml/volpatch/internal/parallel"
	"github.com/born-ml/volpatch/internal/tensor"
)

// Compile-time check that CPUBackend implements tensor.Backend.
var _ tensor.Backend = (*CPUBackend)(nil)

// CPUBackend implements tensor region operations on CPU.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// Option configures a CPUBackend.
type Option func(*CPUBackend)

// WithParallel sets how row copies are spread across goroutines.
// Use parallel.Config{Enabled: false} for strictly sequential copies.
func WithParallel(cfg parallel.Config) Option {
	return func(cpu *CPUBackend) {
		cpu.parallel = cfg
	}
}

// New creates a new CPU backend.
func New(opts ...Option) *CPUBackend {
	cpu := &CPUBackend{
		device:   tensor.CPU,
		parallel: parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(cpu)
	}
	return cpu
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Crop copies the box [start, start+size) of x over its trailing dimensions
// into a new tensor. Leading dimensions are copied whole.
//
// Example:
//
//	x := tensor.Zeros[float32](tensor.Shape{1, 64, 64}, backend)
//	patch := backend.Crop(x.Raw(), []int{8, 8}, tensor.Shape{32, 32}) // Shape: [1, 32, 32]
func (cpu *CPUBackend) Crop(x *tensor.RawTensor, start []int, size tensor.Shape) *tensor.RawTensor {
	if err := tensor.CheckRegion(x.Shape(), start, size); err != nil {
		panic(fmt.Sprintf("crop: %v", err))
	}
	fullStart, fullSize := tensor.FullRegion(x.Shape(), start, size)

	result, err := tensor.NewRaw(fullSize, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("crop: %v", err))
	}

	cpu.copyBox(result, x, make([]int, len(fullSize)), fullStart, fullSize)
	return result
}

// Pad returns a copy of x surrounded by zeros along its trailing
// len(widths) dimensions.
func (cpu *CPUBackend) Pad(x *tensor.RawTensor, widths []tensor.PadWidth) *tensor.RawTensor {
	padded, err := tensor.PaddedShape(x.Shape(), widths)
	if err != nil {
		panic(err)
	}

	result, err := tensor.NewRaw(padded, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("pad: %v", err))
	}

	before := make([]int, len(widths))
	for i, w := range widths {
		before[i] = w.Before
	}
	dstStart, _ := tensor.FullRegion(padded, before, x.Shape().Trailing(len(widths)))

	cpu.copyBox(result, x, dstStart, make([]int, len(x.Shape())), x.Shape())
	return result
}

// Paste overwrites the box of dst starting at start with src.
// src and dst must have the same rank, dtype and leading dimensions.
func (cpu *CPUBackend) Paste(dst, src *tensor.RawTensor, start []int) {
	if dst.DType() != src.DType() {
		panic(fmt.Sprintf("paste: dtype %s into %s", src.DType(), dst.DType()))
	}
	if len(src.Shape()) != len(dst.Shape()) {
		panic(fmt.Sprintf("paste: %dD source into %dD destination", len(src.Shape()), len(dst.Shape())))
	}

	n := len(start)
	box := src.Shape().Trailing(n)
	if lead, want := src.Shape().Leading(n), dst.Shape().Leading(n); !lead.Equal(want) {
		panic(fmt.Sprintf("paste: leading dims %v do not match %v", lead, want))
	}
	if err := tensor.CheckRegion(dst.Shape(), start, box); err != nil {
		panic(fmt.Sprintf("paste: %v", err))
	}

	dstStart, _ := tensor.FullRegion(dst.Shape(), start, box)
	cpu.copyBox(dst, src, dstStart, make([]int, len(src.Shape())), src.Shape())
}
