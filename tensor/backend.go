// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/volpatch/internal/tensor"

// Backend defines the region primitives every array backend implements.
// Region arguments address the trailing dimensions of a tensor; leading
// batch/channel dimensions are taken whole.
//
// Implementations:
//   - backend/cpu: Pure Go, row-parallel byte copies
//
// Example:
//
//	import (
//	    "github.com/born-ml/volpatch/tensor"
//	    "github.com/born-ml/volpatch/backend/cpu"
//	)
//
//	backend := cpu.New()
//	x := tensor.Iota[float32](tensor.Shape{4, 4}, backend)
//	patch := backend.Crop(x.Raw(), []int{1, 1}, tensor.Shape{2, 2})
type Backend = tensor.Backend

// MockBackend is the element-by-element reference backend used in tests.
type MockBackend = tensor.MockBackend

// NewMockBackend creates a MockBackend.
func NewMockBackend() *MockBackend {
	return tensor.NewMockBackend()
}

// CheckRegion verifies that the box [start, start+size) fits inside the
// trailing dimensions of shape.
func CheckRegion(shape Shape, start []int, size Shape) error {
	return tensor.CheckRegion(shape, start, size)
}
