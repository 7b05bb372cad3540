// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the array types used by volpatch.
//
// # Overview
//
// This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - Byte-backed raw tensors for dtype-agnostic code (RawTensor)
//   - The Backend interface: crop, zero pad and paste over trailing dimensions
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/volpatch/backend/cpu"
//	    "github.com/born-ml/volpatch/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    volume := tensor.Iota[float32](tensor.Shape{1, 64, 64, 32}, backend)
//	    block := volume.Crop([]int{8, 8, 0}, tensor.Shape{16, 16, 16}) // [1, 16, 16, 16]
//	    padded := block.Pad([]tensor.PadWidth{{Before: 2, After: 2}})  // [1, 16, 16, 20]
//	}
//
// # Supported Data Types
//
// The tensor package supports the following data types via the DType constraint:
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers, useful for label maps)
//   - bool (masks)
//
// # Memory Model
//
// Tensors are contiguous and row-major. Crop, Pad and Paste copy; no
// operation returns a view sharing memory with its input.
package tensor
