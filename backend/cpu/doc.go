// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for region operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Dtype-agnostic byte copies, one contiguous row at a time
//   - Goroutine-parallel copies for large crops, pads and pastes
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/volpatch/backend/cpu"
//	    "github.com/born-ml/volpatch/patch"
//	    "github.com/born-ml/volpatch/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    volume := tensor.Zeros[float32](tensor.Shape{1, 128, 128, 64}, backend)
//	    sampler, _ := patch.NewGridSampler(volume, tensor.Shape{64, 64, 32})
//	    _ = sampler
//	}
//
// # Performance
//
// Whole-tensor copies collapse into a single copy call. Other regions are
// copied row by row; once the number of rows reaches the parallel
// MinChunkSize they are split across NumWorkers goroutines.
package cpu
