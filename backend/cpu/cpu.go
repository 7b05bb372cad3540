// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/volpatch/internal/backend/cpu"
	"github.com/born-ml/volpatch/internal/parallel"
	"github.com/born-ml/volpatch/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option = internalcpu.Option

// ParallelConfig controls how large region copies are spread across goroutines.
type ParallelConfig = parallel.Config

// DefaultParallelConfig returns the default parallel copy settings.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// WithParallel sets the parallel copy settings.
//
// Example:
//
//	cfg := cpu.DefaultParallelConfig()
//	cfg.Enabled = false
//	backend := cpu.New(cpu.WithParallel(cfg))
func WithParallel(cfg ParallelConfig) Option {
	return internalcpu.WithParallel(cfg)
}

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/born-ml/volpatch/backend/cpu"
//	    "github.com/born-ml/volpatch/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	}
func New(opts ...Option) *Backend {
	return internalcpu.New(opts...)
}
