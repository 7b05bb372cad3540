// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package queue serves class-balanced training patches from a bounded set of
// resident samples.
//
// Example:
//
//	source := queue.SourceFuncs[string]{
//	    LoadFunc:      loadCase,        // reads image and label from disk
//	    WeightMapFunc: foregroundWeights,
//	}
//	cfg := queue.DefaultConfig()
//	cfg.PatchShape = tensor.Shape{96, 96, 96}
//	cfg.SamplesAlive = 8
//
//	q, err := queue.New(caseIDs, source, cpu.New(), cfg)
//	if err != nil {
//	    return err
//	}
//	for step := 0; step < stepsPerEpoch; step++ {
//	    b, err := q.Next()
//	    if err != nil {
//	        return err
//	    }
//	    train(b)
//	}
package queue

import (
	"log/slog"

	"github.com/born-ml/volpatch/internal/queue"
	"github.com/born-ml/volpatch/tensor"
)

// Errors returned by New.
var (
	ErrNoSamples     = queue.ErrNoSamples
	ErrInvalidConfig = queue.ErrInvalidConfig
)

// Config controls queue residency and patch draws.
type Config = queue.Config

// DefaultConfig returns the default queue settings. PatchShape must still be set.
func DefaultConfig() Config {
	return queue.DefaultConfig()
}

// Stats counts queue activity.
type Stats = queue.Stats

// Option configures a PreloadedQueue.
type Option = queue.Option

// WithLogger sets the logger for slot refill events. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return queue.WithLogger(logger)
}

// SampleSource loads samples on demand.
type SampleSource[ID comparable] = queue.SampleSource[ID]

// SourceFuncs adapts a pair of functions to SampleSource.
type SourceFuncs[ID comparable] = queue.SourceFuncs[ID]

// PreloadedQueue serves patches from at most SamplesAlive resident samples.
type PreloadedQueue[ID comparable] = queue.PreloadedQueue[ID]

// New creates a queue over samples.
func New[ID comparable](samples []ID, source SampleSource[ID], backend tensor.Backend, cfg Config, opts ...Option) (*PreloadedQueue[ID], error) {
	return queue.New(samples, source, backend, cfg, opts...)
}
