package queue

import (
	"github.com/born-ml/volpatch/internal/patch"
	"github.com/born-ml/volpatch/internal/tensor"
)

// SampleSource loads samples on demand for a PreloadedQueue.
type SampleSource[ID comparable] interface {
	// Load reads the sample with the given id. It may do file I/O and is only
	// called when a queue slot is refilled with a different sample.
	Load(id ID) (patch.Bundle, error)

	// WeightMap extracts the per-location sampling weight from a loaded
	// sample. Its rank must match the patch rank.
	WeightMap(sample patch.Bundle) (*tensor.RawTensor, error)
}

// SourceFuncs adapts a pair of functions to SampleSource.
type SourceFuncs[ID comparable] struct {
	LoadFunc      func(id ID) (patch.Bundle, error)
	WeightMapFunc func(sample patch.Bundle) (*tensor.RawTensor, error)
}

// Load calls LoadFunc.
func (f SourceFuncs[ID]) Load(id ID) (patch.Bundle, error) {
	return f.LoadFunc(id)
}

// WeightMap calls WeightMapFunc.
func (f SourceFuncs[ID]) WeightMap(sample patch.Bundle) (*tensor.RawTensor, error) {
	return f.WeightMapFunc(sample)
}
