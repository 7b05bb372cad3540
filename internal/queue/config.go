// Package queue keeps a bounded set of loaded samples in memory and serves
// class-balanced patches from them round-robin.
package queue

import (
	"errors"
	"fmt"

	"github.com/born-ml/volpatch/internal/tensor"
)

// Common errors.
var (
	// ErrNoSamples is returned when the queue is built with an empty sample list.
	ErrNoSamples = errors.New("queue: no samples")

	// ErrInvalidConfig is returned for an unusable Config.
	ErrInvalidConfig = errors.New("queue: invalid config")
)

// Config controls queue residency and patch draws.
type Config struct {
	// PatchShape is the shape of the sampled dimensions of every patch.
	PatchShape tensor.Shape

	// PatchesPerSample is how many patches are drawn from a sample before
	// it is replaced. Must be at least 1.
	PatchesPerSample int

	// SamplesAlive caps how many samples are resident at once.
	// Values outside (0, len(samples)] mean all samples.
	SamplesAlive int

	// Shuffle permutes the sample order once at construction.
	Shuffle bool

	// Seed drives the shuffle and every patch draw (-1 = random).
	Seed int64
}

// DefaultConfig returns a config drawing 16 patches per sample with every
// sample resident and a shuffled, randomly seeded order. PatchShape must
// still be set.
func DefaultConfig() Config {
	return Config{
		PatchesPerSample: 16,
		SamplesAlive:     0,
		Shuffle:          true,
		Seed:             -1,
	}
}

func (c Config) validate() error {
	if c.PatchesPerSample < 1 {
		return fmt.Errorf("%w: PatchesPerSample must be >= 1, got %d", ErrInvalidConfig, c.PatchesPerSample)
	}
	if len(c.PatchShape) == 0 {
		return fmt.Errorf("%w: empty PatchShape", ErrInvalidConfig)
	}
	if err := c.PatchShape.Validate(); err != nil {
		return fmt.Errorf("%w: PatchShape: %v", ErrInvalidConfig, err)
	}
	return nil
}

// alive resolves SamplesAlive against the number of samples.
func (c Config) alive(n int) int {
	if c.SamplesAlive > 0 && c.SamplesAlive <= n {
		return c.SamplesAlive
	}
	return n
}
