package queue

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/born-ml/volpatch/internal/patch"
	"github.com/born-ml/volpatch/internal/tensor"
)

// PreloadedQueue serves patches from at most SamplesAlive resident samples.
//
// Slots are visited round-robin, one patch per call to Next. Each slot holds
// one loaded sample and a picker drawing PatchesPerSample weighted patches
// from it. When the picker runs dry the slot is refilled with the next sample
// of a cyclic order; if that is the sample already held, the picker is only
// redrawn and nothing is reloaded.
//
// The weight map returned by the source must match the trailing dimensions
// of every array in the sample; patches are cropped at centers drawn from it.
//
// A PreloadedQueue is not safe for concurrent use.
type PreloadedQueue[ID comparable] struct {
	cfg     Config
	source  SampleSource[ID]
	backend tensor.Backend
	logger  *slog.Logger
	rng     *rand.Rand

	order  []ID // private copy of the sample ids, shuffled once
	cursor int  // index into order of the next sample to load
	slots  []slot[ID]
	next   int // slot served by the next pull
	stats  Stats
}

type slot[ID comparable] struct {
	loaded bool
	id     ID
	picker *patch.PatchPicker
}

// Stats counts queue activity.
type Stats struct {
	Pulls     int // patches returned
	Loads     int // samples read through the source
	Refreshes int // pickers redrawn without reloading
}

// Option configures a PreloadedQueue.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for slot refill events. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a queue over samples. The slice is copied; the caller's order
// is never changed. No sample is loaded until the first Next.
func New[ID comparable](samples []ID, source SampleSource[ID], backend tensor.Backend, cfg Config, opts ...Option) (*PreloadedQueue[ID], error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	if source == nil || backend == nil {
		return nil, fmt.Errorf("%w: nil source or backend", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := &options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(o)
	}

	cfg.PatchShape = cfg.PatchShape.Clone()
	cfg.SamplesAlive = cfg.alive(len(samples))

	q := &PreloadedQueue[ID]{
		cfg:     cfg,
		source:  source,
		backend: backend,
		logger:  o.logger,
		rng:     patch.NewRand(cfg.Seed),
		order:   append([]ID(nil), samples...),
		slots:   make([]slot[ID], cfg.SamplesAlive),
	}
	if cfg.Shuffle {
		q.rng.Shuffle(len(q.order), func(i, j int) {
			q.order[i], q.order[j] = q.order[j], q.order[i]
		})
	}
	return q, nil
}

// PeekSample returns the id the next slot refill will take.
func (q *PreloadedQueue[ID]) PeekSample() ID {
	return q.order[q.cursor]
}

// Order returns the sample order the queue cycles through.
func (q *PreloadedQueue[ID]) Order() []ID {
	return append([]ID(nil), q.order...)
}

// Next returns the next patch. The sequence never ends; callers decide how
// many patches make an epoch.
//
// Source errors are returned as the source produced them, and the failing
// sample id is logged at warn level. The failing slot keeps whatever it held
// before. The failed sample is used up like any other, so the next refill
// takes the sample after it and one broken sample cannot stall the queue.
func (q *PreloadedQueue[ID]) Next() (patch.Bundle, error) {
	i := q.next
	q.next = (q.next + 1) % len(q.slots)

	if !q.slots[i].loaded {
		if err := q.refill(i); err != nil {
			return patch.Bundle{}, err
		}
	}
	if b, ok := q.slots[i].picker.Next(); ok {
		q.stats.Pulls++
		return b, nil
	}

	if err := q.refill(i); err != nil {
		return patch.Bundle{}, err
	}
	b, ok := q.slots[i].picker.Next()
	if !ok {
		// PatchesPerSample >= 1, so a fresh picker always has a patch.
		return patch.Bundle{}, fmt.Errorf("queue: slot %d exhausted right after refill", i)
	}
	q.stats.Pulls++
	return b, nil
}

// refill moves slot i on to the next sample in the order. The sample is
// taken from the order whether or not it loads.
func (q *PreloadedQueue[ID]) refill(i int) error {
	id := q.PeekSample()
	q.advance()
	s := &q.slots[i]

	if s.loaded && s.id == id {
		s.picker.Reset()
		q.stats.Refreshes++
		q.logger.Debug("queue: slot refreshed", "slot", i, "sample", id, "event", "refresh")
		return nil
	}

	data, err := q.source.Load(id)
	if err != nil {
		q.logger.Warn("queue: load failed", "slot", i, "sample", id, "error", err)
		return err
	}
	weights, err := q.source.WeightMap(data)
	if err != nil {
		q.logger.Warn("queue: weight map failed", "slot", i, "sample", id, "error", err)
		return err
	}
	coords, err := patch.NewBalancedCoordinates(q.cfg.PatchesPerSample, weights, q.cfg.PatchShape, patch.WithRand(q.rng))
	if err != nil {
		return fmt.Errorf("queue: sample %v: %w", id, err)
	}
	if coords.Uniform() {
		q.logger.Debug("queue: weight map is all zero, drawing uniformly", "slot", i, "sample", id)
	}

	previous, had := s.id, s.loaded
	*s = slot[ID]{
		loaded: true,
		id:     id,
		picker: patch.NewPatchPicker(data, q.cfg.PatchShape, coords, q.backend),
	}
	q.stats.Loads++

	if had {
		q.logger.Debug("queue: slot reloaded", "slot", i, "sample", id, "evicted", previous, "event", "load")
	} else {
		q.logger.Debug("queue: slot loaded", "slot", i, "sample", id, "event", "load")
	}
	return nil
}

func (q *PreloadedQueue[ID]) advance() {
	q.cursor = (q.cursor + 1) % len(q.order)
}

// Stats returns activity counters since construction.
func (q *PreloadedQueue[ID]) Stats() Stats {
	return q.stats
}

// Resident returns the ids held by loaded slots, in slot order.
func (q *PreloadedQueue[ID]) Resident() []ID {
	ids := make([]ID, 0, len(q.slots))
	for _, s := range q.slots {
		if s.loaded {
			ids = append(ids, s.id)
		}
	}
	return ids
}

// SamplesAlive returns the number of slots.
func (q *PreloadedQueue[ID]) SamplesAlive() int {
	return len(q.slots)
}
