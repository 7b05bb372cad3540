package patch

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/born-ml/volpatch/internal/tensor"
)

// BalancedCoordinates draws patch centers with probability proportional to a
// weight map, typically a label map that up-weights a class of interest.
//
// Only centers whose patch lies entirely inside the map are admissible; no
// padding is applied. Every Regenerate call draws a fresh, independent set of
// n centers with replacement.
//
// If the weight map is zero over every admissible center, draws fall back to
// uniform sampling over the admissible centers. Uniform reports when this
// fallback is active.
type BalancedCoordinates struct {
	n        int
	patch    tensor.Shape
	interior tensor.Shape // admissible centers per dimension
	lower    []int        // first admissible center per dimension
	weights  []float64    // weight per admissible center, row-major over interior
	sampler  sampleuv.Weighted
	uniform  bool
	rng      *rand.Rand
	coords   []Coordinate
}

// BalancedOption configures a BalancedCoordinates.
type BalancedOption func(*balancedOptions)

type balancedOptions struct {
	rng *rand.Rand
}

// WithSeed seeds the generator's random source. A negative seed picks a random one.
func WithSeed(seed int64) BalancedOption {
	return func(o *balancedOptions) {
		o.rng = NewRand(seed)
	}
}

// WithRand makes the generator draw from rng. Generators sharing one rng
// produce one reproducible stream between them.
func WithRand(rng *rand.Rand) BalancedOption {
	return func(o *balancedOptions) {
		o.rng = rng
	}
}

// NewRand returns the PCG source used for seeded sampling. A negative seed
// picks a random one.
func NewRand(seed int64) *rand.Rand {
	if seed < 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // User requested random seed
	}
	//nolint:gosec // Intentional deterministic seed for reproducibility
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// NewBalancedCoordinates builds a generator drawing n centers from weights,
// which must have the same rank as patchShape and be at least as large along
// every dimension. The first set of centers is drawn immediately.
func NewBalancedCoordinates(n int, weights *tensor.RawTensor, patchShape tensor.Shape, opts ...BalancedOption) (*BalancedCoordinates, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least one coordinate, got %d", ErrInvalidCount, n)
	}
	if weights == nil {
		return nil, fmt.Errorf("%w: nil weight map", ErrInvalidWeights)
	}
	if err := validatePatchShapes(patchShape, patchShape); err != nil {
		return nil, err
	}
	shape := weights.Shape()
	if len(shape) != len(patchShape) {
		return nil, fmt.Errorf("%w: %d-dim weight map for %d-dim patch", ErrShapeMismatch, len(shape), len(patchShape))
	}
	if !patchShape.LessEqual(shape) {
		return nil, fmt.Errorf("%w: patch %v larger than weight map %v", ErrShapeMismatch, patchShape, shape)
	}

	options := &balancedOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.rng == nil {
		options.rng = NewRand(-1)
	}

	g := &BalancedCoordinates{
		n:        n,
		patch:    patchShape.Clone(),
		interior: make(tensor.Shape, len(shape)),
		lower:    make([]int, len(shape)),
		rng:      options.rng,
		coords:   make([]Coordinate, n),
	}
	for d, m := range MarginOf(patchShape) {
		g.lower[d] = m.Lower
		g.interior[d] = shape[d] - patchShape[d] + 1
	}

	values := weights.Float64s()
	for i, w := range values {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: value %v at flat index %d", ErrInvalidWeights, w, i)
		}
	}
	g.weights = g.gatherInterior(values, weights.Strides())

	if floats.Sum(g.weights) == 0 {
		g.uniform = true
	} else {
		g.sampler = sampleuv.NewWeighted(g.weights, g.rng)
	}

	g.Regenerate()
	return g, nil
}

// gatherInterior picks the weight of every admissible center out of the full map.
func (g *BalancedCoordinates) gatherInterior(values []float64, strides []int) []float64 {
	out := make([]float64, g.interior.NumElements())
	idx := make([]int, len(g.interior))
	for k := range out {
		g.interior.Unravel(k, idx)
		offset := 0
		for d, i := range idx {
			offset += (g.lower[d] + i) * strides[d]
		}
		out[k] = values[offset]
	}
	return out
}

// Len returns the number of centers drawn per Regenerate.
func (g *BalancedCoordinates) Len() int {
	return g.n
}

// At returns the i-th center of the current draw.
func (g *BalancedCoordinates) At(i int) Coordinate {
	if i < 0 || i >= g.n {
		panic(fmt.Sprintf("balanced coordinate %d out of range [0, %d)", i, g.n))
	}
	return append(Coordinate(nil), g.coords[i]...)
}

// Regenerate replaces all centers with a fresh independent draw.
func (g *BalancedCoordinates) Regenerate() {
	for i := range g.coords {
		g.coords[i] = g.centerOf(g.draw())
	}
}

// draw returns one admissible center index. Take removes the item from the
// sampler, so its weight is restored to keep draws with replacement.
func (g *BalancedCoordinates) draw() int {
	if g.uniform {
		return g.rng.IntN(len(g.weights))
	}
	k, ok := g.sampler.Take()
	if !ok {
		// Unreachable while weights sum to more than zero.
		return g.rng.IntN(len(g.weights))
	}
	g.sampler.Reweight(k, g.weights[k])
	return k
}

func (g *BalancedCoordinates) centerOf(k int) Coordinate {
	c := make(Coordinate, len(g.interior))
	g.interior.Unravel(k, c)
	for d := range c {
		c[d] += g.lower[d]
	}
	return c
}

// Uniform reports whether the weight map was all zero over the admissible
// centers, in which case draws are uniform.
func (g *BalancedCoordinates) Uniform() bool {
	return g.uniform
}

// Padding returns zero widths: balanced centers never need padding.
func (g *BalancedCoordinates) Padding() []tensor.PadWidth {
	return make([]tensor.PadWidth, len(g.patch))
}

// PatchShape returns the patch shape the centers were drawn for.
func (g *BalancedCoordinates) PatchShape() tensor.Shape {
	return g.patch.Clone()
}
