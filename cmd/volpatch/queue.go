package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/volpatch/backend/cpu"
	"github.com/born-ml/volpatch/patch"
	"github.com/born-ml/volpatch/queue"
	"github.com/born-ml/volpatch/tensor"
)

// syntheticCases generates image/label pairs on demand. Each label holds one
// axis-aligned foreground box at a position fixed by the case id.
type syntheticCases struct {
	backend    *cpu.Backend
	shape      tensor.Shape
	box        tensor.Shape
	background float32
	seed       uint64
}

func (s *syntheticCases) Load(id int) (patch.Bundle, error) {
	rng := rand.New(rand.NewPCG(s.seed, uint64(id))) //nolint:gosec // synthetic data

	image := tensor.Rand[float32](s.shape, rng, s.backend)
	label := tensor.Zeros[uint8](s.shape, s.backend)

	origin := make([]int, len(s.shape))
	for d := range origin {
		origin[d] = rng.IntN(s.shape[d] - s.box[d] + 1)
	}
	idx := make([]int, len(s.shape))
	for k := 0; k < s.box.NumElements(); k++ {
		s.box.Unravel(k, idx)
		for d := range idx {
			idx[d] += origin[d]
		}
		label.Set(1, idx...)
	}

	return patch.NewKeyed(map[string]patch.Item{
		"image": patch.TensorItem(image),
		"label": patch.TensorItem(label),
		"case":  patch.ValueItem(id),
	}), nil
}

// WeightMap up-weights the foreground box.
func (s *syntheticCases) WeightMap(sample patch.Bundle) (*tensor.RawTensor, error) {
	label, ok := sample.Get("label")
	if !ok || !label.IsArray() {
		return nil, errors.New("sample has no label array")
	}
	weights := tensor.Full[float32](label.Array().Shape(), s.background, s.backend)
	data := weights.Data()
	for i, v := range label.Array().AsUint8() {
		if v != 0 {
			data[i] = 1
		}
	}
	return weights.Raw(), nil
}

func runQueue(args []string) error {
	fs := flag.NewFlagSet("queue", flag.ContinueOnError)
	shape := &shapeFlag{shape: tensor.Shape{48, 48, 48}}
	box := &shapeFlag{shape: tensor.Shape{8, 8, 8}}
	patchShape := &shapeFlag{shape: tensor.Shape{16, 16, 16}}
	fs.Var(shape, "shape", "Shape of every synthetic case")
	fs.Var(box, "box", "Foreground box shape inside each case")
	fs.Var(patchShape, "patch", "Patch shape")
	samples := fs.Int("samples", 10, "Number of synthetic cases")
	alive := fs.Int("alive", 3, "Cases resident at once (0 = all)")
	perSample := fs.Int("per-sample", 4, "Patches drawn per resident case")
	pulls := fs.Int("pulls", 120, "Patches to draw")
	background := fs.Float64("background", 0, "Sampling weight of background voxels")
	shuffle := fs.Bool("shuffle", true, "Shuffle the case order once")
	seed := fs.Int64("seed", 1, "Seed for case order and patch draws (-1 = random)")
	verbose := fs.Bool("v", false, "Debug logging (one line per slot refill)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if !box.shape.LessEqual(shape.shape) {
		return fmt.Errorf("box %v does not fit in case shape %v", box.shape, shape.shape)
	}
	logger := newLogger(*verbose)

	backend := cpu.New()
	source := &syntheticCases{
		backend:    backend,
		shape:      shape.shape,
		box:        box.shape,
		background: float32(*background),
		seed:       uint64(max(*seed, 0)), //nolint:gosec // non-negative
	}

	ids := make([]int, *samples)
	for i := range ids {
		ids[i] = i
	}
	cfg := queue.DefaultConfig()
	cfg.PatchShape = patchShape.shape
	cfg.PatchesPerSample = *perSample
	cfg.SamplesAlive = *alive
	cfg.Shuffle = *shuffle
	cfg.Seed = *seed

	q, err := queue.New(ids, source, backend, cfg, queue.WithLogger(logger))
	if err != nil {
		return err
	}

	center := patch.CenterOf(patchShape.shape)
	perCase := make(map[int]int)
	foreground := 0
	for i := 0; i < *pulls; i++ {
		b, err := q.Next()
		if err != nil {
			return err
		}
		id, _ := b.Get("case")
		perCase[id.Value().(int)]++

		label, _ := b.Get("label")
		lbl := tensor.New[uint8](label.Array(), backend)
		if lbl.At(center...) != 0 {
			foreground++
		}
	}

	stats := q.Stats()
	fmt.Printf("Order:      %v\n", q.Order())
	fmt.Printf("Slots:      %d resident %v\n", q.SamplesAlive(), q.Resident())
	fmt.Printf("Pulls:      %d\n", stats.Pulls)
	fmt.Printf("Loads:      %d\n", stats.Loads)
	fmt.Printf("Refreshes:  %d\n", stats.Refreshes)
	fmt.Printf("Foreground: %.1f%% of patch centers\n", 100*float64(foreground)/float64(max(*pulls, 1)))
	for _, id := range q.Order() {
		if n := perCase[id]; n > 0 {
			fmt.Printf("  case %3d: %d patches\n", id, n)
		}
	}
	return nil
}
