package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/volpatch/backend/cpu"
	"github.com/born-ml/volpatch/patch"
	"github.com/born-ml/volpatch/tensor"
)

func runGrid(args []string) error {
	fs := flag.NewFlagSet("grid", flag.ContinueOnError)
	shape := &shapeFlag{shape: tensor.Shape{1, 96, 96, 64}}
	patchShape := &shapeFlag{shape: tensor.Shape{64, 64, 32}}
	validShape := &shapeFlag{}
	fs.Var(shape, "shape", "Volume shape, leading channel dims included")
	fs.Var(patchShape, "patch", "Patch shape over the trailing dims")
	fs.Var(validShape, "valid", "Valid shape kept on restore (default: patch shape)")
	seed := fs.Uint64("seed", 1, "Seed for the synthetic volume")
	workers := fs.Int("workers", 0, "Copy goroutines (0 = NumCPU, 1 = sequential)")
	verbose := fs.Bool("v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	logger := newLogger(*verbose)

	backend := cpu.New(cpu.WithParallel(parallelConfig(*workers)))
	volume := tensor.Rand[float32](shape.shape, rand.New(rand.NewPCG(*seed, *seed)), backend) //nolint:gosec // synthetic data

	var opts []patch.GridOption
	if validShape.shape != nil {
		opts = append(opts, patch.WithValidShape(validShape.shape))
	}
	sampler, err := patch.NewGridSampler(volume, patchShape.shape, opts...)
	if err != nil {
		return err
	}
	coords := sampler.Coordinates()
	logger.Debug("grid: sampler ready",
		"tiles", sampler.Len(),
		"counts", coords.Counts(),
		"padded", sampler.Padded().Shape())

	start := time.Now()
	patches := make([]*tensor.Tensor[float32, *cpu.Backend], 0, sampler.Len())
	for p, ok := sampler.Next(); ok; p, ok = sampler.Next() {
		patches = append(patches, p)
	}
	cropped := time.Since(start)

	start = time.Now()
	restored, err := sampler.Restore(patches, nil)
	if err != nil {
		return err
	}
	rebuilt := time.Since(start)

	maxErr := floats.Distance(volume.Raw().Float64s(), restored.Raw().Float64s(), math.Inf(1))

	fmt.Printf("Volume:   %v\n", volume.Shape())
	fmt.Printf("Patch:    %v (valid %v)\n", sampler.PatchShape(), sampler.ValidShape())
	fmt.Printf("Tiles:    %d %v\n", sampler.Len(), coords.Counts())
	fmt.Printf("Padding:  %v -> %v\n", coords.Padding(), sampler.Padded().Shape())
	fmt.Printf("Crop:     %v\n", cropped)
	fmt.Printf("Restore:  %v\n", rebuilt)
	fmt.Printf("Max |restored - volume|: %g\n", maxErr)
	if maxErr != 0 {
		return fmt.Errorf("round trip mismatch: max error %g", maxErr)
	}
	return nil
}

func parallelConfig(workers int) cpu.ParallelConfig {
	cfg := cpu.DefaultParallelConfig()
	switch {
	case workers == 1:
		cfg.Enabled = false
	case workers > 1:
		cfg.Enabled = true
		cfg.NumWorkers = workers
	default:
		cfg.NumWorkers = runtime.NumCPU()
	}
	return cfg
}
