// Package patch cuts fixed-size patches out of N-dimensional arrays and puts
// them back together.
//
// The sampled ("patch") dimensions are always the trailing dimensions of an
// array; any leading batch or channel dimensions are carried through whole.
// Patches are addressed by their center coordinate. For an even extent s the
// center sits one unit toward the lower index, so a patch of extent s centered
// at c spans [c-(s-1)/2, c+s-(s-1)/2).
//
// Two coordinate generators are provided:
//
//   - GridCoordinates tiles an array deterministically with valid-shape tiles,
//     clamping the last tile of each dimension so the array is covered exactly.
//   - BalancedCoordinates draws centers at random with probability
//     proportional to a weight map, for class-balanced training.
//
// A PatchPicker walks one generator over a Bundle (a single array, an ordered
// list, or a keyed set of arrays mixed with passthrough values). A GridSampler
// pads one array, yields its grid patches and restores processed patches into
// a full-size array.
//
// Basic usage:
//
//	backend := cpu.New()
//	volume := tensor.Rand[float32](tensor.Shape{1, 96, 96, 64}, nil, backend)
//
//	sampler, err := patch.NewGridSampler(volume, tensor.Shape{64, 64, 32},
//	    patch.WithValidShape(tensor.Shape{48, 48, 24}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var outputs []*tensor.Tensor[float32, *cpu.Backend]
//	for p, ok := sampler.Next(); ok; p, ok = sampler.Next() {
//	    outputs = append(outputs, model(p))
//	}
//	restored, err := sampler.Restore(outputs, nil)
//
// None of the types in this package are safe for concurrent use.
package patch
