// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package patch cuts fixed-size patches out of N-dimensional arrays and
// reassembles processed patches into full-size arrays.
//
// # Overview
//
//   - GridCoordinates and GridSampler: deterministic tiling for inference,
//     with an optional smaller valid region kept on Restore
//   - BalancedCoordinates and PatchPicker: weighted random patches for
//     training, biased toward a class of interest by a weight map
//   - Bundle: a single array, list or keyed set of arrays and passthrough
//     values cropped together
//
// Patch dimensions are the trailing dimensions of an array. Leading
// batch/channel dimensions are kept whole.
//
// # Grid Inference
//
//	backend := cpu.New()
//	sampler, err := patch.NewGridSampler(volume, tensor.Shape{64, 64, 32},
//	    patch.WithValidShape(tensor.Shape{48, 48, 24}))
//	if err != nil {
//	    return err
//	}
//
//	var outputs []*tensor.Tensor[float32, *cpu.Backend]
//	for p, ok := sampler.Next(); ok; p, ok = sampler.Next() {
//	    outputs = append(outputs, model.Forward(p))
//	}
//	segmentation, err := sampler.Restore(outputs, nil)
//
// # Weighted Training Patches
//
//	coords, _ := patch.NewBalancedCoordinates(8, label.Raw(), tensor.Shape{32, 32, 32})
//	picker := patch.NewPatchPicker(sample, tensor.Shape{32, 32, 32}, coords, backend)
//	for b, ok := picker.Next(); ok; b, ok = picker.Next() {
//	    train(b)
//	}
//	picker.Reset() // fresh centers, same sample
package patch
