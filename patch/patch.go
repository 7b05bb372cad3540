// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package patch

import (
	"math/rand/v2"

	"github.com/born-ml/volpatch/internal/patch"
	"github.com/born-ml/volpatch/tensor"
)

// Errors returned (or, for ErrOutOfBounds, panicked) by this package.
var (
	ErrShapeMismatch  = patch.ErrShapeMismatch
	ErrOutOfBounds    = patch.ErrOutOfBounds
	ErrInvalidWeights = patch.ErrInvalidWeights
	ErrInvalidCount   = patch.ErrInvalidCount
)

// Coordinate is the center of a patch, one entry per patch dimension.
type Coordinate = patch.Coordinate

// Margin is the extent of a patch on either side of its center.
type Margin = patch.Margin

// MarginOf returns the per-dimension margins of shape.
func MarginOf(shape tensor.Shape) []Margin {
	return patch.MarginOf(shape)
}

// CenterOf returns the center of a box of the given shape at the origin.
func CenterOf(shape tensor.Shape) Coordinate {
	return patch.CenterOf(shape)
}

// Origin returns the first index covered by a patch centered at center.
func Origin(center Coordinate, shape tensor.Shape) []int {
	return patch.Origin(center, shape)
}

// CentralCrop copies the patch of the given shape centered at center out of x.
// Panics with an error wrapping ErrOutOfBounds if it does not fit.
func CentralCrop(backend tensor.Backend, x *tensor.RawTensor, center Coordinate, shape tensor.Shape) *tensor.RawTensor {
	return patch.CentralCrop(backend, x, center, shape)
}

// CentralCropTensor is CentralCrop for typed tensors.
func CentralCropTensor[T tensor.DType, B tensor.Backend](x *tensor.Tensor[T, B], center Coordinate, shape tensor.Shape) *tensor.Tensor[T, B] {
	return patch.CentralCropTensor(x, center, shape)
}

// Coordinate generators

// CoordinateGenerator produces the centers at which patches are cropped.
type CoordinateGenerator = patch.CoordinateGenerator

// GridCoordinates tiles an array with valid-shape tiles.
type GridCoordinates = patch.GridCoordinates

// NewGridCoordinates computes the tiling grid for an array of the original shape.
func NewGridCoordinates(original, patchShape, validShape tensor.Shape) (*GridCoordinates, error) {
	return patch.NewGridCoordinates(original, patchShape, validShape)
}

// BalancedCoordinates draws centers in proportion to a weight map.
type BalancedCoordinates = patch.BalancedCoordinates

// BalancedOption configures a BalancedCoordinates.
type BalancedOption = patch.BalancedOption

// NewBalancedCoordinates builds a generator drawing n centers from weights.
//
// Example:
//
//	coords, err := patch.NewBalancedCoordinates(16, labels.Raw(), tensor.Shape{32, 32, 32}, patch.WithSeed(42))
func NewBalancedCoordinates(n int, weights *tensor.RawTensor, patchShape tensor.Shape, opts ...BalancedOption) (*BalancedCoordinates, error) {
	return patch.NewBalancedCoordinates(n, weights, patchShape, opts...)
}

// WithSeed seeds the generator. A negative seed picks a random one.
func WithSeed(seed int64) BalancedOption {
	return patch.WithSeed(seed)
}

// NewRand returns the seeded source shared by generators and queues.
// A negative seed picks a random one.
func NewRand(seed int64) *rand.Rand {
	return patch.NewRand(seed)
}

// WithRand makes the generator draw from rng.
func WithRand(rng *rand.Rand) BalancedOption {
	return patch.WithRand(rng)
}

// Bundles

// Kind is the container shape of a Bundle.
type Kind = patch.Kind

// Bundle kinds.
const (
	Single = patch.Single
	List   = patch.List
	Keyed  = patch.Keyed
)

// Item is one member of a Bundle.
type Item = patch.Item

// Bundle is a single array, an ordered list or a keyed set of items.
type Bundle = patch.Bundle

// ArrayItem wraps an array member.
func ArrayItem(x *tensor.RawTensor) Item {
	return patch.ArrayItem(x)
}

// TensorItem wraps a typed tensor as an array member.
func TensorItem[T tensor.DType, B tensor.Backend](x *tensor.Tensor[T, B]) Item {
	return patch.TensorItem(x)
}

// ValueItem wraps a passthrough member.
func ValueItem(v any) Item {
	return patch.ValueItem(v)
}

// NewSingle creates a Bundle holding one array.
func NewSingle(x *tensor.RawTensor) Bundle {
	return patch.NewSingle(x)
}

// NewList creates an ordered Bundle.
func NewList(items ...Item) Bundle {
	return patch.NewList(items...)
}

// NewKeyed creates a keyed Bundle.
func NewKeyed(entries map[string]Item) Bundle {
	return patch.NewKeyed(entries)
}

// Samplers

// PatchPicker crops one patch of a Bundle per generated coordinate.
type PatchPicker = patch.PatchPicker

// NewPatchPicker creates a picker over data driven by coords.
func NewPatchPicker(data Bundle, patchShape tensor.Shape, coords CoordinateGenerator, backend tensor.Backend) *PatchPicker {
	return patch.NewPatchPicker(data, patchShape, coords, backend)
}

// GridSampler splits one array into grid patches and restores them.
type GridSampler[T tensor.DType, B tensor.Backend] = patch.GridSampler[T, B]

// GridOption configures a GridSampler.
type GridOption = patch.GridOption

// WithValidShape sets the region of each patch kept on Restore.
func WithValidShape(valid tensor.Shape) GridOption {
	return patch.WithValidShape(valid)
}

// NewGridSampler tiles data with patches of patchShape.
//
// Example:
//
//	sampler, err := patch.NewGridSampler(volume, tensor.Shape{64, 64, 32},
//	    patch.WithValidShape(tensor.Shape{48, 48, 24}))
func NewGridSampler[T tensor.DType, B tensor.Backend](data *tensor.Tensor[T, B], patchShape tensor.Shape, opts ...GridOption) (*GridSampler[T, B], error) {
	return patch.NewGridSampler(data, patchShape, opts...)
}
