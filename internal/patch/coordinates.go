package patch

import (
	"fmt"

	"github.com/born-ml/volpatch/internal/tensor"
)

// CoordinateGenerator produces the centers at which patches are cropped.
type CoordinateGenerator interface {
	// Len returns the number of coordinates.
	Len() int

	// At returns the i-th center. Panics if i is outside [0, Len()).
	At(i int) Coordinate

	// Regenerate redraws the coordinates. No-op for deterministic generators.
	Regenerate()
}

// Compile-time checks for the two generator variants.
var (
	_ CoordinateGenerator = (*GridCoordinates)(nil)
	_ CoordinateGenerator = (*BalancedCoordinates)(nil)
)

// GridCoordinates tiles an array with valid-shape tiles at a fixed stride.
//
// Tile starts along dimension d are 0, v, 2v, ... with the last one clamped to
// original[d]-v, so the tiles cover the array with the fewest tiles and only
// the final tile of a non-divisible dimension overlaps its neighbour.
//
// Centers returned by At address the padded array: a patch-shape window there
// stays in bounds and its central valid-shape region lands on the tile.
type GridCoordinates struct {
	original tensor.Shape
	patch    tensor.Shape
	valid    tensor.Shape
	padding  []tensor.PadWidth
	starts   [][]int      // per-dimension tile starts, unpadded frame
	counts   tensor.Shape // per-dimension tile counts
	center   Coordinate   // center offset of a valid tile
}

// NewGridCoordinates computes the grid for an array whose sampled dimensions
// have the original shape.
//
// All shapes must share the same rank, valid must not exceed patch, and
// valid must not exceed original.
func NewGridCoordinates(original, patchShape, validShape tensor.Shape) (*GridCoordinates, error) {
	if err := validatePatchShapes(patchShape, validShape); err != nil {
		return nil, err
	}
	if len(original) != len(patchShape) {
		return nil, fmt.Errorf("%w: %d-dim array for %d-dim patch", ErrShapeMismatch, len(original), len(patchShape))
	}
	if err := original.Validate(); err != nil {
		return nil, fmt.Errorf("%w: array shape: %v", ErrShapeMismatch, err)
	}
	if !validShape.LessEqual(original) {
		return nil, fmt.Errorf("%w: valid shape %v larger than array %v", ErrShapeMismatch, validShape, original)
	}

	g := &GridCoordinates{
		original: original.Clone(),
		patch:    patchShape.Clone(),
		valid:    validShape.Clone(),
		padding:  make([]tensor.PadWidth, len(original)),
		starts:   make([][]int, len(original)),
		counts:   make(tensor.Shape, len(original)),
		center:   CenterOf(validShape),
	}

	patchMargin, validMargin := MarginOf(patchShape), MarginOf(validShape)
	for d := range original {
		g.padding[d] = tensor.PadWidth{
			Before: patchMargin[d].Lower - validMargin[d].Lower,
			After:  patchMargin[d].Upper - validMargin[d].Upper,
		}
		g.starts[d] = tileStarts(original[d], validShape[d])
		g.counts[d] = len(g.starts[d])
	}
	return g, nil
}

// tileStarts returns ceil(extent/tile) starts, the last clamped to extent-tile.
func tileStarts(extent, tile int) []int {
	n := (extent + tile - 1) / tile
	starts := make([]int, n)
	for i := range starts {
		starts[i] = i * tile
	}
	starts[n-1] = extent - tile
	return starts
}

// Len returns the number of tiles: the product of per-dimension tile counts.
func (g *GridCoordinates) Len() int {
	return g.counts.NumElements()
}

// At returns the padded-array center of tile i (row-major, last dimension fastest).
func (g *GridCoordinates) At(i int) Coordinate {
	c := g.ValidCenter(i)
	for d := range c {
		c[d] += g.padding[d].Before
	}
	return c
}

// ValidCenter returns the center of tile i's valid region in the unpadded array.
func (g *GridCoordinates) ValidCenter(i int) Coordinate {
	c := Coordinate(g.TileStart(i))
	for d := range c {
		c[d] += g.center[d]
	}
	return c
}

// TileStart returns the first index of tile i in the unpadded array.
func (g *GridCoordinates) TileStart(i int) []int {
	if i < 0 || i >= g.Len() {
		panic(fmt.Sprintf("grid coordinate %d out of range [0, %d)", i, g.Len()))
	}
	idx := make([]int, len(g.counts))
	g.counts.Unravel(i, idx)
	for d, k := range idx {
		idx[d] = g.starts[d][k]
	}
	return idx
}

// Regenerate is a no-op: grid coordinates are fixed at construction.
func (g *GridCoordinates) Regenerate() {}

// Padding returns the zero padding each side of each sampled dimension needs
// so that every patch-shape window stays in bounds.
func (g *GridCoordinates) Padding() []tensor.PadWidth {
	return append([]tensor.PadWidth(nil), g.padding...)
}

// Counts returns the number of tiles along each dimension.
func (g *GridCoordinates) Counts() tensor.Shape {
	return g.counts.Clone()
}

// OriginalShape returns the unpadded shape being tiled.
func (g *GridCoordinates) OriginalShape() tensor.Shape {
	return g.original.Clone()
}

// PatchShape returns the cropped patch shape.
func (g *GridCoordinates) PatchShape() tensor.Shape {
	return g.patch.Clone()
}

// ValidShape returns the tile shape used on restore.
func (g *GridCoordinates) ValidShape() tensor.Shape {
	return g.valid.Clone()
}

func validatePatchShapes(patchShape, validShape tensor.Shape) error {
	if len(patchShape) == 0 {
		return fmt.Errorf("%w: empty patch shape", ErrShapeMismatch)
	}
	if err := patchShape.Validate(); err != nil {
		return fmt.Errorf("%w: patch shape: %v", ErrShapeMismatch, err)
	}
	if len(validShape) != len(patchShape) {
		return fmt.Errorf("%w: %d-dim valid shape for %d-dim patch", ErrShapeMismatch, len(validShape), len(patchShape))
	}
	if err := validShape.Validate(); err != nil {
		return fmt.Errorf("%w: valid shape: %v", ErrShapeMismatch, err)
	}
	if !validShape.LessEqual(patchShape) {
		return fmt.Errorf("%w: valid shape %v larger than patch %v", ErrShapeMismatch, validShape, patchShape)
	}
	return nil
}
