package patch

import "github.com/born-ml/volpatch/internal/tensor"

// PatchPicker crops one patch of a Bundle per coordinate of its generator.
//
// The picker holds the bundle by reference and only tracks a cursor, so a
// resident sample can be drawn from again after Reset without reloading.
type PatchPicker struct {
	data       Bundle
	patchShape tensor.Shape
	coords     CoordinateGenerator
	backend    tensor.Backend
	index      int
}

// NewPatchPicker creates a picker over data driven by coords.
func NewPatchPicker(data Bundle, patchShape tensor.Shape, coords CoordinateGenerator, backend tensor.Backend) *PatchPicker {
	return &PatchPicker{
		data:       data,
		patchShape: patchShape.Clone(),
		coords:     coords,
		backend:    backend,
	}
}

// Len returns the number of patches per pass.
func (p *PatchPicker) Len() int {
	return p.coords.Len()
}

// Remaining returns how many patches are left in the current pass.
func (p *PatchPicker) Remaining() int {
	return p.coords.Len() - p.index
}

// Next returns the patch at the next coordinate.
// It returns false once every coordinate has been used; exhaustion leaves the
// picker unchanged.
func (p *PatchPicker) Next() (Bundle, bool) {
	if p.index >= p.coords.Len() {
		return Bundle{}, false
	}
	center := p.coords.At(p.index)
	p.index++
	return p.data.Crop(p.backend, center, p.patchShape), true
}

// Reset regenerates the coordinates and rewinds to the first one.
func (p *PatchPicker) Reset() {
	p.coords.Regenerate()
	p.index = 0
}

// Data returns the bundle patches are cropped from.
func (p *PatchPicker) Data() Bundle {
	return p.data
}

// Coordinates returns the picker's generator.
func (p *PatchPicker) Coordinates() CoordinateGenerator {
	return p.coords
}
