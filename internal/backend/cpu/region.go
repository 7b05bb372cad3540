package cpu

import (
	"github.com/born-ml/volpatch/internal/parallel"
	"github.com/born-ml/volpatch/internal/tensor"
)

// copyBox copies the full-rank box from src (at srcStart) to dst (at dstStart).
//
// Both tensors are contiguous row-major, so each innermost row of the box is
// one contiguous byte run in both buffers. Rows are independent and write
// disjoint ranges of dst, which lets them run in parallel.
func (cpu *CPUBackend) copyBox(dst, src *tensor.RawTensor, dstStart, srcStart []int, box tensor.Shape) {
	ndim := len(box)
	esize := src.DType().Size()
	srcData, dstData := src.Data(), dst.Data()

	if ndim == 0 {
		copy(dstData[:esize], srcData[:esize])
		return
	}

	// Whole-tensor copy between identical shapes is a single memmove.
	if src.Shape().Equal(box) && dst.Shape().Equal(box) {
		copy(dstData, srcData)
		return
	}

	inner := ndim - 1
	rowBytes := box[inner] * esize
	rows := box[:inner]
	srcStrides, dstStrides := src.Strides(), dst.Strides()

	copyRow := func(r int) {
		idx := make([]int, inner)
		rows.Unravel(r, idx)

		so, do := srcStart[inner], dstStart[inner]
		for d, i := range idx {
			so += (srcStart[d] + i) * srcStrides[d]
			do += (dstStart[d] + i) * dstStrides[d]
		}
		so *= esize
		do *= esize
		copy(dstData[do:do+rowBytes], srcData[so:so+rowBytes])
	}

	parallel.For(rows.NumElements(), copyRow, cpu.parallel)
}
