package tensor

import "golang.org/x/exp/constraints"

// Float64s returns a float64 copy of the tensor's values in row-major order.
// Bool tensors convert to 0 and 1. Used to read weight maps of any dtype.
func (r *RawTensor) Float64s() []float64 {
	switch r.dtype {
	case Float32:
		return widen(r.AsFloat32())
	case Float64:
		return append([]float64(nil), r.AsFloat64()...)
	case Int32:
		return widen(r.AsInt32())
	case Int64:
		return widen(r.AsInt64())
	case Uint8:
		return widen(r.AsUint8())
	case Bool:
		src := r.AsBool()
		out := make([]float64, len(src))
		for i, v := range src {
			if v {
				out[i] = 1
			}
		}
		return out
	default:
		panic("unsupported type")
	}
}

func widen[E constraints.Integer | constraints.Float](src []E) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}
