package tensor

import "math/rand/v2"

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, DataTypeOf[T](), b.Device())
	if err != nil {
		panic(err) // Shape validation should prevent this
	}

	// Data is already zero-initialized by make()
	return New[T, B](raw, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float32](Shape{3, 3}, 3.14, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Rand creates a tensor with values uniformly distributed in [0, 1) drawn from rng.
// A nil rng uses the package-level source.
// Only works with float types.
//
// Example:
//
//	t := tensor.Rand[float32](Shape{64, 64, 32}, rand.New(rand.NewPCG(1, 2)), backend)
func Rand[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	next := rand.Float64 //nolint:gosec // G404: sampling does not need crypto/rand
	if rng != nil {
		next = rng.Float64
	}

	t := Zeros[T, B](shape, b)
	switch data := any(t.Data()).(type) {
	case []float32:
		for i := range data {
			data[i] = float32(next())
		}
	case []float64:
		for i := range data {
			data[i] = next()
		}
	default:
		panic("Rand only supports float32 and float64 types")
	}
	return t
}

// Iota creates a tensor whose elements count up from 0 in row-major order.
// Every element is distinct, which makes misplaced copies easy to detect.
// Not supported for bool.
func Iota[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	switch data := any(t.Data()).(type) {
	case []float32:
		for i := range data {
			data[i] = float32(i)
		}
	case []float64:
		for i := range data {
			data[i] = float64(i)
		}
	case []int32:
		for i := range data {
			data[i] = int32(i) //nolint:gosec // G115: i is within valid range.
		}
	case []int64:
		for i := range data {
			data[i] = int64(i)
		}
	case []uint8:
		for i := range data {
			data[i] = uint8(i) //nolint:gosec // G115: wraps intentionally for large tensors.
		}
	default:
		panic("Iota not supported for this type")
	}
	return t
}
