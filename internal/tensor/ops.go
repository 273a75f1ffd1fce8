package tensor

import (
	"fmt"
	"math"
)

// SumSquares returns the sum of squared elements, accumulated in float64.
func (r *RawTensor) SumSquares() float64 {
	switch r.dtype {
	case Float32:
		return sumSquares(r.AsFloat32())
	case Float64:
		return sumSquares(r.AsFloat64())
	default:
		panic(fmt.Sprintf("sum squares: unsupported dtype %s", r.dtype))
	}
}

func sumSquares[T Float](data []T) float64 {
	sum := 0.0
	for _, v := range data {
		f := float64(v)
		sum += f * f
	}
	return sum
}

// AddScaled performs r += alpha * other in place.
// Shapes and dtypes must match.
func (r *RawTensor) AddScaled(alpha float64, other *RawTensor) {
	if !r.shape.Equal(other.shape) || r.dtype != other.dtype {
		panic(fmt.Sprintf("add scaled: tensor %v %s does not match %v %s",
			r.shape, r.dtype, other.shape, other.dtype))
	}
	switch r.dtype {
	case Float32:
		addScaled(r.AsFloat32(), float32(alpha), other.AsFloat32())
	case Float64:
		addScaled(r.AsFloat64(), alpha, other.AsFloat64())
	default:
		panic(fmt.Sprintf("add scaled: unsupported dtype %s", r.dtype))
	}
}

func addScaled[T Float](dst []T, alpha T, src []T) {
	for i, v := range src {
		dst[i] += alpha * v
	}
}

// AllFinite reports whether every element is neither NaN nor infinite.
func (r *RawTensor) AllFinite() bool {
	for i := 0; i < r.NumElements(); i++ {
		v := r.Float64At(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Float64s returns a copy of the elements widened to float64.
func (r *RawTensor) Float64s() []float64 {
	out := make([]float64, r.NumElements())
	for i := range out {
		out[i] = r.Float64At(i)
	}
	return out
}
