package tensor

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Data returns the tensor's elements as []T.
// Panics if T does not match the tensor's dtype.
func Data[T Float](r *RawTensor) []T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(r.AsFloat32()).([]T)
	default:
		return any(r.AsFloat64()).([]T)
	}
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType) (*RawTensor, error) {
	return NewRaw(shape, dtype)
}

// FromSlice creates a tensor holding a copy of data.
//
// Example:
//
//	x, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice[T Float](data []T, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, errors.Wrapf(ErrInvalidShape, "data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	r, err := NewRaw(shape, DataTypeOf[T]())
	if err != nil {
		return nil, err
	}
	copy(Data[T](r), data)
	return r, nil
}

// FromFloat64s creates a tensor of the given dtype from float64 values.
func FromFloat64s(data []float64, shape Shape, dtype DataType) (*RawTensor, error) {
	r, err := FromSlice(data, shape)
	if err != nil {
		return nil, err
	}
	if dtype == Float64 {
		return r, nil
	}
	if !dtype.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedDType, "%d", int(dtype))
	}
	return r.Cast(dtype), nil
}

// Randn creates a tensor with values drawn from N(0, std²).
//
// Samples are drawn in float64 from rng and then stored at dtype precision,
// so two tensors built from identically seeded sources hold the same values
// up to rounding.
func Randn(shape Shape, dtype DataType, std float64, rng *rand.Rand) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	values := make([]float64, shape.NumElements())
	for i := range values {
		values[i] = std * rng.NormFloat64()
	}
	return FromFloat64s(values, shape, dtype)
}
