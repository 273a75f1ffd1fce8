// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/convnet/internal/tensor"
)

// RawTensor is a dense tensor stored as a flat byte buffer.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32)
//	data := raw.AsFloat32() // Type-safe access
//	clone := raw.Copy()     // Deep copy
type RawTensor = tensor.RawTensor

// Shape is the size of each tensor dimension, outermost first.
type Shape = tensor.Shape

// DataType identifies the element type of a tensor.
type DataType = tensor.DataType

// Float is the constraint satisfied by the supported element types.
type Float = tensor.Float

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
)

// Errors returned by the constructors.
var (
	ErrInvalidShape     = tensor.ErrInvalidShape
	ErrUnsupportedDType = tensor.ErrUnsupportedDType
)

// NewRaw allocates a zero-filled tensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// Zeros is an alias of NewRaw.
func Zeros(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.Zeros(shape, dtype)
}

// FromSlice copies data into a new tensor whose dtype matches T.
func FromSlice[T Float](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// FromFloat64s copies data into a new tensor stored at dtype precision.
func FromFloat64s(data []float64, shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.FromFloat64s(data, shape, dtype)
}

// Randn creates a tensor with values drawn from N(0, std²).
func Randn(shape Shape, dtype DataType, std float64, rng *rand.Rand) (*RawTensor, error) {
	return tensor.Randn(shape, dtype, std, rng)
}

// Data returns the elements of r as []T without copying.
// Panics if T does not match r's dtype.
func Data[T Float](r *RawTensor) []T {
	return tensor.Data[T](r)
}
