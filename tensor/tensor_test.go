// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convnet/tensor"
)

// TestRawTensorAPI verifies the RawTensor alias exposes the expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32)
	require.NoError(t, err)

	assert.True(t, raw.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, tensor.Float32, raw.DType())
	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, 6*4, raw.ByteSize())
	assert.Len(t, raw.AsFloat32(), 6)

	clone := raw.Copy()
	clone.AsFloat32()[0] = 1
	assert.Zero(t, raw.AsFloat32()[0])
}

func TestConstructors(t *testing.T) {
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	assert.Equal(t, tensor.Float64, x.DType())
	assert.Equal(t, []float64{1, 2, 3, 4}, tensor.Data[float64](x))

	y, err := tensor.FromFloat64s([]float64{0.5, 1.5}, tensor.Shape{2}, tensor.Float32)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 1.5}, tensor.Data[float32](y))

	z, err := tensor.Zeros(tensor.Shape{3}, tensor.Float64)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, z.AsFloat64())

	r, err := tensor.Randn(tensor.Shape{4, 4}, tensor.Float32, 1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{4, 4}, r.Shape())

	_, err = tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{2, 2})
	assert.ErrorIs(t, err, tensor.ErrInvalidShape)

	_, err = tensor.NewRaw(tensor.Shape{2}, tensor.DataType(7))
	assert.ErrorIs(t, err, tensor.ErrUnsupportedDType)
}
