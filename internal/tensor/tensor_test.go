package tensor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_NumElements(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  int
	}{
		{"scalar", Shape{}, 1},
		{"vector", Shape{5}, 5},
		{"matrix", Shape{3, 4}, 12},
		{"images", Shape{2, 3, 16, 16}, 1536},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.shape.NumElements())
		})
	}
}

func TestShape_Validate(t *testing.T) {
	assert.NoError(t, Shape{1, 2, 3}.Validate())
	assert.ErrorIs(t, Shape{1, 0, 3}.Validate(), ErrInvalidShape)
	assert.ErrorIs(t, Shape{-2}.Validate(), ErrInvalidShape)
}

func TestShape_ComputeStrides(t *testing.T) {
	assert.Equal(t, []int{24, 12, 4, 1}, Shape{2, 2, 3, 4}.ComputeStrides())
	assert.Equal(t, []int{}, Shape{}.ComputeStrides())
}

func TestShape_Flatten2D(t *testing.T) {
	assert.Equal(t, Shape{2, 48}, Shape{2, 3, 4, 4}.Flatten2D())
	assert.Equal(t, Shape{5, 7}, Shape{5, 7}.Flatten2D())
	assert.Equal(t, Shape{4, 1}, Shape{4}.Flatten2D())
}

func TestNewRaw(t *testing.T) {
	r, err := NewRaw(Shape{2, 3}, Float32)
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 3}, r.Shape())
	assert.Equal(t, Float32, r.DType())
	assert.Equal(t, 24, r.ByteSize())
	for _, v := range r.AsFloat32() {
		assert.Zero(t, v)
	}

	_, err = NewRaw(Shape{2, 0}, Float64)
	assert.ErrorIs(t, err, ErrInvalidShape)
	assert.ErrorContains(t, err, "index 1")

	_, err = NewRaw(Shape{2}, DataType(42))
	assert.ErrorIs(t, err, ErrUnsupportedDType)
}

func TestRawTensor_WrongDTypeAccessPanics(t *testing.T) {
	r := MustRaw(Shape{2}, Float64)
	assert.Panics(t, func() { _ = r.AsFloat32() })
	assert.NotPanics(t, func() { _ = r.AsFloat64() })
}

func TestFromSlice(t *testing.T) {
	x, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, Float64, x.DType())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, x.AsFloat64())

	_, err = FromSlice([]float32{1, 2, 3}, Shape{2, 2})
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestFromFloat64s_Cast(t *testing.T) {
	x, err := FromFloat64s([]float64{0.5, -1.25}, Shape{2}, Float32)
	require.NoError(t, err)
	assert.Equal(t, Float32, x.DType())
	assert.Equal(t, []float32{0.5, -1.25}, x.AsFloat32())

	_, err = FromFloat64s([]float64{1}, Shape{1}, DataType(42))
	assert.ErrorIs(t, err, ErrUnsupportedDType)
}

func TestRawTensor_ReshapeSharesStorage(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{1, 2, 3})
	require.NoError(t, err)

	flat := x.Reshape(Shape{1, 6})
	assert.Equal(t, Shape{1, 6}, flat.Shape())
	flat.AsFloat32()[5] = 60
	assert.Equal(t, float32(60), x.AsFloat32()[5])

	assert.Panics(t, func() { x.Reshape(Shape{4}) })
}

func TestRawTensor_CopyIsDeep(t *testing.T) {
	x, err := FromSlice([]float64{1, 2}, Shape{2})
	require.NoError(t, err)
	y := x.Copy()
	y.AsFloat64()[0] = 10
	assert.Equal(t, 1.0, x.AsFloat64()[0])
}

func TestRawTensor_CastRoundTrip(t *testing.T) {
	x, err := FromSlice([]float64{1.5, -2, 3.25}, Shape{3})
	require.NoError(t, err)
	y := x.Cast(Float32)
	assert.Equal(t, Float32, y.DType())
	z := y.Cast(Float64)
	assert.Equal(t, x.AsFloat64(), z.AsFloat64())
}

func TestRawTensor_Float64At(t *testing.T) {
	x, err := FromSlice([]float32{1, 2, 3}, Shape{3})
	require.NoError(t, err)
	x.SetFloat64At(1, 7.5)
	assert.Equal(t, 7.5, x.Float64At(1))
	assert.Equal(t, []float64{1, 7.5, 3}, x.Float64s())
}

func TestRandn_Deterministic(t *testing.T) {
	a, err := Randn(Shape{4, 5}, Float64, 0.1, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	b, err := Randn(Shape{4, 5}, Float64, 0.1, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Equal(t, a.AsFloat64(), b.AsFloat64())

	c, err := Randn(Shape{4, 5}, Float32, 0.1, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	for i, v := range a.AsFloat64() {
		assert.Equal(t, float32(v), c.AsFloat32()[i])
	}
}

func TestRandn_Scale(t *testing.T) {
	r, err := Randn(Shape{10000}, Float64, 1e-2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	std := math.Sqrt(r.SumSquares() / float64(r.NumElements()))
	assert.InDelta(t, 1e-2, std, 1e-3)
}

func TestRawTensor_AddScaledAndSumSquares(t *testing.T) {
	w, err := FromSlice([]float32{1, -2, 3}, Shape{3})
	require.NoError(t, err)
	g, err := FromSlice([]float32{0, 0, 0}, Shape{3})
	require.NoError(t, err)

	assert.InDelta(t, 14.0, w.SumSquares(), 1e-9)

	g.AddScaled(0.5, w)
	assert.Equal(t, []float32{0.5, -1, 1.5}, g.AsFloat32())

	other := MustRaw(Shape{3}, Float64)
	assert.Panics(t, func() { g.AddScaled(1, other) })
}

func TestRawTensor_AllFinite(t *testing.T) {
	x, err := FromSlice([]float64{1, 2}, Shape{2})
	require.NoError(t, err)
	assert.True(t, x.AllFinite())
	x.AsFloat64()[1] = math.Inf(1)
	assert.False(t, x.AllFinite())
	x.AsFloat64()[1] = math.NaN()
	assert.False(t, x.AllFinite())
}

func TestData_Generic(t *testing.T) {
	x := MustRaw(Shape{2}, Float32)
	Data[float32](x)[0] = 3
	assert.Equal(t, float32(3), x.AsFloat32()[0])
	assert.Panics(t, func() { _ = Data[float64](x) })
	assert.Equal(t, Float64, DataTypeOf[float64]())
	assert.Equal(t, Float32, DataTypeOf[float32]())
}
