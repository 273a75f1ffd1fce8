package cpu

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convnet/internal/tensor"
)

func TestConvParam_OutputSize(t *testing.T) {
	tests := []struct {
		name           string
		param          ConvParam
		in, kernel, want int
	}{
		{"same padding 3x3", ConvParam{Stride: 1, Pad: 1}, 16, 3, 16},
		{"same padding 7x7", ConvParam{Stride: 1, Pad: 3}, 32, 7, 32},
		{"valid 5x5", ConvParam{Stride: 1, Pad: 0}, 28, 5, 24},
		{"stride 2", ConvParam{Stride: 2, Pad: 1}, 4, 4, 2},
		{"even 4x4 shrinks by one", ConvParam{Stride: 1, Pad: 1}, 16, 4, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.param.OutputSize(tt.in, tt.kernel))
		})
	}
}

// TestConvForward_KnownValues sums 3x3 neighborhoods of an all-ones image.
func TestConvForward_KnownValues(t *testing.T) {
	backend := New()

	x := fromSlice(t, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{1, 1, 3, 3})
	w := fromSlice(t, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{1, 1, 3, 3})
	b := fromSlice(t, []float64{0.5}, tensor.Shape{1})

	out, cache := backend.ConvForward(x, w, b, ConvParam{Stride: 1, Pad: 1})

	assert.Equal(t, tensor.Shape{1, 1, 3, 3}, out.Shape())
	// Corners see 4 pixels, edges 6, the center 9.
	assert.Equal(t, []float64{4.5, 6.5, 4.5, 6.5, 9.5, 6.5, 4.5, 6.5, 4.5}, out.AsFloat64())
	assert.Equal(t, 3, cache.HOut)
	assert.Equal(t, 3, cache.WOut)
	assert.Equal(t, tensor.Shape{9, 9}, cache.Cols.Shape())
}

// TestConvForward_MultiChannel checks per-filter channel sums against a direct loop.
func TestConvForward_MultiChannel(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(7))

	x := randn(t, rng, tensor.Shape{2, 3, 4, 4})
	w := randn(t, rng, tensor.Shape{2, 3, 3, 3})
	b := randn(t, rng, tensor.Shape{2})
	p := ConvParam{Stride: 1, Pad: 0}

	out, _ := backend.ConvForward(x, w, b, p)
	require.Equal(t, tensor.Shape{2, 2, 2, 2}, out.Shape())

	xd, wd, bd, od := x.AsFloat64(), w.AsFloat64(), b.AsFloat64(), out.AsFloat64()
	for n := 0; n < 2; n++ {
		for f := 0; f < 2; f++ {
			for i := 0; i < 2; i++ {
				for j := 0; j < 2; j++ {
					want := bd[f]
					for c := 0; c < 3; c++ {
						for kh := 0; kh < 3; kh++ {
							for kw := 0; kw < 3; kw++ {
								want += xd[((n*3+c)*4+i+kh)*4+j+kw] * wd[((f*3+c)*3+kh)*3+kw]
							}
						}
					}
					assert.InDelta(t, want, od[((n*2+f)*2+i)*2+j], 1e-12)
				}
			}
		}
	}
}

func TestConvForward_Float32(t *testing.T) {
	backend := New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	require.NoError(t, err)
	w, err := tensor.FromSlice([]float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})
	require.NoError(t, err)
	b, err := tensor.FromSlice([]float32{0}, tensor.Shape{1})
	require.NoError(t, err)

	out, _ := backend.ConvForward(x, w, b, ConvParam{Stride: 1, Pad: 0})
	assert.Equal(t, tensor.Float32, out.DType())
	assert.Equal(t, []float32{10}, out.AsFloat32())
}

func TestConvBackward_NumericalGradient(t *testing.T) {
	backend := New()

	tests := []struct {
		name   string
		xShape tensor.Shape
		wShape tensor.Shape
		param  ConvParam
	}{
		{"3x3 same padding", tensor.Shape{2, 3, 5, 5}, tensor.Shape{3, 3, 3, 3}, ConvParam{Stride: 1, Pad: 1}},
		{"3x3 stride 2", tensor.Shape{2, 3, 5, 5}, tensor.Shape{3, 3, 3, 3}, ConvParam{Stride: 2, Pad: 1}},
		{"1x1 no padding", tensor.Shape{1, 2, 3, 3}, tensor.Shape{4, 2, 1, 1}, ConvParam{Stride: 1, Pad: 0}},
		{"4x4 even padding", tensor.Shape{2, 2, 5, 5}, tensor.Shape{2, 2, 4, 4}, ConvParam{Stride: 1, Pad: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(231))
			x := randn(t, rng, tt.xShape)
			w := randn(t, rng, tt.wShape)
			b := randn(t, rng, tensor.Shape{tt.wShape[0]})

			out, cache := backend.ConvForward(x, w, b, tt.param)
			dout := randn(t, rng, out.Shape())
			dx, dw, db := backend.ConvBackward(dout, cache)

			forward := func() *tensor.RawTensor {
				o, _ := backend.ConvForward(x, w, b, tt.param)
				return o
			}
			requireGradient(t, "dx", dx, forward, x, dout)
			requireGradient(t, "dw", dw, forward, w, dout)
			requireGradient(t, "db", db, forward, b, dout)
		})
	}
}

func TestConvForward_Panics(t *testing.T) {
	backend := New()
	x := tensor.MustRaw(tensor.Shape{1, 3, 4, 4}, tensor.Float64)
	b := tensor.MustRaw(tensor.Shape{2}, tensor.Float64)

	t.Run("channel mismatch", func(t *testing.T) {
		w := tensor.MustRaw(tensor.Shape{2, 1, 3, 3}, tensor.Float64)
		assert.Panics(t, func() { backend.ConvForward(x, w, b, ConvParam{Stride: 1, Pad: 1}) })
	})
	t.Run("dtype mismatch", func(t *testing.T) {
		w := tensor.MustRaw(tensor.Shape{2, 3, 3, 3}, tensor.Float32)
		assert.Panics(t, func() { backend.ConvForward(x, w, b, ConvParam{Stride: 1, Pad: 1}) })
	})
	t.Run("kernel larger than input", func(t *testing.T) {
		w := tensor.MustRaw(tensor.Shape{2, 3, 7, 7}, tensor.Float64)
		assert.Panics(t, func() { backend.ConvForward(x, w, b, ConvParam{Stride: 1, Pad: 0}) })
	})
	t.Run("input not 4D", func(t *testing.T) {
		w := tensor.MustRaw(tensor.Shape{2, 3, 3, 3}, tensor.Float64)
		flat := tensor.MustRaw(tensor.Shape{3, 16}, tensor.Float64)
		assert.Panics(t, func() { backend.ConvForward(flat, w, b, ConvParam{Stride: 1, Pad: 1}) })
	})
}
