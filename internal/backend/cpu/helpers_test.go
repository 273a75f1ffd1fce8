package cpu

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/convnet/internal/gradcheck"
	"github.com/born-ml/convnet/internal/tensor"
)

// Finite-difference tolerances for float64 layer checks.
const (
	checkRTol = 1e-5
	checkATol = 1e-8
	checkStep = 1e-6
)

func randn(t *testing.T, rng *rand.Rand, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.Randn(shape, tensor.Float64, 1, rng)
	require.NoError(t, err)
	return r
}

func fromSlice(t *testing.T, data []float64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return r
}

// requireGradient checks an analytic gradient against the numerical gradient
// of Σ f()·dout with respect to x.
func requireGradient(t *testing.T, name string, analytic *tensor.RawTensor, f func() *tensor.RawTensor, x, dout *tensor.RawTensor) {
	t.Helper()
	require.True(t, analytic.Shape().Equal(x.Shape()), "%s: gradient shape %v, want %v", name, analytic.Shape(), x.Shape())
	numeric := gradcheck.NumericalArray(f, x, dout, checkStep)
	require.NoError(t, gradcheck.Compare(analytic.Float64s(), numeric, checkRTol, checkATol), name)
}
