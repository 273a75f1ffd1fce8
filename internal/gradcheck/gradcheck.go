// Package gradcheck compares analytic gradients against centered finite differences.
package gradcheck

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/convnet/internal/tensor"
)

// DefaultStep is the finite-difference step used when none is given.
const DefaultStep = 1e-6

// Numerical returns df/dx for every element of x using the centered formula
//
//	(f(x + h·e_i) - f(x - h·e_i)) / 2h
//
// f is evaluated with x perturbed in place; x holds its original values
// again when Numerical returns.
func Numerical(f func() float64, x *tensor.RawTensor, step float64) []float64 {
	if step <= 0 {
		step = DefaultStep
	}
	origin := x.Float64s()
	defer load(x, origin)

	return fd.Gradient(nil, func(v []float64) float64 {
		load(x, v)
		return f()
	}, origin, &fd.Settings{
		Formula: fd.Central,
		Step:    step,
	})
}

// NumericalArray returns the numerical gradient of sum(f() * dout) w.r.t. x.
// It checks backward functions of layers whose output is a tensor.
func NumericalArray(f func() *tensor.RawTensor, x, dout *tensor.RawTensor, step float64) []float64 {
	upstream := dout.Float64s()
	return Numerical(func() float64 {
		return floats.Dot(f().Float64s(), upstream)
	}, x, step)
}

func load(x *tensor.RawTensor, values []float64) {
	for i, v := range values {
		x.SetFloat64At(i, v)
	}
}

// RelError returns the largest element-wise relative error
//
//	|a - b| / max(1e-8, |a| + |b|)
func RelError(a, b []float64) float64 {
	worst := 0.0
	for i := range a {
		denom := math.Max(1e-8, math.Abs(a[i])+math.Abs(b[i]))
		worst = math.Max(worst, math.Abs(a[i]-b[i])/denom)
	}
	return worst
}

// MaxAbsError returns the largest element-wise absolute difference.
func MaxAbsError(a, b []float64) float64 {
	return floats.Distance(a, b, math.Inf(1))
}

// Compare returns an error naming the first element where analytic and
// numeric disagree by more than atol + rtol*max(|a|, |n|).
//
// The absolute floor covers entries whose true gradient is close to zero,
// where finite-difference round-off dominates the relative error.
func Compare(analytic, numeric []float64, rtol, atol float64) error {
	if len(analytic) != len(numeric) {
		return errors.Errorf("gradient length mismatch: analytic %d, numeric %d", len(analytic), len(numeric))
	}
	for i := range analytic {
		a, n := analytic[i], numeric[i]
		if math.IsNaN(a) || math.IsNaN(n) {
			return errors.Errorf("element %d: NaN gradient (analytic %g, numeric %g)", i, a, n)
		}
		tol := atol + rtol*math.Max(math.Abs(a), math.Abs(n))
		if diff := math.Abs(a - n); diff > tol {
			return errors.Errorf("element %d: analytic %g, numeric %g, |diff| %g > tol %g", i, a, n, diff, tol)
		}
	}
	return nil
}
