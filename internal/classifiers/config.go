package classifiers

import (
	"math"

	"github.com/pkg/errors"

	"github.com/born-ml/convnet/internal/backend/cpu"
	"github.com/born-ml/convnet/internal/tensor"
)

// ErrInvalidConfig is returned (wrapped) when a Config cannot describe a network.
var ErrInvalidConfig = errors.New("invalid convnet config")

// Pooling is fixed at 2x2 windows with stride 2.
const (
	poolSize   = 2
	poolStride = 2
	convStride = 1
)

// Config describes a ThreeLayerConvNet.
type Config struct {
	InputDim    [3]int          // Input size (C, H, W)
	NumFilters  int             // Filters in the convolutional layer
	FilterSize  int             // Side of the square filters
	HiddenDim   int             // Units in the hidden affine layer
	NumClasses  int             // Scores produced by the output affine layer
	WeightScale float64         // Standard deviation of the weight initialization
	Reg         float64         // L2 regularization strength
	DType       tensor.DataType // Precision of parameters and computation
	Seed        int64           // Seed of the weight initialization
}

// DefaultConfig returns the configuration of a network for 32x32 RGB images:
// 32 filters of 7x7, 100 hidden units, 10 classes, float32.
func DefaultConfig() Config {
	return Config{
		InputDim:    [3]int{3, 32, 32},
		NumFilters:  32,
		FilterSize:  7,
		HiddenDim:   100,
		NumClasses:  10,
		WeightScale: 1e-3,
		Reg:         0,
		DType:       tensor.Float32,
	}
}

// ConvParam returns the convolution hyperparameters: stride 1 and padding
// (FilterSize-1)/2, which preserves the input's spatial size for odd filters
// and shrinks it by one for even filters.
func (c Config) ConvParam() cpu.ConvParam {
	return cpu.ConvParam{Stride: convStride, Pad: (c.FilterSize - 1) / 2}
}

// PoolParam returns the max-pooling hyperparameters.
func (c Config) PoolParam() cpu.PoolParam {
	return cpu.PoolParam{Height: poolSize, Width: poolSize, Stride: poolStride}
}

// PooledDims returns the spatial size (HH, WW) of the feature maps after
// conv and pool.
func (c Config) PooledDims() (int, int) {
	conv := c.ConvParam()
	h1 := conv.OutputSize(c.InputDim[1], c.FilterSize)
	w1 := conv.OutputSize(c.InputDim[2], c.FilterSize)
	return c.PoolParam().OutputSize(h1, w1)
}

// ConvOutDim returns the number of features fed to the hidden layer,
// NumFilters * HH * WW.
func (c Config) ConvOutDim() int {
	hh, ww := c.PooledDims()
	return c.NumFilters * hh * ww
}

// Validate reports whether c describes a network whose layers all have
// positive sizes.
func (c Config) Validate() error {
	for i, name := range []string{"channels", "height", "width"} {
		if c.InputDim[i] <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "input %s must be positive, got %d", name, c.InputDim[i])
		}
	}
	counts := []struct {
		name  string
		value int
	}{
		{"num filters", c.NumFilters},
		{"filter size", c.FilterSize},
		{"hidden dim", c.HiddenDim},
		{"num classes", c.NumClasses},
	}
	for _, count := range counts {
		if count.value <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "%s must be positive, got %d", count.name, count.value)
		}
	}
	if c.WeightScale < 0 || math.IsNaN(c.WeightScale) || math.IsInf(c.WeightScale, 0) {
		return errors.Wrapf(ErrInvalidConfig, "weight scale must be finite and non-negative, got %g", c.WeightScale)
	}
	if c.Reg < 0 || math.IsNaN(c.Reg) || math.IsInf(c.Reg, 0) {
		return errors.Wrapf(ErrInvalidConfig, "regularization must be finite and non-negative, got %g", c.Reg)
	}
	if !c.DType.Valid() {
		return errors.Wrapf(ErrInvalidConfig, "unsupported dtype %d", int(c.DType))
	}

	conv := c.ConvParam()
	h1 := conv.OutputSize(c.InputDim[1], c.FilterSize)
	w1 := conv.OutputSize(c.InputDim[2], c.FilterSize)
	if h1 < poolSize || w1 < poolSize {
		return errors.Wrapf(ErrInvalidConfig, "conv output %dx%d of input %dx%d too small for %dx%d pooling",
			h1, w1, c.InputDim[1], c.InputDim[2], poolSize, poolSize)
	}
	if hh, ww := c.PooledDims(); hh <= 0 || ww <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "pooled feature map %dx%d is empty", hh, ww)
	}
	return nil
}
