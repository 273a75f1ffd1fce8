package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/parallel"
	"github.com/born-ml/convnet/internal/tensor"
)

// PoolParam holds the hyperparameters of a max-pooling layer.
type PoolParam struct {
	Height int // Pooling window height
	Width  int // Pooling window width
	Stride int // Step between windows, in both directions
}

// OutputSize returns the pooled spatial dimensions for an h×w input:
//
//	out = 1 + (in - window) / stride
func (p PoolParam) OutputSize(h, w int) (int, int) {
	return 1 + (h-p.Height)/p.Stride, 1 + (w-p.Width)/p.Stride
}

// PoolCache holds the forward-pass values needed by MaxPoolBackward.
type PoolCache struct {
	InputShape tensor.Shape
	// MaxIndices[i] is the flat input index that produced output element i.
	MaxIndices []int
	Param      PoolParam
}

// MaxPoolForward performs 2D max pooling.
//
// Input shape:  [N, C, H, W]
// Output shape: [N, C, HOut, WOut]
//
// Example (2x2 pool, stride=2):
//
//	Input: [[1,2,3,4],    Output: [[6,8],
//	        [5,6,7,8],             [14,16]]
//	        [9,10,11,12],
//	        [13,14,15,16]]
//
// Ties resolve to the first maximum in row-major window order.
func (cpu *CPUBackend) MaxPoolForward(x *tensor.RawTensor, p PoolParam) (*tensor.RawTensor, *PoolCache) {
	requireRank("maxpool", "input", x, 4)

	xs := x.Shape()
	N, C, H, W := xs[0], xs[1], xs[2], xs[3]

	if p.Height <= 0 || p.Width <= 0 {
		panic(fmt.Sprintf("maxpool: invalid window %dx%d", p.Height, p.Width))
	}
	if p.Stride <= 0 {
		panic(fmt.Sprintf("maxpool: invalid stride %d", p.Stride))
	}
	if p.Height > H || p.Width > W {
		panic(fmt.Sprintf("maxpool: window %dx%d too large for input %dx%d", p.Height, p.Width, H, W))
	}

	HOut, WOut := p.OutputSize(H, W)
	out := tensor.MustRaw(tensor.Shape{N, C, HOut, WOut}, x.DType())
	maxIndices := make([]int, N*C*HOut*WOut)

	switch x.DType() {
	case tensor.Float32:
		maxPoolForward(tensor.Data[float32](out), tensor.Data[float32](x), maxIndices, N*C, H, W, HOut, WOut, p, cpu.par)
	case tensor.Float64:
		maxPoolForward(tensor.Data[float64](out), tensor.Data[float64](x), maxIndices, N*C, H, W, HOut, WOut, p, cpu.par)
	default:
		panic(fmt.Sprintf("maxpool: unsupported dtype %s", x.DType()))
	}

	return out, &PoolCache{InputShape: xs.Clone(), MaxIndices: maxIndices, Param: p}
}

// maxPoolForward pools each of the N*C contiguous H×W planes of in.
func maxPoolForward[T tensor.Float](out, in []T, maxIndices []int, planes, H, W, HOut, WOut int, p PoolParam, par parallel.Config) {
	parallel.For(planes, H*W, func(plane int) {
		offset := plane * H * W
		outIdx := plane * HOut * WOut

		for outH := 0; outH < HOut; outH++ {
			hStart := outH * p.Stride

			for outW := 0; outW < WOut; outW++ {
				wStart := outW * p.Stride

				best := offset + hStart*W + wStart
				for kh := 0; kh < p.Height; kh++ {
					rowStart := offset + (hStart+kh)*W + wStart
					for kw := 0; kw < p.Width; kw++ {
						if in[rowStart+kw] > in[best] {
							best = rowStart + kw
						}
					}
				}

				out[outIdx] = in[best]
				maxIndices[outIdx] = best
				outIdx++
			}
		}
	}, par)
}
