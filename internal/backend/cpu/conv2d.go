package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/parallel"
	"github.com/born-ml/convnet/internal/tensor"
)

// ConvParam holds the hyperparameters of a convolution.
type ConvParam struct {
	Stride int // Step between receptive fields, in both directions
	Pad    int // Zero padding added on every border
}

// OutputSize applies the convolution output-size formula to one spatial dimension:
//
//	out = 1 + (in + 2*pad - kernel) / stride
func (p ConvParam) OutputSize(in, kernel int) int {
	return 1 + (in+2*p.Pad-kernel)/p.Stride
}

// ConvCache holds the forward-pass values needed by ConvBackward.
type ConvCache struct {
	X     *tensor.RawTensor // Input [N, C, H, W]
	W     *tensor.RawTensor // Filters [F, C, HH, WW]
	Cols  *tensor.RawTensor // im2col patches [N*HOut*WOut, C*HH*WW]
	Param ConvParam
	HOut  int
	WOut  int
}

// ConvForward computes a 2D convolution using the im2col algorithm.
//
// Input shape:  x [N, C, H, W], w [F, C, HH, WW], b [F]
// Output shape: [N, F, HOut, WOut]
//
// Algorithm: Im2col
//  1. Transform input patches into rows: [N*HOut*WOut, C*HH*WW]
//  2. Multiply by the filter matrix transposed: [C*HH*WW, F]
//  3. Add the bias of each filter
//  4. Rearrange [N*HOut*WOut, F] into [N, F, HOut, WOut]
func (cpu *CPUBackend) ConvForward(x, w, b *tensor.RawTensor, p ConvParam) (*tensor.RawTensor, *ConvCache) {
	requireRank("conv", "input", x, 4)
	requireRank("conv", "filters", w, 4)
	requireRank("conv", "bias", b, 1)
	requireSameDType("conv", x, w, b)

	xs, ws := x.Shape(), w.Shape()
	N, C, H, W := xs[0], xs[1], xs[2], xs[3]
	F, CW, HH, WW := ws[0], ws[1], ws[2], ws[3]

	if C != CW {
		panic(fmt.Sprintf("conv: input channels %d != filter channels %d", C, CW))
	}
	requireShape("conv", "bias", b, tensor.Shape{F})
	if p.Stride <= 0 || p.Pad < 0 {
		panic(fmt.Sprintf("conv: invalid stride %d / pad %d", p.Stride, p.Pad))
	}
	if HH > H+2*p.Pad || WW > W+2*p.Pad {
		panic(fmt.Sprintf("conv: filter %dx%d larger than padded input %dx%d", HH, WW, H+2*p.Pad, W+2*p.Pad))
	}

	HOut := p.OutputSize(H, HH)
	WOut := p.OutputSize(W, WW)
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("conv: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", HOut, WOut))
	}

	cols := tensor.MustRaw(tensor.Shape{N * HOut * WOut, C * HH * WW}, x.DType())
	out := tensor.MustRaw(tensor.Shape{N, F, HOut, WOut}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		convForward[float32](out, x, w, b, cols, p, HOut, WOut, cpu.par)
	case tensor.Float64:
		convForward[float64](out, x, w, b, cols, p, HOut, WOut, cpu.par)
	default:
		panic(fmt.Sprintf("conv: unsupported dtype %s", x.DType()))
	}

	return out, &ConvCache{X: x, W: w, Cols: cols, Param: p, HOut: HOut, WOut: WOut}
}

func convForward[T tensor.Float](out, x, w, b, cols *tensor.RawTensor, p ConvParam, HOut, WOut int, par parallel.Config) {
	xs, ws := x.Shape(), w.Shape()
	N, C, H, W := xs[0], xs[1], xs[2], xs[3]
	F, HH, WW := ws[0], ws[2], ws[3]

	colData := tensor.Data[T](cols)
	inputData := tensor.Data[T](x)
	parallel.For(N, HOut*WOut*C*HH*WW, func(n int) {
		im2col(colData, inputData, n, C, H, W, HH, WW, HOut, WOut, p.Stride, p.Pad)
	}, par)

	// [N*HOut*WOut, C*HH*WW] @ [F, C*HH*WW]ᵀ -> [N*HOut*WOut, F]
	rows := N * HOut * WOut
	outMat := make([]T, rows*F)
	gemm(false, true, rows, F, C*HH*WW, colData, tensor.Data[T](w), outMat)

	bias := tensor.Data[T](b)
	outData := tensor.Data[T](out)
	plane := HOut * WOut
	for n := 0; n < N; n++ {
		for pos := 0; pos < plane; pos++ {
			row := outMat[(n*plane+pos)*F : (n*plane+pos+1)*F]
			for f, v := range row {
				outData[(n*F+f)*plane+pos] = v + bias[f]
			}
		}
	}
}

// im2col fills the patch rows of image n.
//
// Input: [N, C, H, W]
// Output: colBuf [N * HOut * WOut, C * KH * KW]
//
// Each row of colBuf corresponds to one output position; positions falling
// into the padding read as zero. Image n owns rows [n*HOut*WOut, (n+1)*HOut*WOut).
func im2col[T tensor.Float](colBuf, inputData []T, n, C, H, W, KH, KW, HOut, WOut, stride, padding int) {
	colIdx := n * HOut * WOut * C * KH * KW
	for outH := 0; outH < HOut; outH++ {
		for outW := 0; outW < WOut; outW++ {
			hStart := outH*stride - padding
			wStart := outW*stride - padding

			for c := 0; c < C; c++ {
				for kh := 0; kh < KH; kh++ {
					h := hStart + kh
					for kw := 0; kw < KW; kw++ {
						w := wStart + kw
						if h >= 0 && h < H && w >= 0 && w < W {
							colBuf[colIdx] = inputData[((n*C+c)*H+h)*W+w]
						} else {
							colBuf[colIdx] = 0
						}
						colIdx++
					}
				}
			}
		}
	}
}
