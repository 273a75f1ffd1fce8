package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/parallel"
	"github.com/born-ml/convnet/internal/tensor"
)

// ConvBackward computes the gradients of a convolution.
//
// Given dout [N, F, HOut, WOut] it returns:
//   - dx [N, C, H, W]: col2im of dout @ w (transposed convolution)
//   - dw [F, C, HH, WW]: doutᵀ @ cols
//   - db [F]: dout summed over batch and spatial positions
//
// References:
//   - "A guide to convolution arithmetic for deep learning" (Dumoulin & Visin, 2016)
func (cpu *CPUBackend) ConvBackward(dout *tensor.RawTensor, cache *ConvCache) (dx, dw, db *tensor.RawTensor) {
	xs, ws := cache.X.Shape(), cache.W.Shape()
	requireShape("conv backward", "dout", dout, tensor.Shape{xs[0], ws[0], cache.HOut, cache.WOut})
	requireSameDType("conv backward", dout, cache.X)

	dx = tensor.MustRaw(xs, dout.DType())
	dw = tensor.MustRaw(ws, dout.DType())
	db = tensor.MustRaw(tensor.Shape{ws[0]}, dout.DType())

	switch dout.DType() {
	case tensor.Float32:
		convBackward[float32](dx, dw, db, dout, cache, cpu.par)
	case tensor.Float64:
		convBackward[float64](dx, dw, db, dout, cache, cpu.par)
	default:
		panic(fmt.Sprintf("conv backward: unsupported dtype %s", dout.DType()))
	}
	return dx, dw, db
}

func convBackward[T tensor.Float](dx, dw, db, dout *tensor.RawTensor, cache *ConvCache, par parallel.Config) {
	xs, ws := cache.X.Shape(), cache.W.Shape()
	N, C, H, W := xs[0], xs[1], xs[2], xs[3]
	F, HH, WW := ws[0], ws[2], ws[3]
	HOut, WOut := cache.HOut, cache.WOut
	plane := HOut * WOut
	rows := N * plane
	colWidth := C * HH * WW

	// Rearrange [N, F, HOut, WOut] into [N*HOut*WOut, F], accumulating db on the way.
	doutData := tensor.Data[T](dout)
	dbData := tensor.Data[T](db)
	doutMat := make([]T, rows*F)
	for n := 0; n < N; n++ {
		for f := 0; f < F; f++ {
			src := doutData[(n*F+f)*plane : (n*F+f+1)*plane]
			for pos, v := range src {
				doutMat[(n*plane+pos)*F+f] = v
				dbData[f] += v
			}
		}
	}

	// dw: [N*HOut*WOut, F]ᵀ @ [N*HOut*WOut, C*HH*WW] -> [F, C*HH*WW]
	gemm(true, false, F, colWidth, rows, doutMat, tensor.Data[T](cache.Cols), tensor.Data[T](dw))

	// dcols: [N*HOut*WOut, F] @ [F, C*HH*WW] -> [N*HOut*WOut, C*HH*WW]
	dcols := make([]T, rows*colWidth)
	gemm(false, false, rows, colWidth, F, doutMat, tensor.Data[T](cache.W), dcols)

	dxData := tensor.Data[T](dx)
	parallel.For(N, plane*colWidth, func(n int) {
		col2im(dxData, dcols, n, C, H, W, HH, WW, HOut, WOut, cache.Param.Stride, cache.Param.Pad)
	}, par)
}

// col2im is the adjoint of im2col for image n: it scatters the patch
// gradients of that image back onto its input grid, summing contributions
// from overlapping receptive fields. Entries that fell into the padding are
// dropped.
func col2im[T tensor.Float](dst, colBuf []T, n, C, H, W, KH, KW, HOut, WOut, stride, padding int) {
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
							dst[((n*C+c)*H+h)*W+w] += colBuf[colIdx]
						}
						colIdx++
					}
				}
			}
		}
	}
}
