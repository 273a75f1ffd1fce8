package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// AffineCache holds the forward-pass values needed by AffineBackward.
type AffineCache struct {
	X *tensor.RawTensor // Input in its original shape [N, d1, ..., dk]
	W *tensor.RawTensor // Weights [D, M]
}

// AffineForward computes y = x @ w + b.
//
// The input x has shape [N, d1, ..., dk] and is treated as a matrix
// [N, D] with D = d1 * ... * dk. w is [D, M], b is [M]; the output is [N, M].
func (cpu *CPUBackend) AffineForward(x, w, b *tensor.RawTensor) (*tensor.RawTensor, *AffineCache) {
	if len(x.Shape()) < 2 {
		panic(fmt.Sprintf("affine: input must be at least 2D [N, ...], got shape %v", x.Shape()))
	}
	requireRank("affine", "weights", w, 2)
	requireRank("affine", "bias", b, 1)
	requireSameDType("affine", x, w, b)

	flat := x.Shape().Flatten2D()
	N, D := flat[0], flat[1]
	if w.Shape()[0] != D {
		panic(fmt.Sprintf("affine: input has %d features per sample, weights expect %d", D, w.Shape()[0]))
	}
	M := w.Shape()[1]
	requireShape("affine", "bias", b, tensor.Shape{M})

	out := tensor.MustRaw(tensor.Shape{N, M}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		affineForward[float32](out, x, w, b, N, D, M)
	case tensor.Float64:
		affineForward[float64](out, x, w, b, N, D, M)
	default:
		panic(fmt.Sprintf("affine: unsupported dtype %s", x.DType()))
	}
	return out, &AffineCache{X: x, W: w}
}

func affineForward[T tensor.Float](out, x, w, b *tensor.RawTensor, N, D, M int) {
	outData := tensor.Data[T](out)
	gemm(false, false, N, M, D, tensor.Data[T](x), tensor.Data[T](w), outData)

	bias := tensor.Data[T](b)
	for n := 0; n < N; n++ {
		row := outData[n*M : (n+1)*M]
		for j := range row {
			row[j] += bias[j]
		}
	}
}

// AffineBackward computes the gradients of an affine layer.
//
// Given dout [N, M] it returns dx with the original input shape,
// dw = xᵀ @ dout [D, M] and db = column sums of dout [M].
func (cpu *CPUBackend) AffineBackward(dout *tensor.RawTensor, cache *AffineCache) (dx, dw, db *tensor.RawTensor) {
	flat := cache.X.Shape().Flatten2D()
	N, D := flat[0], flat[1]
	M := cache.W.Shape()[1]
	requireShape("affine backward", "dout", dout, tensor.Shape{N, M})
	requireSameDType("affine backward", dout, cache.X)

	dx = tensor.MustRaw(cache.X.Shape(), dout.DType())
	dw = tensor.MustRaw(cache.W.Shape(), dout.DType())
	db = tensor.MustRaw(tensor.Shape{M}, dout.DType())

	switch dout.DType() {
	case tensor.Float32:
		affineBackward[float32](dx, dw, db, dout, cache, N, D, M)
	case tensor.Float64:
		affineBackward[float64](dx, dw, db, dout, cache, N, D, M)
	default:
		panic(fmt.Sprintf("affine backward: unsupported dtype %s", dout.DType()))
	}
	return dx, dw, db
}

func affineBackward[T tensor.Float](dx, dw, db, dout *tensor.RawTensor, cache *AffineCache, N, D, M int) {
	doutData := tensor.Data[T](dout)

	// dx: [N, M] @ [D, M]ᵀ -> [N, D]
	gemm(false, true, N, D, M, doutData, tensor.Data[T](cache.W), tensor.Data[T](dx))
	// dw: [N, D]ᵀ @ [N, M] -> [D, M]
	gemm(true, false, D, M, N, tensor.Data[T](cache.X), doutData, tensor.Data[T](dw))

	dbData := tensor.Data[T](db)
	for n := 0; n < N; n++ {
		for j, v := range doutData[n*M : (n+1)*M] {
			dbData[j] += v
		}
	}
}
