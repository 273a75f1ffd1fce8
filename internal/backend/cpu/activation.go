package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// ReLUCache holds the forward-pass input needed by ReLUBackward.
type ReLUCache struct {
	X *tensor.RawTensor
}

// ReLUForward applies max(0, x) element-wise. Any shape is accepted.
func (cpu *CPUBackend) ReLUForward(x *tensor.RawTensor) (*tensor.RawTensor, *ReLUCache) {
	out := tensor.MustRaw(x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		relu(tensor.Data[float32](out), tensor.Data[float32](x))
	case tensor.Float64:
		relu(tensor.Data[float64](out), tensor.Data[float64](x))
	default:
		panic(fmt.Sprintf("relu: unsupported dtype %s", x.DType()))
	}
	return out, &ReLUCache{X: x}
}

// ReLUBackward passes dout through where the forward input was positive.
func (cpu *CPUBackend) ReLUBackward(dout *tensor.RawTensor, cache *ReLUCache) *tensor.RawTensor {
	requireShape("relu backward", "dout", dout, cache.X.Shape())
	requireSameDType("relu backward", dout, cache.X)

	dx := tensor.MustRaw(dout.Shape(), dout.DType())

	switch dout.DType() {
	case tensor.Float32:
		reluBackward(tensor.Data[float32](dx), tensor.Data[float32](dout), tensor.Data[float32](cache.X))
	case tensor.Float64:
		reluBackward(tensor.Data[float64](dx), tensor.Data[float64](dout), tensor.Data[float64](cache.X))
	default:
		panic(fmt.Sprintf("relu backward: unsupported dtype %s", dout.DType()))
	}
	return dx
}

func relu[T tensor.Float](dst, src []T) {
	for i, v := range src {
		if v > 0 {
			dst[i] = v
		}
	}
}

func reluBackward[T tensor.Float](dx, dout, x []T) {
	for i, v := range x {
		if v > 0 {
			dx[i] = dout[i]
		}
	}
}
