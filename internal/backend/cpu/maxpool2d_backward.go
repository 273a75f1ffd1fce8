package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/tensor"
)

// MaxPoolBackward computes the gradient w.r.t. the pooling input.
//
// Algorithm: Route gradients to max positions.
//   - Gradients flow only to positions that held the max value in the forward pass
//   - For each output position, only ONE input position receives gradient
//   - Overlapping windows accumulate
//
// Example (2x2 pool, stride=2):
//
//	Input:  [[1, 2],  Output: [4]  Input Grad: [[0, 0],
//	         [3, 4]]                             [0, grad]]
func (cpu *CPUBackend) MaxPoolBackward(dout *tensor.RawTensor, cache *PoolCache) *tensor.RawTensor {
	if dout.NumElements() != len(cache.MaxIndices) {
		panic(fmt.Sprintf("maxpool backward: dout has %d elements, expected %d",
			dout.NumElements(), len(cache.MaxIndices)))
	}

	dx := tensor.MustRaw(cache.InputShape, dout.DType())

	switch dout.DType() {
	case tensor.Float32:
		routeToMax(tensor.Data[float32](dx), tensor.Data[float32](dout), cache.MaxIndices)
	case tensor.Float64:
		routeToMax(tensor.Data[float64](dx), tensor.Data[float64](dout), cache.MaxIndices)
	default:
		panic(fmt.Sprintf("maxpool backward: unsupported dtype %s", dout.DType()))
	}
	return dx
}

func routeToMax[T tensor.Float](dx, dout []T, maxIndices []int) {
	for i, g := range dout {
		dx[maxIndices[i]] += g
	}
}
