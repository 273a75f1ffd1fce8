// Package cpu implements the layer primitives of the convnet on the CPU.
//
// Every layer comes as a forward/backward pair. Forward returns the layer
// output together with a cache holding what backward needs; backward takes
// the upstream gradient and that cache. Kernels are generic over float32 and
// float64 and dispatch on the input's dtype.
//
// Contract violations (wrong rank, mismatched shapes or dtypes) panic with a
// message prefixed by the operation name.
package cpu

import (
	"fmt"

	"github.com/born-ml/convnet/internal/parallel"
	"github.com/born-ml/convnet/internal/tensor"
)

// CPUBackend implements the layer primitives on CPU with gonum BLAS matrix products.
// It holds no mutable state and is safe for concurrent use.
//
// Per-image and per-plane loops (im2col, col2im, pooling) are spread across
// goroutines according to the backend's parallel.Config. Results do not
// depend on the worker count.
type CPUBackend struct {
	par parallel.Config
}

// New creates a new CPU backend using parallel.DefaultConfig.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(par parallel.Config) *CPUBackend {
	return &CPUBackend{par: par}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// requireRank panics unless t has the given rank.
func requireRank(op, name string, t *tensor.RawTensor, rank int) {
	if len(t.Shape()) != rank {
		panic(fmt.Sprintf("%s: %s must be %dD, got shape %v", op, name, rank, t.Shape()))
	}
}

// requireSameDType panics unless every tensor shares the first tensor's dtype.
func requireSameDType(op string, ts ...*tensor.RawTensor) {
	for _, t := range ts[1:] {
		if t.DType() != ts[0].DType() {
			panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, ts[0].DType(), t.DType()))
		}
	}
}

// requireShape panics unless t has exactly the expected shape.
func requireShape(op, name string, t *tensor.RawTensor, want tensor.Shape) {
	if !t.Shape().Equal(want) {
		panic(fmt.Sprintf("%s: %s shape %v, expected %v", op, name, t.Shape(), want))
	}
}
