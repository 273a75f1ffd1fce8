// Package nn composes the CPU layer primitives into the fused layers used by
// the classifiers: conv-relu-pool and affine-relu.
//
// Each fused layer returns a composite cache from its forward pass; the
// matching backward function walks the primitives in reverse order.
package nn

import (
	"github.com/born-ml/convnet/internal/backend/cpu"
	"github.com/born-ml/convnet/internal/tensor"
)

// Backend is the set of layer primitives the fused layers are built from.
// *cpu.CPUBackend implements it.
type Backend interface {
	ConvForward(x, w, b *tensor.RawTensor, p cpu.ConvParam) (*tensor.RawTensor, *cpu.ConvCache)
	ConvBackward(dout *tensor.RawTensor, cache *cpu.ConvCache) (dx, dw, db *tensor.RawTensor)
	MaxPoolForward(x *tensor.RawTensor, p cpu.PoolParam) (*tensor.RawTensor, *cpu.PoolCache)
	MaxPoolBackward(dout *tensor.RawTensor, cache *cpu.PoolCache) *tensor.RawTensor
	ReLUForward(x *tensor.RawTensor) (*tensor.RawTensor, *cpu.ReLUCache)
	ReLUBackward(dout *tensor.RawTensor, cache *cpu.ReLUCache) *tensor.RawTensor
	AffineForward(x, w, b *tensor.RawTensor) (*tensor.RawTensor, *cpu.AffineCache)
	AffineBackward(dout *tensor.RawTensor, cache *cpu.AffineCache) (dx, dw, db *tensor.RawTensor)
	SoftmaxLoss(scores *tensor.RawTensor, y []int) (float64, *tensor.RawTensor)
}

var _ Backend = (*cpu.CPUBackend)(nil)

// ConvReLUPoolCache holds the caches of the three primitives of ConvReLUPoolForward.
type ConvReLUPoolCache struct {
	Conv *cpu.ConvCache
	ReLU *cpu.ReLUCache
	Pool *cpu.PoolCache
}

// ConvReLUPoolForward runs conv -> relu -> max pool.
//
// Input: x [N, C, H, W], w [F, C, HH, WW], b [F]
// Output: [N, F, HOut, WOut] after pooling.
func ConvReLUPoolForward(backend Backend, x, w, b *tensor.RawTensor, conv cpu.ConvParam, pool cpu.PoolParam) (*tensor.RawTensor, *ConvReLUPoolCache) {
	a, convCache := backend.ConvForward(x, w, b, conv)
	s, reluCache := backend.ReLUForward(a)
	out, poolCache := backend.MaxPoolForward(s, pool)
	return out, &ConvReLUPoolCache{Conv: convCache, ReLU: reluCache, Pool: poolCache}
}

// ConvReLUPoolBackward is the backward pass of ConvReLUPoolForward.
func ConvReLUPoolBackward(backend Backend, dout *tensor.RawTensor, cache *ConvReLUPoolCache) (dx, dw, db *tensor.RawTensor) {
	ds := backend.MaxPoolBackward(dout, cache.Pool)
	da := backend.ReLUBackward(ds, cache.ReLU)
	return backend.ConvBackward(da, cache.Conv)
}

// AffineReLUCache holds the caches of the two primitives of AffineReLUForward.
type AffineReLUCache struct {
	Affine *cpu.AffineCache
	ReLU   *cpu.ReLUCache
}

// AffineReLUForward runs affine -> relu.
func AffineReLUForward(backend Backend, x, w, b *tensor.RawTensor) (*tensor.RawTensor, *AffineReLUCache) {
	a, affineCache := backend.AffineForward(x, w, b)
	out, reluCache := backend.ReLUForward(a)
	return out, &AffineReLUCache{Affine: affineCache, ReLU: reluCache}
}

// AffineReLUBackward is the backward pass of AffineReLUForward.
func AffineReLUBackward(backend Backend, dout *tensor.RawTensor, cache *AffineReLUCache) (dx, dw, db *tensor.RawTensor) {
	da := backend.ReLUBackward(dout, cache.ReLU)
	return backend.AffineBackward(da, cache.Affine)
}
