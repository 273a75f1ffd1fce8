// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the fused layers of the convnet.
//
// A fused layer chains CPU primitives and bundles their caches, so a network
// can run its forward pass as a few calls and unwind it with the matching
// backward calls in reverse order:
//
//	out, cache := nn.ConvReLUPoolForward(backend, x, w, b, conv, pool)
//	dx, dw, db := nn.ConvReLUPoolBackward(backend, dout, cache)
package nn

import (
	"github.com/born-ml/convnet/internal/backend/cpu"
	"github.com/born-ml/convnet/internal/nn"
	"github.com/born-ml/convnet/internal/tensor"
)

// Backend is the set of layer primitives the fused layers are built from.
type Backend = nn.Backend

// Fused layer caches.
type (
	ConvReLUPoolCache = nn.ConvReLUPoolCache
	AffineReLUCache   = nn.AffineReLUCache
)

// ConvReLUPoolForward runs conv -> relu -> max pool.
func ConvReLUPoolForward(backend Backend, x, w, b *tensor.RawTensor, conv cpu.ConvParam, pool cpu.PoolParam) (*tensor.RawTensor, *ConvReLUPoolCache) {
	return nn.ConvReLUPoolForward(backend, x, w, b, conv, pool)
}

// ConvReLUPoolBackward is the backward pass of ConvReLUPoolForward.
func ConvReLUPoolBackward(backend Backend, dout *tensor.RawTensor, cache *ConvReLUPoolCache) (dx, dw, db *tensor.RawTensor) {
	return nn.ConvReLUPoolBackward(backend, dout, cache)
}

// AffineReLUForward runs affine -> relu.
func AffineReLUForward(backend Backend, x, w, b *tensor.RawTensor) (*tensor.RawTensor, *AffineReLUCache) {
	return nn.AffineReLUForward(backend, x, w, b)
}

// AffineReLUBackward is the backward pass of AffineReLUForward.
func AffineReLUBackward(backend Backend, dout *tensor.RawTensor, cache *AffineReLUCache) (dx, dw, db *tensor.RawTensor) {
	return nn.AffineReLUBackward(backend, dout, cache)
}
