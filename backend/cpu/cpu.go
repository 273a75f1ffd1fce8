// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/convnet/internal/backend/cpu"
	"github.com/born-ml/convnet/nn"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements nn.Backend.
var _ nn.Backend = (*Backend)(nil)

// Layer hyperparameters and caches.
type (
	ConvParam   = internalcpu.ConvParam
	ConvCache   = internalcpu.ConvCache
	PoolParam   = internalcpu.PoolParam
	PoolCache   = internalcpu.PoolCache
	ReLUCache   = internalcpu.ReLUCache
	AffineCache = internalcpu.AffineCache
)

// New creates a new CPU backend.
//
// Example:
//
//	import "github.com/born-ml/convnet/backend/cpu"
//
//	func main() {
//	    backend := cpu.New()
//	    out, _ := backend.ReLUForward(x)
//	}
func New() *Backend {
	return internalcpu.New()
}
