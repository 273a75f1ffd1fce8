// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense tensors consumed by the convnet layers.
//
// # Overview
//
// A RawTensor is a contiguous row-major buffer with a shape and a data type.
// Two floating-point types are supported, Float32 and Float64; layers require
// all their operands to share one.
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/born-ml/convnet/tensor"
//	)
//
//	func main() {
//	    rng := rand.New(rand.NewSource(0))
//	    x, _ := tensor.Randn(tensor.Shape{2, 3, 32, 32}, tensor.Float32, 1, rng)
//	    w, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
//
//	    data := x.AsFloat32()          // Zero-copy access
//	    flat := w.Reshape(tensor.Shape{4}) // View sharing w's storage
//	}
package tensor
