// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go layer primitives of the convnet.
//
// # Overview
//
// Every primitive has a forward function returning its output and a cache,
// and a backward function taking the upstream gradient and that cache:
//   - ConvForward / ConvBackward: im2col convolution backed by BLAS gemm
//   - MaxPoolForward / MaxPoolBackward: max pooling with recorded argmax
//   - ReLUForward / ReLUBackward
//   - AffineForward / AffineBackward: fully connected layer
//   - SoftmaxLoss: mean cross-entropy and its gradient
//
// # Basic Usage
//
//	backend := cpu.New()
//	out, cache := backend.ConvForward(x, w, b, cpu.ConvParam{Stride: 1, Pad: 1})
//	dx, dw, db := backend.ConvBackward(dout, cache)
//
// Shape or dtype mismatches are programming errors and panic.
package cpu
