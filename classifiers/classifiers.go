// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package classifiers provides a three-layer convolutional network for image
// classification:
//
//	conv - relu - 2x2 max pool - affine - relu - affine - softmax
//
// # Basic Usage
//
//	cfg := classifiers.DefaultConfig()
//	cfg.Reg = 1e-3
//
//	net, err := classifiers.New(cfg)
//	if err != nil {
//	    return err
//	}
//
//	res := net.Loss(x, y)      // Loss and gradients for a training batch
//	scores := net.Scores(x)    // Class scores only
//	labels := net.Predict(x)   // Most likely class of each image
//
// Loss never updates the parameters; an optimizer applies res.Grads to
// net.Params.
package classifiers

import (
	"github.com/born-ml/convnet/internal/classifiers"
)

// ThreeLayerConvNet is the network's parameters and hyperparameters.
type ThreeLayerConvNet = classifiers.ThreeLayerConvNet

// Config describes a ThreeLayerConvNet.
type Config = classifiers.Config

// Params maps parameter keys to tensors.
type Params = classifiers.Params

// Result is the outcome of a Loss evaluation.
type Result = classifiers.Result

// Parameter keys.
const (
	KeyW1 = classifiers.KeyW1
	KeyB1 = classifiers.KeyB1
	KeyW2 = classifiers.KeyW2
	KeyB2 = classifiers.KeyB2
	KeyW3 = classifiers.KeyW3
	KeyB3 = classifiers.KeyB3
)

// Errors.
var (
	ErrInvalidConfig = classifiers.ErrInvalidConfig
	ErrStateDict     = classifiers.ErrStateDict
)

// DefaultConfig returns the configuration of a network for 32x32 RGB images.
func DefaultConfig() Config {
	return classifiers.DefaultConfig()
}

// New initializes a network from cfg.
func New(cfg Config) (*ThreeLayerConvNet, error) {
	return classifiers.New(cfg)
}

// ParamKeys returns the parameter keys in layer order.
func ParamKeys() []string {
	return classifiers.ParamKeys()
}

// WeightKeys returns the keys of the L2-regularized parameters.
func WeightKeys() []string {
	return classifiers.WeightKeys()
}
