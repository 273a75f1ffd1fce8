// Package classifiers implements a three-layer convolutional network:
//
//	conv - relu - 2x2 max pool - affine - relu - affine - softmax
//
// The network operates on minibatches of shape (N, C, H, W): N images of
// height H and width W with C input channels.
package classifiers

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/born-ml/convnet/internal/backend/cpu"
	"github.com/born-ml/convnet/internal/nn"
	"github.com/born-ml/convnet/internal/tensor"
)

// ThreeLayerConvNet holds the parameters and hyperparameters of the network.
//
// Params may be updated in place between calls (for example by an optimizer
// step), but not while Loss is running.
type ThreeLayerConvNet struct {
	Params    Params
	Reg       float64 // L2 regularization strength
	DType     tensor.DataType
	ConvParam cpu.ConvParam
	PoolParam cpu.PoolParam

	backend nn.Backend
}

// Result is the outcome of a Loss evaluation.
type Result struct {
	// Scores has shape (N, NumClasses); Scores[i, c] is the score of class c for x[i].
	Scores *tensor.RawTensor
	// Loss is the softmax data loss plus the L2 penalty. Zero in inference mode.
	Loss float64
	// Grads holds one gradient per parameter key. Nil in inference mode.
	Grads Params
}

// New initializes a network.
//
// Weights are drawn from a Gaussian with standard deviation cfg.WeightScale,
// biases are zero, and every parameter is stored at cfg.DType precision.
func New(cfg Config) (*ThreeLayerConvNet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	C := cfg.InputDim[0]
	F, FS := cfg.NumFilters, cfg.FilterSize
	rng := rand.New(rand.NewSource(cfg.Seed))

	shapes := map[string]tensor.Shape{
		KeyW1: {F, C, FS, FS},
		KeyW2: {cfg.ConvOutDim(), cfg.HiddenDim},
		KeyW3: {cfg.HiddenDim, cfg.NumClasses},
		KeyB1: {F},
		KeyB2: {cfg.HiddenDim},
		KeyB3: {cfg.NumClasses},
	}

	params := make(Params, len(shapes))
	// Draw order is fixed so a seed always maps to the same weights.
	for _, k := range weightKeys {
		w, err := tensor.Randn(shapes[k], cfg.DType, cfg.WeightScale, rng)
		if err != nil {
			return nil, errors.Wrapf(err, "init %s", k)
		}
		params[k] = w
	}
	for _, k := range []string{KeyB1, KeyB2, KeyB3} {
		b, err := tensor.Zeros(shapes[k], cfg.DType)
		if err != nil {
			return nil, errors.Wrapf(err, "init %s", k)
		}
		params[k] = b
	}

	return &ThreeLayerConvNet{
		Params:    params,
		Reg:       cfg.Reg,
		DType:     cfg.DType,
		ConvParam: cfg.ConvParam(),
		PoolParam: cfg.PoolParam(),
		backend:   cpu.New(),
	}, nil
}

// Loss evaluates the network on a minibatch x of shape (N, C, H, W).
//
// With y == nil it runs a test-time forward pass and returns only the
// scores. Otherwise y holds N labels in [0, NumClasses) and Loss also
// returns the regularized loss and the gradient of every parameter.
//
// Inputs that do not match the network's shape or dtype make the layer
// primitives panic.
func (n *ThreeLayerConvNet) Loss(x *tensor.RawTensor, y []int) *Result {
	w1, b1 := n.Params[KeyW1], n.Params[KeyB1]
	w2, b2 := n.Params[KeyW2], n.Params[KeyB2]
	w3, b3 := n.Params[KeyW3], n.Params[KeyB3]

	convOut, convCache := nn.ConvReLUPoolForward(n.backend, x, w1, b1, n.ConvParam, n.PoolParam)
	pooledShape := convOut.Shape()
	hiddenOut, hiddenCache := nn.AffineReLUForward(n.backend, convOut.Reshape(pooledShape.Flatten2D()), w2, b2)
	scores, scoresCache := n.backend.AffineForward(hiddenOut, w3, b3)

	if y == nil {
		return &Result{Scores: scores}
	}

	loss, dscores := n.backend.SoftmaxLoss(scores, y)

	grads := make(Params, len(paramKeys))
	var dhidden, dflat *tensor.RawTensor
	dhidden, grads[KeyW3], grads[KeyB3] = n.backend.AffineBackward(dscores, scoresCache)
	dflat, grads[KeyW2], grads[KeyB2] = nn.AffineReLUBackward(n.backend, dhidden, hiddenCache)
	_, grads[KeyW1], grads[KeyB1] = nn.ConvReLUPoolBackward(n.backend, dflat.Reshape(pooledShape), convCache)

	for _, k := range weightKeys {
		w := n.Params[k]
		loss += 0.5 * n.Reg * w.SumSquares()
		grads[k].AddScaled(n.Reg, w)
	}

	return &Result{Scores: scores, Loss: loss, Grads: grads}
}

// Scores returns the class scores for x, shape (N, NumClasses).
func (n *ThreeLayerConvNet) Scores(x *tensor.RawTensor) *tensor.RawTensor {
	return n.Loss(x, nil).Scores
}

// Predict returns the highest-scoring class of every image in x.
func (n *ThreeLayerConvNet) Predict(x *tensor.RawTensor) []int {
	scores := n.Scores(x)
	N, C := scores.Shape()[0], scores.Shape()[1]

	preds := make([]int, N)
	for i := 0; i < N; i++ {
		best := 0
		for c := 1; c < C; c++ {
			if scores.Float64At(i*C+c) > scores.Float64At(i*C+best) {
				best = c
			}
		}
		preds[i] = best
	}
	return preds
}

// StateDict returns a deep copy of the parameters.
func (n *ThreeLayerConvNet) StateDict() map[string]*tensor.RawTensor {
	return n.Params.Clone()
}

// LoadStateDict overwrites the parameters with the values in stateDict.
func (n *ThreeLayerConvNet) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return n.Params.Load(stateDict)
}
