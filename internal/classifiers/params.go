package classifiers

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/convnet/internal/tensor"
)

// Parameter keys of a ThreeLayerConvNet.
const (
	KeyW1 = "W1" // Conv filters [F, C, FS, FS]
	KeyB1 = "b1" // Conv biases [F]
	KeyW2 = "W2" // Hidden affine weights [F*HH*WW, HiddenDim]
	KeyB2 = "b2" // Hidden affine biases [HiddenDim]
	KeyW3 = "W3" // Output affine weights [HiddenDim, NumClasses]
	KeyB3 = "b3" // Output affine biases [NumClasses]
)

// ErrStateDict is returned (wrapped) when a state dict does not match the network.
var ErrStateDict = errors.New("state dict mismatch")

var (
	paramKeys  = []string{KeyW1, KeyB1, KeyW2, KeyB2, KeyW3, KeyB3}
	weightKeys = []string{KeyW1, KeyW2, KeyW3}
)

// ParamKeys returns the parameter keys in layer order.
func ParamKeys() []string {
	return append([]string(nil), paramKeys...)
}

// WeightKeys returns the keys of the L2-regularized parameters.
// Biases are not regularized.
func WeightKeys() []string {
	return append([]string(nil), weightKeys...)
}

// Params maps parameter keys to tensors. Gradients use the same type, with
// grads[k] holding the gradient of params[k].
type Params map[string]*tensor.RawTensor

// Keys returns the keys present in p: known keys in layer order, then any
// others sorted.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	known := make(map[string]bool, len(paramKeys))
	for _, k := range paramKeys {
		known[k] = true
		if _, ok := p[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range p {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v.Copy()
	}
	return out
}

// Load copies the values of src into p.
//
// src must hold exactly p's keys with matching shapes and dtypes; p is left
// untouched when validation fails.
func (p Params) Load(src map[string]*tensor.RawTensor) error {
	if len(src) != len(p) {
		return errors.Wrapf(ErrStateDict, "got %d entries, expected %d", len(src), len(p))
	}
	for k, dst := range p {
		v, ok := src[k]
		if !ok {
			return errors.Wrapf(ErrStateDict, "missing %s", k)
		}
		if !v.Shape().Equal(dst.Shape()) {
			return errors.Wrapf(ErrStateDict, "%s shape mismatch: expected %v, got %v", k, dst.Shape(), v.Shape())
		}
		if v.DType() != dst.DType() {
			return errors.Wrapf(ErrStateDict, "%s dtype mismatch: expected %s, got %s", k, dst.DType(), v.DType())
		}
	}
	for k, dst := range p {
		dst.CopyFrom(src[k])
	}
	return nil
}
