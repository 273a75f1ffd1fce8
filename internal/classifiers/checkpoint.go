package classifiers

import (
	"io"

	"github.com/pkg/errors"

	"github.com/born-ml/convnet/internal/serialization"
)

const (
	metadataModel = "model"
	modelName     = "ThreeLayerConvNet"
)

// Save writes the parameters to w in SafeTensors format.
func (n *ThreeLayerConvNet) Save(w io.Writer) error {
	return serialization.WriteSafeTensors(w, n.Params, map[string]string{metadataModel: modelName})
}

// Load replaces the parameters with those read from r.
//
// The stream must hold exactly the network's parameters with matching
// shapes and dtypes; on error the parameters are left unchanged.
func (n *ThreeLayerConvNet) Load(r io.Reader) error {
	stateDict, metadata, err := serialization.ReadSafeTensors(r)
	if err != nil {
		return errors.Wrap(err, "read parameters")
	}
	if model, ok := metadata[metadataModel]; ok && model != modelName {
		return errors.Wrapf(ErrStateDict, "stream holds a %s", model)
	}
	return n.LoadStateDict(stateDict)
}

// SaveFile writes the parameters to a SafeTensors file.
func (n *ThreeLayerConvNet) SaveFile(path string) error {
	return serialization.SaveFile(path, n.Params, map[string]string{metadataModel: modelName})
}

// LoadFile replaces the parameters with those stored in a SafeTensors file.
func (n *ThreeLayerConvNet) LoadFile(path string) error {
	stateDict, metadata, err := serialization.LoadFile(path)
	if err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	if model, ok := metadata[metadataModel]; ok && model != modelName {
		return errors.Wrapf(ErrStateDict, "%s holds a %s", path, model)
	}
	return n.LoadStateDict(stateDict)
}
