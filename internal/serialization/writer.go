package serialization

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"io"
	"math"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/convnet/internal/tensor"
)

// WriteSafeTensors writes stateDict and metadata to w.
//
// Tensors are written in alphabetical order by name. The checksum of the
// data section is added to the stored metadata; metadata itself is not
// modified.
func WriteSafeTensors(w io.Writer, stateDict map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	chunks := make([][]byte, len(names))
	digest := sha256.New()

	var offset int64
	for i, name := range names {
		raw := stateDict[name]
		dtype, err := dtypeToSafeTensors(raw.DType())
		if err != nil {
			return errors.Wrapf(err, "tensor %q", name)
		}

		data := encode(raw)
		chunks[i] = data
		digest.Write(data)

		shape := make([]int64, len(raw.Shape()))
		for j, dim := range raw.Shape() {
			shape[j] = int64(dim)
		}
		header[name] = TensorHeader{
			DType:       dtype,
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + int64(len(data))},
		}
		offset += int64(len(data))
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[MetadataChecksum] = hex.EncodeToString(digest.Sum(nil))
	header[metadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "marshal header")
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return errors.Wrap(err, "write header size")
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i, data := range chunks {
		if _, err := bw.Write(data); err != nil {
			return errors.Wrapf(err, "write tensor %q", names[i])
		}
	}
	return errors.Wrap(bw.Flush(), "flush")
}

// SaveFile writes stateDict to a SafeTensors file at path.
func SaveFile(path string, stateDict map[string]*tensor.RawTensor, metadata map[string]string) (err error) {
	//nolint:gosec // G304: the path is chosen by the caller
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create file")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = errors.Wrap(cerr, "close file")
		}
	}()
	return WriteSafeTensors(f, stateDict, metadata)
}

// encode returns the little-endian bytes of r's elements.
func encode(r *tensor.RawTensor) []byte {
	size := r.DType().Size()
	out := make([]byte, r.NumElements()*size)
	switch r.DType() {
	case tensor.Float32:
		for i, v := range r.AsFloat32() {
			binary.LittleEndian.PutUint32(out[i*size:], math.Float32bits(v))
		}
	case tensor.Float64:
		for i, v := range r.AsFloat64() {
			binary.LittleEndian.PutUint64(out[i*size:], math.Float64bits(v))
		}
	}
	return out
}
