package serialization

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/convnet/internal/tensor"
)

// ReadSafeTensors reads a state dict written by WriteSafeTensors (or any
// SafeTensors file holding F32/F64 tensors) from r.
//
// The header is validated before any tensor data is read: names, offsets
// and sizes must be consistent and tensors must not overlap. When the
// metadata carries a checksum, the data section must match it.
func ReadSafeTensors(r io.Reader) (map[string]*tensor.RawTensor, map[string]string, error) {
	br := bufio.NewReader(r)

	var headerSize uint64
	if err := binary.Read(br, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, errors.Wrap(err, "read header size")
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, errors.Wrapf(ErrHeaderTooLarge, "%d bytes", headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(br, headerJSON); err != nil {
		return nil, nil, errors.Wrap(err, "read header")
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &entries); err != nil {
		return nil, nil, errors.Wrap(err, "parse header JSON")
	}

	var metadata map[string]string
	if raw, ok := entries[metadataKey]; ok {
		if err := json.Unmarshal(raw, &metadata); err != nil {
			return nil, nil, errors.Wrap(err, "parse metadata")
		}
		delete(entries, metadataKey)
	}

	headers := make(map[string]TensorHeader, len(entries))
	spans := make([]tensorSpan, 0, len(entries))
	var dataSize int64
	for name, raw := range entries {
		if err := ValidateTensorName(name); err != nil {
			return nil, nil, err
		}
		var h TensorHeader
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, nil, errors.Wrapf(err, "parse header of tensor %q", name)
		}
		headers[name] = h
		spans = append(spans, tensorSpan{Name: name, Begin: h.DataOffsets[0], End: h.DataOffsets[1]})
		dataSize = max(dataSize, h.DataOffsets[1])
	}
	if err := validateSpans(spans, MaxDataSize); err != nil {
		return nil, nil, err
	}

	// The buffer grows with the bytes actually present, so a header claiming
	// more data than the stream holds fails without a large allocation.
	var buf bytes.Buffer
	if n, err := io.CopyN(&buf, br, dataSize); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.Wrapf(ErrOutOfBounds, "header claims %d data bytes, stream holds %d", dataSize, n)
		}
		return nil, nil, errors.Wrap(err, "read tensor data")
	}
	data := buf.Bytes()
	if want, ok := metadata[MetadataChecksum]; ok {
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != want {
			return nil, nil, ErrChecksumMismatch
		}
	}

	stateDict := make(map[string]*tensor.RawTensor, len(headers))
	for name, h := range headers {
		raw, err := decode(h, data[h.DataOffsets[0]:h.DataOffsets[1]])
		if err != nil {
			return nil, nil, errors.Wrapf(err, "tensor %q", name)
		}
		stateDict[name] = raw
	}
	return stateDict, metadata, nil
}

// LoadFile reads a SafeTensors file from path.
func LoadFile(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: the path is chosen by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open file")
	}
	defer func() {
		_ = f.Close() // Read-only; close errors carry no information
	}()
	return ReadSafeTensors(f)
}

// decode builds a tensor from its header entry and little-endian bytes.
func decode(h TensorHeader, data []byte) (*tensor.RawTensor, error) {
	dtype, err := safeTensorsToDtype(h.DType)
	if err != nil {
		return nil, err
	}

	// The running element count is bounded by what the span can hold, so the
	// product never overflows.
	limit := int64(len(data) / dtype.Size())
	shape := make(tensor.Shape, len(h.Shape))
	elems := int64(1)
	for i, dim := range h.Shape {
		if dim <= 0 || dim > math.MaxInt32 {
			return nil, errors.Errorf("invalid dimension %d in shape %v", dim, h.Shape)
		}
		if elems > limit/dim {
			return nil, errors.Errorf("shape %v %s does not fit in %d bytes", h.Shape, dtype, len(data))
		}
		elems *= dim
		shape[i] = int(dim)
	}
	if want := int(elems) * dtype.Size(); want != len(data) {
		return nil, errors.Errorf("shape %v %s needs %d bytes, header gives %d", shape, dtype, want, len(data))
	}

	raw, err := tensor.NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	size := dtype.Size()
	switch dtype {
	case tensor.Float32:
		dst := raw.AsFloat32()
		for i := range dst {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*size:]))
		}
	case tensor.Float64:
		dst := raw.AsFloat64()
		for i := range dst {
			dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*size:]))
		}
	}
	return raw, nil
}
