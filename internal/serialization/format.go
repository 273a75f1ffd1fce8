// Package serialization saves and loads state dicts in the SafeTensors format:
//
//	[8 bytes: header size (uint64 LE)]
//	[header: JSON object, tensor name -> {dtype, shape, data_offsets}]
//	[tensor data: little-endian elements, tensors in name order]
//
// The optional "__metadata__" header entry holds string pairs. Files written
// here carry a SHA-256 of the data section under MetadataChecksum, which
// ReadSafeTensors verifies when present.
package serialization

import (
	"github.com/pkg/errors"

	"github.com/born-ml/convnet/internal/tensor"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // Maximum header size in bytes
	MaxTensorCount   = 100_000           // Maximum number of tensors in a file
	MaxTensorNameLen = 4096              // Maximum tensor name length
	MaxDataSize      = 16 << 30          // Maximum data section size in bytes
)

const (
	metadataKey = "__metadata__"

	// MetadataChecksum is the metadata key holding the hex SHA-256 of the data section.
	MetadataChecksum = "checksum_sha256"
)

// Common errors.
var (
	ErrChecksumMismatch  = errors.New("checksum mismatch: file may be corrupted")
	ErrOffsetOverlap     = errors.New("tensor offsets overlap")
	ErrOutOfBounds       = errors.New("tensor extends beyond data section")
	ErrNegativeOffset    = errors.New("negative offset or size")
	ErrTooManyTensors    = errors.New("too many tensors in file")
	ErrInvalidTensorName = errors.New("invalid tensor name")
	ErrHeaderTooLarge    = errors.New("header exceeds maximum size")
	ErrUnsupportedDType  = errors.New("unsupported dtype")
)

// TensorHeader describes one tensor in the SafeTensors header.
type TensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// dtypeToSafeTensors converts tensor.DataType to the SafeTensors dtype string.
func dtypeToSafeTensors(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Float32:
		return "F32", nil
	case tensor.Float64:
		return "F64", nil
	default:
		return "", errors.Wrapf(ErrUnsupportedDType, "%s", dt)
	}
}

// safeTensorsToDtype is the inverse of dtypeToSafeTensors.
func safeTensorsToDtype(s string) (tensor.DataType, error) {
	switch s {
	case "F32":
		return tensor.Float32, nil
	case "F64":
		return tensor.Float64, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedDType, "%q", s)
	}
}
