package tensor

import (
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrInvalidShape     = errors.New("invalid shape")
	ErrUnsupportedDType = errors.New("unsupported dtype")
)

// RawTensor is the low-level tensor representation.
//
// Data is stored as a flat row-major byte buffer interpreted according to
// dtype. Reshape returns views that share the buffer; Copy and Cast allocate.
type RawTensor struct {
	data   []byte   // Row-major element storage
	shape  Shape    // Tensor dimensions
	stride []int    // Memory strides (row-major)
	dtype  DataType // Runtime type information
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated and zeroed.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if !dtype.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedDType, "%d", int(dtype))
	}

	return &RawTensor{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}, nil
}

// MustRaw is like NewRaw but panics on error.
// Used by kernels whose output shapes are derived from validated inputs.
func MustRaw(shape Shape, dtype DataType) *RawTensor {
	r, err := NewRaw(shape, dtype)
	if err != nil {
		panic(err)
	}
	return r
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// Float64At returns element i of the flat buffer widened to float64.
func (r *RawTensor) Float64At(i int) float64 {
	if r.dtype == Float32 {
		return float64(r.AsFloat32()[i])
	}
	return r.AsFloat64()[i]
}

// SetFloat64At stores v at flat index i, narrowing to the tensor's dtype.
func (r *RawTensor) SetFloat64At(i int, v float64) {
	if r.dtype == Float32 {
		r.AsFloat32()[i] = float32(v)
		return
	}
	r.AsFloat64()[i] = v
}

// Reshape returns a view of r with a new shape.
// The view shares storage with r. Panics if the element counts differ.
func (r *RawTensor) Reshape(shape Shape) *RawTensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	if shape.NumElements() != r.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			r.shape, r.NumElements(), shape, shape.NumElements()))
	}
	return &RawTensor{
		data:   r.data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  r.dtype,
	}
}

// Copy returns a deep copy of r.
func (r *RawTensor) Copy() *RawTensor {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:   data,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
	}
}

// Cast returns a copy of r converted to dtype.
// Casting to the current dtype is equivalent to Copy.
func (r *RawTensor) Cast(dtype DataType) *RawTensor {
	if dtype == r.dtype {
		return r.Copy()
	}
	out := MustRaw(r.shape, dtype)
	switch dtype {
	case Float32:
		dst, src := out.AsFloat32(), r.AsFloat64()
		for i, v := range src {
			dst[i] = float32(v)
		}
	case Float64:
		dst, src := out.AsFloat64(), r.AsFloat32()
		for i, v := range src {
			dst[i] = float64(v)
		}
	default:
		panic(fmt.Sprintf("cast: unsupported dtype %s", dtype))
	}
	return out
}

// CopyFrom overwrites r's elements with src's. Shapes and dtypes must match.
func (r *RawTensor) CopyFrom(src *RawTensor) {
	if !r.shape.Equal(src.shape) || r.dtype != src.dtype {
		panic(fmt.Sprintf("copy: destination %v %s does not match source %v %s",
			r.shape, r.dtype, src.shape, src.dtype))
	}
	copy(r.data, src.data)
}

// String returns a short description of the tensor, without its data.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor(%v, %s)", r.shape, r.dtype)
}
