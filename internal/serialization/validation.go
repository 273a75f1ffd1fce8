package serialization

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// tensorSpan is the byte range [Begin, End) of a named tensor in the data section.
type tensorSpan struct {
	Name       string
	Begin, End int64
}

// ValidateTensorName rejects empty names, overlong names, path-like names and
// names containing NUL.
func ValidateTensorName(name string) error {
	switch {
	case name == "":
		return errors.Wrap(ErrInvalidTensorName, "empty name")
	case len(name) > MaxTensorNameLen:
		return errors.Wrapf(ErrInvalidTensorName, "length %d > max %d", len(name), MaxTensorNameLen)
	case strings.Contains(name, ".."):
		return errors.Wrapf(ErrInvalidTensorName, "%q contains '..'", name)
	case strings.ContainsAny(name, "/\\"):
		return errors.Wrapf(ErrInvalidTensorName, "%q contains a path separator", name)
	case strings.Contains(name, "\x00"):
		return errors.Wrapf(ErrInvalidTensorName, "%q contains a null byte", name)
	case name == metadataKey:
		return errors.Wrapf(ErrInvalidTensorName, "%q is reserved", name)
	}
	return nil
}

// validateSpans checks that every span lies inside a data section of
// dataSize bytes and that no two spans overlap.
func validateSpans(spans []tensorSpan, dataSize int64) error {
	if len(spans) > MaxTensorCount {
		return errors.Wrapf(ErrTooManyTensors, "got %d, max %d", len(spans), MaxTensorCount)
	}

	sorted := make([]tensorSpan, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Begin < sorted[j].Begin
	})

	for i, s := range sorted {
		if s.Begin < 0 || s.End < s.Begin {
			return errors.Wrapf(ErrNegativeOffset, "tensor %q: offsets [%d, %d)", s.Name, s.Begin, s.End)
		}
		if s.End > dataSize {
			return errors.Wrapf(ErrOutOfBounds, "tensor %q: end %d > data size %d", s.Name, s.End, dataSize)
		}
		if i+1 < len(sorted) && s.End > sorted[i+1].Begin {
			next := sorted[i+1]
			return errors.Wrapf(ErrOffsetOverlap, "tensors %q [%d, %d) and %q [%d, %d)",
				s.Name, s.Begin, s.End, next.Name, next.Begin, next.End)
		}
	}
	return nil
}
