package chunked

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Find when no descriptor matches.
var ErrNotFound = errors.New("chunk not found")

// ErrInvalidMagic is returned when the container index does not start with the expected magic.
var ErrInvalidMagic = errors.New("invalid container magic: expected 'CHNK'")

// ErrorKind classifies a chunk decode failure.
type ErrorKind int

const (
	KindTruncated ErrorKind = iota // read ran past the end of the payload
	KindBounds                     // offset or payload outside its buffer
	KindCount                      // count implies a table larger than the buffer
	KindUTF8                       // malformed text
	KindInvalid                    // inconsistent values (indices, cycles)
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindTruncated:
		return "truncated"
	case KindBounds:
		return "bounds"
	case KindCount:
		return "count"
	case KindUTF8:
		return "utf8"
	case KindInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// DecodeError reports a failure confined to one chunk. The chunk is treated
// as absent; the rest of the container is still decoded.
type DecodeError struct {
	Kind   ErrorKind
	Tag    Tag
	Offset int64 // payload-relative position where decoding failed
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode %s: %s at 0x%x", e.Tag, e.Kind, e.Offset)
	}
	return fmt.Sprintf("decode %s: %s at 0x%x: %v", e.Tag, e.Kind, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MissingDependencyError is returned when a deferred chunk cannot be decoded
// because the chunk it depends on is absent.
type MissingDependencyError struct {
	Tag    Tag // the dependent chunk
	Needed Tag // the chunk that was required
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("decode %s: missing dependency %s", e.Tag, e.Needed)
}
