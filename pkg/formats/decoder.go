package formats

import (
	"encoding/binary"
	"fmt"

	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/cursor"
)

// decoder wraps a payload reader and turns cursor failures into
// chunk-scoped DecodeErrors.
type decoder struct {
	tag chunked.Tag
	r   *cursor.Reader
}

func newDecoder(tag chunked.Tag, payload []byte) *decoder {
	return &decoder{tag: tag, r: cursor.NewReader(payload)}
}

func (d *decoder) errorf(kind chunked.ErrorKind, format string, args ...any) error {
	return &chunked.DecodeError{Kind: kind, Tag: d.tag, Offset: d.r.Pos(), Err: fmt.Errorf(format, args...)}
}

func (d *decoder) truncated(err error) error {
	return &chunked.DecodeError{Kind: chunked.KindTruncated, Tag: d.tag, Offset: d.r.Pos(), Err: err}
}

// read decodes a fixed-size record at the current position.
func (d *decoder) read(v any) error {
	if err := d.r.ReadStruct(v); err != nil {
		return d.truncated(err)
	}
	return nil
}

// seekTable positions the reader at a table of count records of size bytes.
// It reports false when the table is absent (offset <= 0 or count == 0).
func (d *decoder) seekTable(name string, offset int64, count, size int) (bool, error) {
	if offset <= 0 || count == 0 {
		return false, nil
	}
	if offset > d.r.Len() {
		return false, d.errorf(chunked.KindBounds, "%s offset 0x%x outside payload of %d bytes", name, offset, d.r.Len())
	}
	need := int64(count) * int64(size)
	if need > d.r.Len()-offset {
		if err := d.r.SeekTo(offset); err != nil {
			return false, d.truncated(err)
		}
		return false, d.errorf(chunked.KindCount, "%s: %d records need %d bytes, have %d", name, count, need, d.r.Len()-offset)
	}
	if err := d.r.SeekTo(offset); err != nil {
		return false, d.truncated(err)
	}
	return true, nil
}

// readTable reads count records of T starting at offset. Absent tables
// decode to nil.
func readTable[T any](d *decoder, name string, offset int64, count int) ([]T, error) {
	var zero T
	ok, err := d.seekTable(name, offset, count, binary.Size(zero))
	if err != nil || !ok {
		return nil, err
	}
	out := make([]T, count)
	if err := d.read(out); err != nil {
		return nil, err
	}
	return out, nil
}

// requireTable is readTable for tables that must exist when count > 0.
func requireTable[T any](d *decoder, name string, offset int64, count int) ([]T, error) {
	if count > 0 && offset <= 0 {
		return nil, d.errorf(chunked.KindInvalid, "%s table missing for %d records", name, count)
	}
	return readTable[T](d, name, offset, count)
}
