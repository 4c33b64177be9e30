// Package cursor provides seekable little-endian readers and writers over
// in-memory buffers.
package cursor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrUnexpectedEOF is returned when fewer bytes remain than a read requires.
var ErrUnexpectedEOF = errors.New("unexpected end of buffer")

// ErrNegativeSeek is returned when seeking before the start of the buffer.
var ErrNegativeSeek = errors.New("negative seek position")

// Reader reads fixed-width little-endian values from a byte slice.
// Seeking past the end is allowed; the next read fails.
type Reader struct {
	buf []byte
	pos int64
}

// NewReader creates a reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the total buffer length.
func (r *Reader) Len() int64 {
	return int64(len(r.buf))
}

// Pos returns the current absolute position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Remaining returns the number of readable bytes from the current position.
func (r *Reader) Remaining() int64 {
	if r.pos >= int64(len(r.buf)) {
		return 0
	}
	return int64(len(r.buf)) - r.pos
}

// SeekTo moves to an absolute position.
func (r *Reader) SeekTo(pos int64) error {
	if pos < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeSeek, pos)
	}
	r.pos = pos
	return nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) error {
	return r.SeekTo(r.pos + n)
}

// ReadBytes returns the next n bytes. The returned slice aliases the buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read length %d", n)
	}
	if r.Remaining() < int64(n) {
		return nil, fmt.Errorf("%w: need %d bytes at 0x%x, have %d", ErrUnexpectedEOF, n, r.pos, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+int64(n)]
	r.pos += int64(n)
	return b, nil
}

// ReadU8 reads an unsigned byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadI16 reads a little-endian int16.
func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadI64 reads a little-endian int64.
func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadF32 reads a little-endian IEEE-754 float32.
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	return math.Float32frombits(v), err
}

// ReadStruct decodes a fixed-size little-endian record into v.
// v must be a pointer to a value accepted by encoding/binary.
func (r *Reader) ReadStruct(v any) error {
	size := binary.Size(v)
	if size < 0 {
		return fmt.Errorf("cursor: %T has no fixed size", v)
	}
	b, err := r.ReadBytes(size)
	if err != nil {
		return err
	}
	_, err = binary.Decode(b, binary.LittleEndian, v)
	return err
}

// ReadUvarint reads a 7-bit encoded unsigned length.
func (r *Reader) ReadUvarint() (uint64, error) {
	var x uint64
	var s uint
	for i := 0; i < binary.MaxVarintLen64; i++ {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		if b < 0x80 {
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	return 0, fmt.Errorf("varint overflow at 0x%x", r.pos)
}

// ReadString reads a 7-bit length-prefixed string as written by Writer.WriteString.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return "", err
	}
	if n > uint64(r.Remaining()) {
		return "", fmt.Errorf("%w: string of %d bytes at 0x%x", ErrUnexpectedEOF, n, r.pos)
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
