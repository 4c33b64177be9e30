package cursor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer appends little-endian values to a growing buffer.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteU8 appends a byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteU16 appends a little-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteU32 appends a little-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteU64 appends a little-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteI16 appends a little-endian int16.
func (w *Writer) WriteI16(v int16) {
	w.WriteU16(uint16(v))
}

// WriteI32 appends a little-endian int32.
func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

// WriteI64 appends a little-endian int64.
func (w *Writer) WriteI64(v int64) {
	w.WriteU64(uint64(v))
}

// WriteF32 appends a little-endian float32.
func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

// WriteF32s appends each value in order.
func (w *Writer) WriteF32s(vs ...float32) {
	for _, v := range vs {
		w.WriteF32(v)
	}
}

// WriteString appends a 7-bit encoded length followed by the UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.buf = binary.AppendUvarint(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteOptionalString writes s, or a single zero byte when s is empty.
// An empty length-prefixed string encodes to the same zero byte.
func (w *Writer) WriteOptionalString(s string) {
	if s == "" {
		w.WriteU8(0)
		return
	}
	w.WriteString(s)
}

// Pad appends n zero bytes.
func (w *Writer) Pad(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}

// Align pads with zeros until the length is a multiple of n.
func (w *Writer) Align(n int) {
	if rem := len(w.buf) % n; rem != 0 {
		w.Pad(n - rem)
	}
}

// PutI64At overwrites an int64 at an absolute position already written.
func (w *Writer) PutI64At(pos int, v int64) {
	binary.LittleEndian.PutUint64(w.buf[pos:], uint64(v))
}

// WriteStruct appends a fixed-size little-endian record.
func (w *Writer) WriteStruct(v any) {
	out, err := binary.Append(w.buf, binary.LittleEndian, v)
	if err != nil {
		panic(fmt.Sprintf("cursor: %T has no fixed size", v))
	}
	w.buf = out
}

// PutStructAt overwrites a fixed-size record at an absolute position already written.
func (w *Writer) PutStructAt(pos int, v any) {
	if _, err := binary.Encode(w.buf[pos:], binary.LittleEndian, v); err != nil {
		panic(fmt.Sprintf("cursor: cannot place %T at %d: %v", v, pos, err))
	}
}
