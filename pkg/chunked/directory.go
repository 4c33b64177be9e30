package chunked

import (
	"errors"
	"fmt"

	"github.com/Faultbox/mdlconv/pkg/cursor"
)

const (
	containerMagic = "CHNK"
	headerSize     = 8
	entrySize      = 24
)

// Descriptor locates one chunk inside the container.
type Descriptor struct {
	Index  int // position in the directory
	Tag    Tag
	Root   Tag
	Size   uint64
	Offset uint64 // absolute payload offset
}

// End returns the absolute offset one past the payload.
func (d Descriptor) End() uint64 {
	return d.Offset + d.Size
}

// Scanner produces the directory of a container buffer.
type Scanner interface {
	Scan(buf []byte) (*Container, error)
}

// ScannerFunc adapts a function to the Scanner interface.
type ScannerFunc func(buf []byte) (*Container, error)

// Scan calls f(buf).
func (f ScannerFunc) Scan(buf []byte) (*Container, error) {
	return f(buf)
}

// DefaultScanner reads the CHNK index layout.
var DefaultScanner Scanner = ScannerFunc(Scan)

// Container is a scanned container: the raw buffer and its ordered directory.
type Container struct {
	buf         []byte
	Descriptors []Descriptor
}

// NewContainer wraps a buffer and an already-known directory.
func NewContainer(buf []byte, descriptors []Descriptor) *Container {
	return &Container{buf: buf, Descriptors: descriptors}
}

// Scan reads the container index. Payloads are not touched.
func Scan(buf []byte) (*Container, error) {
	r := cursor.NewReader(buf)

	magic, err := r.ReadBytes(4)
	if err != nil {
		return nil, &DecodeError{Kind: KindTruncated, Offset: r.Pos(), Err: err}
	}
	if string(magic) != containerMagic {
		return nil, ErrInvalidMagic
	}

	count, err := r.ReadU32()
	if err != nil {
		return nil, &DecodeError{Kind: KindTruncated, Offset: r.Pos(), Err: err}
	}
	if int64(count)*entrySize > r.Remaining() {
		return nil, &DecodeError{
			Kind:   KindCount,
			Offset: r.Pos(),
			Err:    fmt.Errorf("%d entries need %d bytes, have %d", count, int64(count)*entrySize, r.Remaining()),
		}
	}

	c := &Container{
		buf:         buf,
		Descriptors: make([]Descriptor, count),
	}
	for i := range c.Descriptors {
		var raw struct {
			Tag    Tag
			Root   Tag
			Size   uint64
			Offset uint64
		}
		if err := r.ReadStruct(&raw); err != nil {
			return nil, &DecodeError{Kind: KindTruncated, Offset: r.Pos(), Err: err}
		}
		c.Descriptors[i] = Descriptor{
			Index:  i,
			Tag:    raw.Tag,
			Root:   raw.Root,
			Size:   raw.Size,
			Offset: raw.Offset,
		}
	}

	return c, nil
}

// Len returns the size of the container buffer.
func (c *Container) Len() int {
	return len(c.buf)
}

// Find returns the first descriptor with the given tag. A zero root matches any root.
func (c *Container) Find(tag, root Tag) (Descriptor, error) {
	for _, d := range c.Descriptors {
		if d.Tag == tag && (root.IsZero() || d.Root == root) {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, tag)
}

// All returns every descriptor with the given tag, in directory order.
func (c *Container) All(tag, root Tag) []Descriptor {
	var out []Descriptor
	for _, d := range c.Descriptors {
		if d.Tag == tag && (root.IsZero() || d.Root == root) {
			out = append(out, d)
		}
	}
	return out
}

// Has reports whether a chunk with the tag exists.
func (c *Container) Has(tag Tag) bool {
	_, err := c.Find(tag, Tag{})
	return !errors.Is(err, ErrNotFound)
}

// Payload returns the payload bytes of d. The slice aliases the container buffer.
func (c *Container) Payload(d Descriptor) ([]byte, error) {
	end := d.End()
	if end < d.Offset || end > uint64(len(c.buf)) {
		return nil, &DecodeError{
			Kind:   KindBounds,
			Tag:    d.Tag,
			Offset: int64(d.Offset),
			Err:    fmt.Errorf("payload [0x%x, 0x%x) exceeds container of %d bytes", d.Offset, end, len(c.buf)),
		}
	}
	return c.buf[d.Offset:end], nil
}
