package formats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/encoding"
)

// StringEntry is one localized string.
type StringEntry struct {
	Value      string
	References uint32 // number of {n} placeholders Value expects
}

// Format substitutes {0}..{References-1} with args. Missing arguments
// are filled with 0.
func (e StringEntry) Format(args ...any) string {
	n := int(e.References)
	if len(args) > n {
		n = len(args)
	}
	if n == 0 {
		return e.Value
	}
	pairs := make([]string, 0, 2*n)
	for i := 0; i < n; i++ {
		var arg any = 0
		if i < len(args) {
			arg = args[i]
		}
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", fmt.Sprint(arg))
	}
	return strings.NewReplacer(pairs...).Replace(e.Value)
}

// StringTable is a decoded GRTS chunk.
type StringTable struct {
	Entries []StringEntry
}

func (*StringTable) Kind() Kind { return KindStrings }
func (*StringTable) isChunk()   {}

// Values returns the entry values in order.
func (t *StringTable) Values() []string {
	out := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		out[i] = e.Value
	}
	return out
}

type stringEntryHeader struct {
	Offset     uint64
	Size       uint32
	References uint32
}

// DecodeStringTable decodes a GRTS payload. An entry with size 0 runs to
// one byte before the end of the payload.
func DecodeStringTable(payload []byte) (*StringTable, error) {
	d := newDecoder(chunked.TagStrings, payload)

	var hdr tableHeader
	if err := d.read(&hdr); err != nil {
		return nil, err
	}
	headers, err := readTable[stringEntryHeader](d, "string entries", hdr.Offset, int(hdr.Count))
	if err != nil {
		return nil, err
	}

	table := &StringTable{Entries: make([]StringEntry, len(headers))}
	for i, h := range headers {
		if h.Offset > uint64(len(payload)) {
			return nil, d.errorf(chunked.KindBounds, "string %d: offset 0x%x outside payload", i, h.Offset)
		}
		size := int64(h.Size)
		if size == 0 {
			size = int64(len(payload)) - int64(h.Offset) - 1
		}
		if size < 0 || int64(h.Offset)+size > int64(len(payload)) {
			return nil, d.errorf(chunked.KindBounds, "string %d: %d bytes at 0x%x exceed payload", i, size, h.Offset)
		}
		if err := d.r.SeekTo(int64(h.Offset)); err != nil {
			return nil, d.truncated(err)
		}
		raw, err := d.r.ReadBytes(int(size))
		if err != nil {
			return nil, d.truncated(err)
		}
		value, err := encoding.DecodeText(raw)
		if err != nil {
			if errors.Is(err, encoding.ErrInvalidUTF8) {
				return nil, d.errorf(chunked.KindUTF8, "string %d: %v", i, err)
			}
			return nil, d.truncated(err)
		}
		table.Entries[i] = StringEntry{Value: value, References: h.References}
	}
	return table, nil
}
