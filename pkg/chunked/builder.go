package chunked

import "encoding/binary"

type builderEntry struct {
	tag, root Tag
	payload   []byte
}

// Builder assembles a container in the CHNK layout. Payloads are placed after
// the index, each aligned to 16 bytes.
type Builder struct {
	entries []builderEntry
}

// NewBuilder creates an empty container builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends a chunk.
func (b *Builder) Add(tag, root Tag, payload []byte) *Builder {
	b.entries = append(b.entries, builderEntry{tag: tag, root: root, payload: payload})
	return b
}

// Bytes lays out the index and payloads.
func (b *Builder) Bytes() []byte {
	indexEnd := headerSize + entrySize*len(b.entries)
	offsets := make([]int, len(b.entries))
	pos := align16(indexEnd)
	for i, e := range b.entries {
		offsets[i] = pos
		pos = align16(pos + len(e.payload))
	}

	buf := make([]byte, pos)
	copy(buf, containerMagic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(b.entries)))
	for i, e := range b.entries {
		ent := buf[headerSize+entrySize*i:]
		copy(ent[0:4], e.tag[:])
		copy(ent[4:8], e.root[:])
		binary.LittleEndian.PutUint64(ent[8:], uint64(len(e.payload)))
		binary.LittleEndian.PutUint64(ent[16:], uint64(offsets[i]))
		copy(buf[offsets[i]:], e.payload)
	}
	return buf
}

func align16(n int) int {
	return (n + 15) &^ 15
}
