package formats

import "github.com/Faultbox/mdlconv/pkg/chunked"

// Materials is a decoded CLDM chunk: material keys indexed by submesh
// material index.
type Materials struct {
	Keys []uint64
}

func (*Materials) Kind() Kind { return KindMaterials }
func (*Materials) isChunk()   {}

// Key returns the material key for index.
func (m *Materials) Key(index int) (uint64, bool) {
	if m == nil || index < 0 || index >= len(m.Keys) {
		return 0, false
	}
	return m.Keys[index], true
}

type tableHeader struct {
	Count  uint32
	_      uint32
	Offset int64
}

// DecodeMaterials decodes a CLDM payload.
func DecodeMaterials(payload []byte) (*Materials, error) {
	d := newDecoder(chunked.TagMaterial, payload)

	var hdr tableHeader
	if err := d.read(&hdr); err != nil {
		return nil, err
	}
	keys, err := readTable[uint64](d, "materials", hdr.Offset, int(hdr.Count))
	if err != nil {
		return nil, err
	}
	return &Materials{Keys: keys}, nil
}
