package formats

import (
	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/math"
)

// Hardpoint is an attachment point parented to a bone.
type Hardpoint struct {
	Matrix     math.Mat4 // translation in the last row
	ID         uint32
	ParentBone uint32 // bone identifier, not index
	_          uint64
}

// Hardpoints is a decoded PRHM chunk.
type Hardpoints struct {
	Points []Hardpoint
}

func (*Hardpoints) Kind() Kind { return KindHardpoints }
func (*Hardpoints) isChunk()   {}

// DecodeHardpoints decodes a PRHM payload.
func DecodeHardpoints(payload []byte) (*Hardpoints, error) {
	d := newDecoder(chunked.TagHardpoint, payload)

	var hdr tableHeader
	if err := d.read(&hdr); err != nil {
		return nil, err
	}
	points, err := readTable[Hardpoint](d, "hardpoints", hdr.Offset, int(hdr.Count))
	if err != nil {
		return nil, err
	}
	return &Hardpoints{Points: points}, nil
}
