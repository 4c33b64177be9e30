package formats

import (
	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/math"
)

// CollisionBox is a simple oriented hitbox.
type CollisionBox struct {
	_            uint64
	Matrix       math.Mat4
	Unknown1     uint64
	NameID       uint32
	AttachmentID uint32
	Unknown2     [4]uint16
	Unknown3     [2]uint8
	_            [2]byte
	Unknown4     uint32
	Unknown5     uint16
	_            [2]byte
}

// HitboxValues returns the ten matrix values written for a hitbox:
// the basis rows re-ordered Z, Y, X followed by the X row's fourth value.
func (b CollisionBox) HitboxValues() [10]float32 {
	m := b.Matrix
	return [10]float32{m[8], m[9], m[10], m[4], m[5], m[6], m[0], m[1], m[2], m[3]}
}

// Collision is a decoded LOCM chunk. Only simple boxes are decoded; the
// other tables are counted.
type Collision struct {
	Boxes           []CollisionBox
	ComplexCount    int
	DescriptorCount int
	OtherCount      int
}

func (*Collision) Kind() Kind { return KindCollision }
func (*Collision) isChunk()   {}

type collisionHeader struct {
	SimpleCount     uint16
	ComplexCount    uint16
	DescriptorCount uint16
	OtherCount      uint16
	Simple          int64
	Complex         int64
	Descriptor      int64
	Other           int64
}

// DecodeCollision decodes a LOCM payload.
func DecodeCollision(payload []byte) (*Collision, error) {
	d := newDecoder(chunked.TagCollision, payload)

	var hdr collisionHeader
	if err := d.read(&hdr); err != nil {
		return nil, err
	}
	boxes, err := readTable[CollisionBox](d, "simple boxes", hdr.Simple, int(hdr.SimpleCount))
	if err != nil {
		return nil, err
	}
	return &Collision{
		Boxes:           boxes,
		ComplexCount:    int(hdr.ComplexCount),
		DescriptorCount: int(hdr.DescriptorCount),
		OtherCount:      int(hdr.OtherCount),
	}, nil
}
