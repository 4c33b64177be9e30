package formats

import (
	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/encoding"
	"github.com/Faultbox/mdlconv/pkg/math"
)

// ClothNode is a simulated cloth particle.
type ClothNode struct {
	Position [3]float32
	Mass     float32
}

// ClothLink joins two nodes.
type ClothLink struct {
	A, B   uint16
	Length float32
}

// ClothConstraint is a three-node constraint record.
type ClothConstraint struct {
	Nodes [3]uint16
	_     uint16
	Value float32
}

// ClothCollider is a collision primitive attached to the cloth.
type ClothCollider struct {
	Values [6]float32
}

// ClothSystem is one cloth descriptor with its sub-tables. Absent
// sub-tables are nil.
type ClothSystem struct {
	Name        string
	System      []uint16
	Hierarchy   []int16
	Nodes       []ClothNode
	Links       []ClothLink
	Weights     []float32
	Constraints []ClothConstraint
	Colliders   []ClothCollider
	BindPoses   []math.Mat3x4
	BoneMap     []uint16 // one entry per skeleton bone
}

// Cloth is a decoded HTLC chunk.
type Cloth struct {
	Systems []ClothSystem
	Legacy  bool // no descriptor references the skeleton bone map
}

func (*Cloth) Kind() Kind { return KindCloth }
func (*Cloth) isChunk()   {}

type clothHeader struct {
	Count      uint64
	DescOffset int64
}

type clothRecord struct {
	_   uint64
	Key uint64
}

type clothDesc struct {
	Nodes           int64
	Links           int64
	Weights         int64
	Constraints     int64
	System          int64
	Colliders       int64
	BoneMap         int64
	Hierarchy       int64
	BindPoses       int64
	Name            [32]byte
	BoneCount       uint32
	NodeCount       uint32
	Unknown1        uint32
	LinkCount       uint32
	WeightCount     uint32
	Unknown2        uint32
	Unknown3        uint32
	ConstraintCount uint32
	Unknown5        uint32
	ColliderCount   uint32
	Unknown6        uint32
	UnknownB        float32
	UnknownD        uint64
	UnknownE        uint32
	UnknownF        uint16
	Unknown10       uint16
	Unknown11       clothRecord
	Unknown12       uint64
	Unknown13       clothRecord
}

// DecodeCloth decodes an HTLC payload. Descriptors that reference the
// skeleton bone map need ctx.HasSkeleton; without it the chunk fails with
// a MissingDependencyError. Chunks without bone map references decode
// without context.
func DecodeCloth(payload []byte, ctx Context) (*Cloth, error) {
	d := newDecoder(chunked.TagCloth, payload)

	var hdr clothHeader
	if err := d.read(&hdr); err != nil {
		return nil, err
	}
	if hdr.Count > uint64(len(payload)) {
		return nil, d.errorf(chunked.KindCount, "cloth count %d exceeds payload", hdr.Count)
	}
	descs, err := requireTable[clothDesc](d, "cloth descriptors", hdr.DescOffset, int(hdr.Count))
	if err != nil {
		return nil, err
	}

	cloth := &Cloth{Legacy: true}
	for _, desc := range descs {
		if desc.BoneMap != 0 {
			cloth.Legacy = false
		}
	}
	if !cloth.Legacy && !ctx.HasSkeleton {
		return nil, &chunked.MissingDependencyError{Tag: chunked.TagCloth, Needed: chunked.TagSkeleton}
	}

	cloth.Systems = make([]ClothSystem, len(descs))
	for i, desc := range descs {
		sys, err := decodeClothSystem(d, desc, cloth.Legacy, ctx)
		if err != nil {
			return nil, err
		}
		cloth.Systems[i] = sys
	}
	return cloth, nil
}

func decodeClothSystem(d *decoder, desc clothDesc, legacy bool, ctx Context) (ClothSystem, error) {
	sys := ClothSystem{Name: encoding.FixedString(desc.Name[:])}
	bones := int(desc.BoneCount)

	var err error
	if sys.System, err = readTable[uint16](d, "cloth system", desc.System, bones); err != nil {
		return sys, err
	}
	if sys.Hierarchy, err = readTable[int16](d, "cloth hierarchy", desc.Hierarchy, bones); err != nil {
		return sys, err
	}
	if legacy {
		return sys, nil
	}

	if sys.Nodes, err = readTable[ClothNode](d, "cloth nodes", desc.Nodes, int(desc.NodeCount)); err != nil {
		return sys, err
	}
	if sys.Links, err = readTable[ClothLink](d, "cloth links", desc.Links, int(desc.LinkCount)); err != nil {
		return sys, err
	}
	if sys.Weights, err = readTable[float32](d, "cloth weights", desc.Weights, int(desc.WeightCount)); err != nil {
		return sys, err
	}
	if sys.Constraints, err = readTable[ClothConstraint](d, "cloth constraints", desc.Constraints, int(desc.ConstraintCount)); err != nil {
		return sys, err
	}
	if sys.Colliders, err = readTable[ClothCollider](d, "cloth colliders", desc.Colliders, int(desc.ColliderCount)); err != nil {
		return sys, err
	}
	if sys.BindPoses, err = readTable[math.Mat3x4](d, "cloth bind poses", desc.BindPoses, bones); err != nil {
		return sys, err
	}
	if sys.BoneMap, err = readTable[uint16](d, "cloth bone map", desc.BoneMap, ctx.SkeletonBones); err != nil {
		return sys, err
	}
	return sys, nil
}
