// Package formatstest encodes chunk payloads for tests and round-trip
// tooling. Every builder is the inverse of the matching formats decoder.
package formatstest

import (
	"github.com/x448/float16"

	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/cursor"
	"github.com/Faultbox/mdlconv/pkg/encoding"
	"github.com/Faultbox/mdlconv/pkg/formats"
	"github.com/Faultbox/mdlconv/pkg/math"
)

type tableHeader struct {
	Count  uint32
	_      uint32
	Offset int64
}

// table writes a count/offset header followed by the records.
func table[T any](records []T) []byte {
	w := cursor.NewWriter()
	hdr := tableHeader{Count: uint32(len(records))}
	w.WriteStruct(hdr)
	if len(records) > 0 {
		hdr.Offset = int64(w.Len())
		w.WriteStruct(records)
		w.PutStructAt(0, hdr)
	}
	return w.Bytes()
}

// Materials encodes a CLDM payload.
func Materials(keys ...uint64) []byte {
	return table(keys)
}

// Hardpoints encodes a PRHM payload.
func Hardpoints(points ...formats.Hardpoint) []byte {
	return table(points)
}

// Sounds encodes a DNBS payload.
func Sounds(bindings ...formats.SoundBinding) []byte {
	return table(bindings)
}

type submeshDesc struct {
	VertexCount   uint32
	TriangleCount uint32
	UVCount       uint8
	Material      uint8
	LOD           uint8
	Flags         uint8
	_             uint32
	Positions     int64
	Normals       int64
	UVs           int64
	Indices       int64
	Skin          int64
}

const submeshDescSize = 56

// Mesh encodes an MNRM payload. Vertex and triangle counts come from the
// slice lengths; a nil Skin is written as an absent table.
func Mesh(subs ...formats.Submesh) []byte {
	w := cursor.NewWriter()
	w.WriteU32(uint32(len(subs)))
	w.WriteU32(0)
	w.WriteI64(0)
	if len(subs) == 0 {
		return w.Bytes()
	}
	w.PutI64At(8, int64(w.Len()))
	descAt := w.Len()
	w.Pad(submeshDescSize * len(subs))

	for i, s := range subs {
		vc := len(s.Positions)
		desc := submeshDesc{
			VertexCount:   uint32(vc),
			TriangleCount: uint32(len(s.Triangles)),
			UVCount:       uint8(len(s.UVs)),
			Material:      s.Material,
			LOD:           s.LOD,
			Flags:         s.Flags,
		}
		if vc > 0 {
			desc.Positions = int64(w.Len())
			w.WriteStruct(s.Positions)
			desc.Normals = int64(w.Len())
			normals := s.Normals
			if len(normals) != vc {
				normals = make([][3]float32, vc)
			}
			w.WriteStruct(normals)
			if len(s.UVs) > 0 {
				desc.UVs = int64(w.Len())
				for _, channel := range s.UVs {
					for _, uv := range channel {
						w.WriteU16(float16.Fromfloat32(uv[0]).Bits())
						w.WriteU16(float16.Fromfloat32(uv[1]).Bits())
					}
				}
			}
		}
		if len(s.Triangles) > 0 {
			desc.Indices = int64(w.Len())
			w.WriteStruct(s.Triangles)
			w.Align(4)
		}
		if s.Skin != nil {
			desc.Skin = int64(w.Len())
			for _, inf := range s.Skin {
				w.WriteStruct(inf.Indices)
				for _, wt := range inf.Weights {
					w.WriteU8(uint8(wt*255 + 0.5))
				}
			}
		}
		w.PutStructAt(descAt+submeshDescSize*i, desc)
	}
	return w.Bytes()
}

// Skeleton describes a skeleton payload in its stored form.
type Skeleton struct {
	IDs      []uint32
	Parents  []int16 // -1 for roots
	Matrices []math.Mat3x4
	Remap    []uint16
	Wide     bool // store 4x4 matrices instead of 3x4
}

type skeletonHeader struct {
	Matrices34 int64
	Matrices44 int64
	IDs        int64
	Hierarchy  int64
	Remap      int64
	BoneCount  uint16
	RemapCount uint16
	_          uint32
}

// Chain returns an n-bone skeleton where bone i parents bone i+1. Bone i
// has identifier 0x100+i and is translated one unit along X.
func Chain(n int) Skeleton {
	s := Skeleton{
		IDs:      make([]uint32, n),
		Parents:  make([]int16, n),
		Matrices: make([]math.Mat3x4, n),
	}
	for i := 0; i < n; i++ {
		s.IDs[i] = uint32(0x100 + i)
		s.Parents[i] = int16(i - 1)
		s.Matrices[i] = math.PackBone(math.Vec3{X: 1}, math.Vec3{X: 1, Y: 1, Z: 1}, math.QuatIdentity())
	}
	return s
}

// Payload encodes an lksm payload.
func (s Skeleton) Payload() []byte {
	w := cursor.NewWriter()
	hdr := skeletonHeader{BoneCount: uint16(len(s.IDs)), RemapCount: uint16(len(s.Remap))}
	w.WriteStruct(hdr)

	if len(s.Parents) > 0 {
		hdr.Hierarchy = int64(w.Len())
		w.WriteStruct(s.Parents)
		w.Align(4)
	}
	if len(s.IDs) > 0 {
		hdr.IDs = int64(w.Len())
		w.WriteStruct(s.IDs)
	}
	if len(s.Matrices) > 0 {
		if s.Wide {
			hdr.Matrices44 = int64(w.Len())
			for _, m := range s.Matrices {
				var wide math.Mat4
				copy(wide[:], m[:])
				wide[15] = 1
				w.WriteStruct(wide)
			}
		} else {
			hdr.Matrices34 = int64(w.Len())
			w.WriteStruct(s.Matrices)
		}
	}
	if len(s.Remap) > 0 {
		hdr.Remap = int64(w.Len())
		w.WriteStruct(s.Remap)
	}
	w.PutStructAt(0, hdr)
	return w.Bytes()
}

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

// Collision encodes a LOCM payload with simple boxes only.
func Collision(boxes ...formats.CollisionBox) []byte {
	w := cursor.NewWriter()
	hdr := collisionHeader{SimpleCount: uint16(len(boxes))}
	w.WriteStruct(hdr)
	if len(boxes) > 0 {
		hdr.Simple = int64(w.Len())
		w.WriteStruct(boxes)
		w.PutStructAt(0, hdr)
	}
	return w.Bytes()
}

type stringEntryHeader struct {
	Offset     uint64
	Size       uint32
	References uint32
}

// Strings encodes a GRTS payload. With openLast the final entry is stored
// with size 0 and followed by a single NUL that ends the payload.
func Strings(openLast bool, entries ...formats.StringEntry) []byte {
	w := cursor.NewWriter()
	hdr := tableHeader{Count: uint32(len(entries))}
	w.WriteStruct(hdr)
	if len(entries) == 0 {
		return w.Bytes()
	}
	hdr.Offset = int64(w.Len())
	w.PutStructAt(0, hdr)
	headersAt := w.Len()
	w.Pad(16 * len(entries))

	for i, e := range entries {
		h := stringEntryHeader{Offset: uint64(w.Len()), Size: uint32(len(e.Value)), References: e.References}
		w.WriteBytes([]byte(e.Value))
		if openLast && i == len(entries)-1 {
			h.Size = 0
			w.WriteU8(0)
		}
		w.PutStructAt(headersAt+16*i, h)
	}
	return w.Bytes()
}

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

const clothDescSize = 208

// Cloth encodes an HTLC payload. The bone count of each system is the
// length of its System slice; a nil BoneMap is written as absent, which
// keeps the chunk in the legacy layout when no system has one.
func Cloth(systems ...formats.ClothSystem) []byte {
	w := cursor.NewWriter()
	w.WriteStruct(clothHeader{Count: uint64(len(systems))})
	if len(systems) == 0 {
		return w.Bytes()
	}
	w.PutStructAt(0, clothHeader{Count: uint64(len(systems)), DescOffset: int64(w.Len())})
	descAt := w.Len()
	w.Pad(clothDescSize * len(systems))

	for i, s := range systems {
		desc := clothDesc{
			BoneCount:       uint32(len(s.System)),
			NodeCount:       uint32(len(s.Nodes)),
			LinkCount:       uint32(len(s.Links)),
			WeightCount:     uint32(len(s.Weights)),
			ConstraintCount: uint32(len(s.Constraints)),
			ColliderCount:   uint32(len(s.Colliders)),
		}
		copy(desc.Name[:], encoding.StringToFixed(s.Name, len(desc.Name)))

		desc.System = writeTable(w, s.System)
		desc.Hierarchy = writeTable(w, s.Hierarchy)
		desc.Nodes = writeTable(w, s.Nodes)
		desc.Links = writeTable(w, s.Links)
		desc.Weights = writeTable(w, s.Weights)
		desc.Constraints = writeTable(w, s.Constraints)
		desc.Colliders = writeTable(w, s.Colliders)
		desc.BindPoses = writeTable(w, s.BindPoses)
		desc.BoneMap = writeTable(w, s.BoneMap)
		w.PutStructAt(descAt+clothDescSize*i, desc)
	}
	return w.Bytes()
}

func writeTable[T any](w *cursor.Writer, records []T) int64 {
	if len(records) == 0 {
		return 0
	}
	w.Align(4)
	off := int64(w.Len())
	w.WriteStruct(records)
	return off
}

// Container wraps payloads in a container under the LDOM root, in order.
func Container(chunks ...Chunk) []byte {
	b := chunked.NewBuilder()
	for _, c := range chunks {
		b.Add(c.Tag, chunked.TagModel, c.Payload)
	}
	return b.Bytes()
}

// Chunk pairs a tag with its encoded payload.
type Chunk struct {
	Tag     chunked.Tag
	Payload []byte
}
