package formats

import (
	"github.com/x448/float16"

	"github.com/Faultbox/mdlconv/pkg/chunked"
)

// FlagCollision alone marks a submesh that only carries collision geometry.
const FlagCollision uint8 = 0x08

// SkinInfluence holds up to four bone influences for one vertex.
// Indices are raw palette indices; resolve them with Skeleton.Lookup.
type SkinInfluence struct {
	Indices [4]uint16
	Weights [4]float32
}

// Submesh is one drawable piece of a mesh. All per-vertex slices have the
// same length; Skin is nil when the submesh is not skinned.
type Submesh struct {
	Index     int
	LOD       uint8
	Material  uint8
	Flags     uint8
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][][2]float32 // [channel][vertex]
	Triangles [][3]uint16
	Skin      []SkinInfluence
}

// VertexCount returns the number of vertices.
func (s *Submesh) VertexCount() int {
	return len(s.Positions)
}

// UVChannels returns the number of texture coordinate channels.
func (s *Submesh) UVChannels() int {
	return len(s.UVs)
}

// IsCollisionOnly reports whether the submesh only carries collision geometry.
func (s *Submesh) IsCollisionOnly() bool {
	return s.Flags == FlagCollision
}

// Mesh is a decoded MNRM chunk.
type Mesh struct {
	Submeshes []Submesh
}

func (*Mesh) Kind() Kind { return KindMesh }
func (*Mesh) isChunk()   {}

type meshHeader struct {
	SubmeshCount uint32
	_            uint32
	DescOffset   int64
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

type skinRecord struct {
	Indices [4]uint16
	Weights [4]uint8
}

// DecodeMesh decodes an MNRM payload.
func DecodeMesh(payload []byte) (*Mesh, error) {
	d := newDecoder(chunked.TagMesh, payload)

	var hdr meshHeader
	if err := d.read(&hdr); err != nil {
		return nil, err
	}

	descs, err := requireTable[submeshDesc](d, "submesh descriptors", hdr.DescOffset, int(hdr.SubmeshCount))
	if err != nil {
		return nil, err
	}

	mesh := &Mesh{Submeshes: make([]Submesh, len(descs))}
	for i, desc := range descs {
		sm, err := decodeSubmesh(d, i, desc)
		if err != nil {
			return nil, err
		}
		mesh.Submeshes[i] = sm
	}
	return mesh, nil
}

func decodeSubmesh(d *decoder, index int, desc submeshDesc) (Submesh, error) {
	vc := int(desc.VertexCount)
	sm := Submesh{
		Index:    index,
		LOD:      desc.LOD,
		Material: desc.Material,
		Flags:    desc.Flags,
	}

	var err error
	if sm.Positions, err = requireTable[[3]float32](d, "positions", desc.Positions, vc); err != nil {
		return sm, err
	}
	if sm.Normals, err = requireTable[[3]float32](d, "normals", desc.Normals, vc); err != nil {
		return sm, err
	}

	if vc > 0 && desc.UVCount > 0 {
		if desc.UVs <= 0 {
			return sm, d.errorf(chunked.KindInvalid, "submesh %d: uv table missing for %d channels", index, desc.UVCount)
		}
		sm.UVs = make([][][2]float32, desc.UVCount)
		for c := range sm.UVs {
			offset := desc.UVs + int64(c)*int64(vc)*4
			raw, err := readTable[[2]uint16](d, "uvs", offset, vc)
			if err != nil {
				return sm, err
			}
			uv := make([][2]float32, vc)
			for v, h := range raw {
				uv[v] = [2]float32{float16.Frombits(h[0]).Float32(), float16.Frombits(h[1]).Float32()}
			}
			sm.UVs[c] = uv
		}
	}

	if sm.Triangles, err = requireTable[[3]uint16](d, "indices", desc.Indices, int(desc.TriangleCount)); err != nil {
		return sm, err
	}
	for t, tri := range sm.Triangles {
		for _, idx := range tri {
			if int(idx) >= vc {
				return sm, d.errorf(chunked.KindInvalid, "submesh %d: triangle %d index %d >= vertex count %d", index, t, idx, vc)
			}
		}
	}

	skin, err := readTable[skinRecord](d, "skin", desc.Skin, vc)
	if err != nil {
		return sm, err
	}
	if skin != nil {
		sm.Skin = make([]SkinInfluence, vc)
		for v, rec := range skin {
			inf := SkinInfluence{Indices: rec.Indices}
			for j, w := range rec.Weights {
				inf.Weights[j] = float32(w) / 255
			}
			sm.Skin[v] = inf
		}
	}

	return sm, nil
}
