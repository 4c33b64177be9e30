package formats_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/formats"
	"github.com/Faultbox/mdlconv/pkg/formats/formatstest"
)

func triangleSubmesh(lod, material uint8) formats.Submesh {
	return formats.Submesh{
		LOD:       lod,
		Material:  material,
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		UVs: [][][2]float32{
			{{0, 0}, {1, 0}, {0, 1}},
			{{0.5, 0.5}, {0.25, 0.75}, {1, 1}},
		},
		Triangles: [][3]uint16{{0, 1, 2}},
	}
}

func TestDecodeMesh(t *testing.T) {
	skinned := triangleSubmesh(1, 3)
	skinned.Skin = []formats.SkinInfluence{
		{Indices: [4]uint16{0, 1, 0, 0}, Weights: [4]float32{1, 0, 0, 0}},
		{Indices: [4]uint16{1, 0, 0, 0}, Weights: [4]float32{1, 0, 0, 0}},
		{Indices: [4]uint16{2, 1, 0, 0}, Weights: [4]float32{0, 1, 0, 0}},
	}
	payload := formatstest.Mesh(triangleSubmesh(0, 1), skinned)

	mesh, err := formats.DecodeMesh(payload)
	if err != nil {
		t.Fatalf("DecodeMesh failed: %v", err)
	}
	if len(mesh.Submeshes) != 2 {
		t.Fatalf("submesh count = %d, want 2", len(mesh.Submeshes))
	}

	sm := mesh.Submeshes[1]
	if sm.Index != 1 || sm.LOD != 1 || sm.Material != 3 {
		t.Errorf("submesh header = index %d lod %d material %d", sm.Index, sm.LOD, sm.Material)
	}
	if sm.VertexCount() != 3 || sm.UVChannels() != 2 {
		t.Errorf("vertex count %d, uv channels %d", sm.VertexCount(), sm.UVChannels())
	}
	if sm.Positions[1] != [3]float32{1, 0, 0} {
		t.Errorf("position 1 = %v", sm.Positions[1])
	}
	if sm.UVs[1][1] != [2]float32{0.25, 0.75} {
		t.Errorf("uv channel 1 vertex 1 = %v", sm.UVs[1][1])
	}
	if sm.Skin == nil || sm.Skin[2].Indices != [4]uint16{2, 1, 0, 0} || sm.Skin[2].Weights[1] != 1 {
		t.Errorf("skin = %+v", sm.Skin)
	}
	if mesh.Submeshes[0].Skin != nil {
		t.Error("unskinned submesh should have nil skin")
	}
}

func TestDecodeMesh_PerVertexLengths(t *testing.T) {
	big := formats.Submesh{}
	for i := 0; i < 40; i++ {
		big.Positions = append(big.Positions, [3]float32{float32(i), 0, 0})
		big.Normals = append(big.Normals, [3]float32{0, 1, 0})
	}
	big.UVs = [][][2]float32{make([][2]float32, 40)}
	big.Skin = make([]formats.SkinInfluence, 40)
	big.Triangles = [][3]uint16{{0, 1, 39}, {2, 3, 4}}

	mesh, err := formats.DecodeMesh(formatstest.Mesh(big, triangleSubmesh(0, 0)))
	if err != nil {
		t.Fatalf("DecodeMesh failed: %v", err)
	}
	for _, sm := range mesh.Submeshes {
		n := sm.VertexCount()
		if len(sm.Normals) != n {
			t.Errorf("submesh %d: normals %d != positions %d", sm.Index, len(sm.Normals), n)
		}
		for c, uv := range sm.UVs {
			if len(uv) != n {
				t.Errorf("submesh %d: uv channel %d has %d entries, want %d", sm.Index, c, len(uv), n)
			}
		}
		if sm.Skin != nil && len(sm.Skin) != n {
			t.Errorf("submesh %d: skin %d != positions %d", sm.Index, len(sm.Skin), n)
		}
		for _, tri := range sm.Triangles {
			for _, idx := range tri {
				if int(idx) >= n {
					t.Errorf("submesh %d: index %d out of range", sm.Index, idx)
				}
			}
		}
	}
}

func TestDecodeMesh_CollisionFlag(t *testing.T) {
	tests := []struct {
		flags uint8
		want  bool
	}{
		{0, false},
		{formats.FlagCollision, true},
		{formats.FlagCollision | 0x01, false},
	}

	for _, tt := range tests {
		sm := formats.Submesh{Flags: tt.flags}
		if got := sm.IsCollisionOnly(); got != tt.want {
			t.Errorf("flags 0x%02x: IsCollisionOnly = %v, want %v", tt.flags, got, tt.want)
		}
	}
}

func TestDecodeMesh_Errors(t *testing.T) {
	const desc = 16 // first descriptor follows the header

	tests := []struct {
		name   string
		mutate func(p []byte) []byte
		kind   chunked.ErrorKind
	}{
		{
			name:   "truncated header",
			mutate: func(p []byte) []byte { return p[:10] },
			kind:   chunked.KindTruncated,
		},
		{
			name: "descriptor offset outside payload",
			mutate: func(p []byte) []byte {
				binary.LittleEndian.PutUint64(p[8:], 1<<20)
				return p
			},
			kind: chunked.KindBounds,
		},
		{
			name: "submesh count too large",
			mutate: func(p []byte) []byte {
				binary.LittleEndian.PutUint32(p[0:], 1000)
				return p
			},
			kind: chunked.KindCount,
		},
		{
			name: "positions missing",
			mutate: func(p []byte) []byte {
				binary.LittleEndian.PutUint64(p[desc+16:], 0)
				return p
			},
			kind: chunked.KindInvalid,
		},
		{
			name: "uvs missing",
			mutate: func(p []byte) []byte {
				binary.LittleEndian.PutUint64(p[desc+32:], 0)
				return p
			},
			kind: chunked.KindInvalid,
		},
		{
			name: "triangle index out of range",
			mutate: func(p []byte) []byte {
				idx := binary.LittleEndian.Uint64(p[desc+40:])
				binary.LittleEndian.PutUint16(p[idx+4:], 3)
				return p
			},
			kind: chunked.KindInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := tt.mutate(formatstest.Mesh(triangleSubmesh(0, 0)))
			_, err := formats.DecodeMesh(payload)

			var de *chunked.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %v", err)
			}
			if de.Kind != tt.kind {
				t.Errorf("kind = %s, want %s (%v)", de.Kind, tt.kind, err)
			}
			if de.Tag != chunked.TagMesh {
				t.Errorf("tag = %s, want MNRM", de.Tag)
			}
		})
	}
}

// Per-vertex tables must exist whenever their count is non-zero, so every
// decoded submesh keeps equal-length arrays. Optional tables decode as absent.
func TestDecodeMesh_TablePresence(t *testing.T) {
	const desc = 16

	tests := []struct {
		name    string
		field   int // descriptor byte offset of the table offset
		offset  int64
		wantErr bool
	}{
		{"positions zero", 16, 0, true},
		{"positions negative", 16, -16, true},
		{"normals zero", 24, 0, true},
		{"indices zero", 40, 0, true},
		{"skin zero", 48, 0, false},
		{"skin negative", 48, -8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := triangleSubmesh(0, 0)
			sm.Skin = []formats.SkinInfluence{{}, {}, {}}
			payload := formatstest.Mesh(sm)
			binary.LittleEndian.PutUint64(payload[desc+tt.field:], uint64(tt.offset))

			mesh, err := formats.DecodeMesh(payload)
			if tt.wantErr {
				var de *chunked.DecodeError
				if !errors.As(err, &de) || de.Kind != chunked.KindInvalid {
					t.Fatalf("expected invalid DecodeError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeMesh failed: %v", err)
			}
			got := mesh.Submeshes[0]
			if got.Skin != nil {
				t.Errorf("skin = %v, want absent", got.Skin)
			}
			if len(got.Positions) != 3 || len(got.Normals) != 3 || len(got.Triangles) != 1 {
				t.Errorf("tables = %d/%d/%d", len(got.Positions), len(got.Normals), len(got.Triangles))
			}
		})
	}
}

func TestDecodeMesh_Empty(t *testing.T) {
	mesh, err := formats.DecodeMesh(formatstest.Mesh())
	if err != nil {
		t.Fatalf("DecodeMesh failed: %v", err)
	}
	if len(mesh.Submeshes) != 0 {
		t.Errorf("expected no submeshes, got %d", len(mesh.Submeshes))
	}
}
