package owmdl

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/mdlconv/pkg/formats"
	"github.com/Faultbox/mdlconv/pkg/model"
)

// Options controls which submeshes are written and how.
type Options struct {
	AllowedLODs      []uint8 // nil accepts every LOD
	ExcludeCollision bool    // drop collision-only submeshes
	SingleLOD        bool    // keep only the first accepted LOD
	LegacyScale      bool    // write bone scale as X, X, X
	Name             string
	Variant          string
	Logger           *zap.Logger
}

func (o Options) allows(lod uint8) bool {
	return o.AllowedLODs == nil || slices.Contains(o.AllowedLODs, lod)
}

// Selection is the ordered result of submesh filtering.
type Selection struct {
	LODs   []uint8         // ascending
	Groups map[uint8][]int // LOD -> submesh indices in mesh order
}

// Indices returns the selected submesh indices in write order.
func (s Selection) Indices() []int {
	var out []int
	for _, lod := range s.LODs {
		out = append(out, s.Groups[lod]...)
	}
	return out
}

// Select filters mesh submeshes and groups them by LOD. In single-LOD mode
// only the first contiguous run of accepted submeshes sharing one LOD is
// kept; the first accepted submesh with another LOD ends the selection.
func Select(mesh *formats.Mesh, opts Options) Selection {
	sel := Selection{Groups: make(map[uint8][]int)}
	locked := false
	var lockedLOD uint8

	for i := range mesh.Submeshes {
		sm := &mesh.Submeshes[i]
		if opts.ExcludeCollision && sm.IsCollisionOnly() {
			continue
		}
		if !opts.allows(sm.LOD) {
			continue
		}
		if opts.SingleLOD {
			if locked && sm.LOD != lockedLOD {
				break
			}
			locked, lockedLOD = true, sm.LOD
		}
		if _, ok := sel.Groups[sm.LOD]; !ok {
			sel.LODs = append(sel.LODs, sm.LOD)
		}
		sel.Groups[sm.LOD] = append(sel.Groups[sm.LOD], i)
	}
	slices.Sort(sel.LODs)
	return sel
}

// Assemble builds a 2.0 document from a decoded model. A model without a
// mesh fails with *MissingRequiredChunkError.
func Assemble(m *model.Model, opts Options) (*Document, error) {
	if m == nil || m.Mesh == nil {
		return nil, &MissingRequiredChunkError{Name: "mesh"}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	doc := &Document{
		Major:   ModelMajor,
		Minor:   ModelMinor,
		Name:    opts.Name,
		Variant: opts.Variant,
	}

	if m.Skeleton != nil {
		doc.Bones = assembleBones(m.Skeleton, opts.LegacyScale)
	}

	sel := Select(m.Mesh, opts)
	for _, lod := range sel.LODs {
		for _, i := range sel.Groups[lod] {
			sm, err := assembleSubmesh(m, &m.Mesh.Submeshes[i], log)
			if err != nil {
				return nil, err
			}
			doc.Submeshes = append(doc.Submeshes, sm)
		}
	}

	if m.Hardpoints != nil {
		doc.Attachments = assembleAttachments(m.Hardpoints)
	}
	if m.Collision != nil {
		for _, box := range m.Collision.Boxes {
			doc.Hitboxes = append(doc.Hitboxes, Hitbox{
				NameID:       box.NameID,
				AttachmentID: box.AttachmentID,
				Values:       box.HitboxValues(),
			})
		}
	}

	log.Debug("assembled document",
		zap.Int("bones", len(doc.Bones)),
		zap.Int("submeshes", len(doc.Submeshes)),
		zap.Int("attachments", len(doc.Attachments)),
		zap.Int("hitboxes", len(doc.Hitboxes)))

	return doc, nil
}

func assembleBones(s *formats.Skeleton, legacyScale bool) []Bone {
	bones := make([]Bone, len(s.Bones))
	for i, b := range s.Bones {
		scale := b.Transform.Scale()
		if legacyScale {
			scale.Y, scale.Z = scale.X, scale.X
		}
		bones[i] = Bone{
			Name:     boneName(b.ID),
			Parent:   int16(b.Parent),
			Position: b.Transform.Translation().Array(),
			Scale:    scale.Array(),
			Rotation: b.Transform.Rotation().Array(),
		}
	}
	return bones
}

func assembleSubmesh(m *model.Model, sm *formats.Submesh, log *zap.Logger) (Submesh, error) {
	material, ok := m.Materials.Key(int(sm.Material))
	if !ok {
		log.Warn("material key unavailable, writing 0",
			zap.Int("submesh", sm.Index),
			zap.Uint8("material", sm.Material),
			zap.Bool("table", m.Materials != nil))
	}

	out := Submesh{
		Name:      submeshName(sm.Index, sm.LOD, material),
		Material:  material,
		UVCount:   uint8(sm.UVChannels()),
		LOD:       sm.LOD,
		Vertices:  make([]Vertex, sm.VertexCount()),
		Triangles: make([][3]int32, len(sm.Triangles)),
	}

	skinned := m.Skeleton != nil && sm.Skin != nil
	for v := range out.Vertices {
		n := sm.Normals[v]
		vert := Vertex{
			Position: sm.Positions[v],
			Normal:   [3]float32{-n[0], -n[1], -n[2]},
		}
		if len(sm.UVs) > 0 {
			vert.UVs = make([][2]float32, len(sm.UVs))
			for c := range sm.UVs {
				vert.UVs[c] = sm.UVs[c][v]
			}
		}
		if skinned {
			inf := sm.Skin[v]
			vert.Skinned = true
			vert.Weights = inf.Weights
			for j, raw := range inf.Indices {
				bone, ok := m.Skeleton.Lookup(int(raw))
				if !ok {
					return out, fmt.Errorf("submesh %d vertex %d: palette index %d: %w", sm.Index, v, raw, ErrBoneIndex)
				}
				vert.Bones[j] = uint16(bone)
			}
		}
		out.Vertices[v] = vert
	}

	for t, tri := range sm.Triangles {
		out.Triangles[t] = [3]int32{int32(tri[0]), int32(tri[1]), int32(tri[2])}
	}
	return out, nil
}

func assembleAttachments(h *formats.Hardpoints) []Attachment {
	out := make([]Attachment, len(h.Points))
	for i, p := range h.Points {
		pos, rot := p.Matrix.Decompose()
		out[i] = Attachment{
			Name:       attachmentName(p.ID),
			Position:   pos.Array(),
			Rotation:   rot.Array(),
			Bone:       boneName(p.ID),
			ParentBone: boneName(p.ParentBone),
		}
	}
	return out
}
