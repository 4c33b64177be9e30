package owmdl

import (
	"fmt"

	"github.com/Faultbox/mdlconv/pkg/cursor"
)

// Decode parses a 2.0 model or 1.1 physics document.
func Decode(data []byte) (*Document, error) {
	r := cursor.NewReader(data)
	d := &Document{}

	var err error
	if d.Major, err = r.ReadU16(); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if d.Minor, err = r.ReadU16(); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	model := d.Major == ModelMajor && d.Minor == ModelMinor
	if !model && !d.IsPhysics() {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, d.Major, d.Minor)
	}

	if d.Name, err = r.ReadString(); err != nil {
		return nil, fmt.Errorf("read name: %w", err)
	}
	if d.Variant, err = r.ReadString(); err != nil {
		return nil, fmt.Errorf("read variant: %w", err)
	}

	var boneCount uint16
	var submeshCount uint32
	var attachmentCount, hitboxCount int32
	if model {
		size, err := r.ReadI32()
		if err != nil {
			return nil, fmt.Errorf("read header size: %w", err)
		}
		if size != headerSize {
			return nil, fmt.Errorf("header size %d, want %d", size, headerSize)
		}
	}
	if boneCount, err = r.ReadU16(); err != nil {
		return nil, fmt.Errorf("read bone count: %w", err)
	}
	if submeshCount, err = r.ReadU32(); err != nil {
		return nil, fmt.Errorf("read submesh count: %w", err)
	}
	if attachmentCount, err = r.ReadI32(); err != nil {
		return nil, fmt.Errorf("read attachment count: %w", err)
	}
	if model {
		if hitboxCount, err = r.ReadI32(); err != nil {
			return nil, fmt.Errorf("read hitbox count: %w", err)
		}
	}
	if attachmentCount < 0 || hitboxCount < 0 {
		return nil, fmt.Errorf("negative counts: %d attachments, %d hitboxes", attachmentCount, hitboxCount)
	}

	d.Bones = make([]Bone, boneCount)
	for i := range d.Bones {
		if err := readBone(r, &d.Bones[i]); err != nil {
			return nil, fmt.Errorf("bone %d: %w", i, err)
		}
	}

	for i := uint32(0); i < submeshCount; i++ {
		s, err := readSubmesh(r)
		if err != nil {
			return nil, fmt.Errorf("submesh %d: %w", i, err)
		}
		d.Submeshes = append(d.Submeshes, s)
	}

	for i := int32(0); i < attachmentCount; i++ {
		var a Attachment
		if a.Name, err = r.ReadString(); err != nil {
			return nil, fmt.Errorf("attachment %d: %w", i, err)
		}
		if err := readF32s(r, a.Position[:], a.Rotation[:]); err != nil {
			return nil, fmt.Errorf("attachment %d: %w", i, err)
		}
		d.Attachments = append(d.Attachments, a)
	}

	if model {
		for i := range d.Attachments {
			if d.Attachments[i].Bone, err = r.ReadString(); err != nil {
				return nil, fmt.Errorf("attachment %d bone: %w", i, err)
			}
		}
		for i := int32(0); i < hitboxCount; i++ {
			var h Hitbox
			if h.NameID, err = r.ReadU32(); err != nil {
				return nil, fmt.Errorf("hitbox %d: %w", i, err)
			}
			if h.AttachmentID, err = r.ReadU32(); err != nil {
				return nil, fmt.Errorf("hitbox %d: %w", i, err)
			}
			if err := readF32s(r, h.Values[:]); err != nil {
				return nil, fmt.Errorf("hitbox %d: %w", i, err)
			}
			d.Hitboxes = append(d.Hitboxes, h)
		}
	}

	return d, nil
}

func readF32s(r *cursor.Reader, dsts ...[]float32) error {
	for _, dst := range dsts {
		for i := range dst {
			v, err := r.ReadF32()
			if err != nil {
				return err
			}
			dst[i] = v
		}
	}
	return nil
}

func readBone(r *cursor.Reader, b *Bone) error {
	var err error
	if b.Name, err = r.ReadString(); err != nil {
		return err
	}
	if b.Parent, err = r.ReadI16(); err != nil {
		return err
	}
	return readF32s(r, b.Position[:], b.Scale[:], b.Rotation[:])
}

func readSubmesh(r *cursor.Reader) (Submesh, error) {
	var s Submesh
	var err error
	if s.Name, err = r.ReadString(); err != nil {
		return s, err
	}
	var index int
	var material uint64
	if _, err := fmt.Sscanf(s.Name, "Submesh_%d.%d.%X", &index, &s.LOD, &material); err != nil {
		s.LOD = 0
	}
	if s.Material, err = r.ReadU64(); err != nil {
		return s, err
	}
	if s.UVCount, err = r.ReadU8(); err != nil {
		return s, err
	}
	vc, err := r.ReadI32()
	if err != nil {
		return s, err
	}
	tc, err := r.ReadI32()
	if err != nil {
		return s, err
	}
	// Each vertex needs at least 25 bytes and each triangle 13.
	if vc < 0 || tc < 0 || int64(vc)*25+int64(tc)*13 > r.Remaining() {
		return s, fmt.Errorf("%w: %d vertices, %d triangles", cursor.ErrUnexpectedEOF, vc, tc)
	}

	s.Vertices = make([]Vertex, vc)
	for i := range s.Vertices {
		if err := readVertex(r, &s.Vertices[i], int(s.UVCount)); err != nil {
			return s, fmt.Errorf("vertex %d: %w", i, err)
		}
	}

	s.Triangles = make([][3]int32, tc)
	for i := range s.Triangles {
		n, err := r.ReadU8()
		if err != nil {
			return s, err
		}
		if n != 3 {
			return s, fmt.Errorf("triangle %d: %d indices, want 3", i, n)
		}
		for j := 0; j < 3; j++ {
			if s.Triangles[i][j], err = r.ReadI32(); err != nil {
				return s, err
			}
		}
	}
	return s, nil
}

func readVertex(r *cursor.Reader, v *Vertex, uvCount int) error {
	if err := readF32s(r, v.Position[:], v.Normal[:]); err != nil {
		return err
	}
	if uvCount > 0 {
		v.UVs = make([][2]float32, uvCount)
		for c := range v.UVs {
			if err := readF32s(r, v.UVs[c][:]); err != nil {
				return err
			}
		}
	}
	n, err := r.ReadU8()
	if err != nil {
		return err
	}
	switch n {
	case 0:
		return nil
	case SkinCount:
	default:
		return fmt.Errorf("skin count %d, want 0 or %d", n, SkinCount)
	}
	v.Skinned = true
	for j := range v.Bones {
		if v.Bones[j], err = r.ReadU16(); err != nil {
			return err
		}
	}
	return readF32s(r, v.Weights[:])
}
