// Package owmdl assembles decoded models into the interchange model
// document and reads documents back.
//
// Layout (little-endian, strings carry a 7-bit length prefix):
//
//	u16 major, u16 minor
//	name, variant          (a single zero byte when empty)
//	i32 header size        (2.0 only, always 14)
//	u16 bones, u32 submeshes, i32 attachments
//	i32 hitboxes           (2.0 only)
//	bones, submeshes, attachments, attachment bone names, hitboxes
package owmdl

import (
	"errors"
	"fmt"
)

// Format versions.
const (
	ModelMajor   = 2
	ModelMinor   = 0
	PhysicsMajor = 1
	PhysicsMinor = 1

	headerSize = 14 // u16 + u32 + i32 + i32
)

// SkinCount is the number of influences written for a skinned vertex.
const SkinCount = 4

var (
	// ErrBoneIndex is returned when a skin index does not resolve to a bone.
	ErrBoneIndex = errors.New("skin index does not resolve to a bone")

	// ErrUnsupportedVersion is returned by Decode for unknown versions.
	ErrUnsupportedVersion = errors.New("unsupported document version")
)

// MissingRequiredChunkError is returned when the model lacks a chunk the
// document cannot be built without.
type MissingRequiredChunkError struct {
	Name string
}

func (e *MissingRequiredChunkError) Error() string {
	return fmt.Sprintf("missing required chunk: %s", e.Name)
}

// Bone is one document bone. Parent equals the bone's own index for roots.
type Bone struct {
	Name     string
	Parent   int16
	Position [3]float32
	Scale    [3]float32
	Rotation [4]float32 // x, y, z, w
}

// Vertex is one document vertex. Normal is stored negated.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UVs      [][2]float32
	Skinned  bool
	Bones    [SkinCount]uint16
	Weights  [SkinCount]float32
}

// Submesh is one document submesh. LOD is not stored separately; Decode
// recovers it from the name when possible.
type Submesh struct {
	Name      string
	Material  uint64
	UVCount   uint8
	LOD       uint8
	Vertices  []Vertex
	Triangles [][3]int32
}

// Attachment is a named hardpoint transform. Bone is the name written in the
// attachment bone block, derived from the hardpoint's own id. ParentBone names
// the skeleton bone the hardpoint hangs from; it is not stored in the document
// and is empty after Decode.
type Attachment struct {
	Name       string
	Position   [3]float32
	Rotation   [4]float32
	Bone       string
	ParentBone string
}

// Hitbox is a simple collision box.
type Hitbox struct {
	NameID       uint32
	AttachmentID uint32
	Values       [10]float32
}

// Document is an in-memory model document.
type Document struct {
	Major, Minor uint16
	Name         string
	Variant      string
	Bones        []Bone
	Submeshes    []Submesh
	Attachments  []Attachment
	Hitboxes     []Hitbox
}

// VertexCount returns the total number of vertices.
func (d *Document) VertexCount() int {
	n := 0
	for _, s := range d.Submeshes {
		n += len(s.Vertices)
	}
	return n
}

// IsPhysics reports whether the document uses the physics layout.
func (d *Document) IsPhysics() bool {
	return d.Major == PhysicsMajor && d.Minor == PhysicsMinor
}

func boneName(id uint32) string {
	return fmt.Sprintf("bone_%04X", id)
}

// attachmentName keeps the doubled underscore existing consumers match on.
func attachmentName(id uint32) string {
	return fmt.Sprintf("attachment__%04X", id)
}

func submeshName(index int, lod uint8, material uint64) string {
	return fmt.Sprintf("Submesh_%d.%d.%016X", index, lod, material)
}
