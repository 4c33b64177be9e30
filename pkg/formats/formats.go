// Package formats decodes the chunk kinds of a model container.
//
// Every decoder receives only its own payload slice, so no read can escape
// the chunk. Sub-table offsets are relative to the payload start; an offset
// of zero or less marks an absent table.
package formats

import (
	"errors"
	"fmt"

	"github.com/Faultbox/mdlconv/pkg/chunked"
)

// ErrUnknownTag is returned by Decode for tags without a decoder.
var ErrUnknownTag = errors.New("no decoder for chunk tag")

// Kind identifies a decoded chunk variant.
type Kind int

const (
	KindMesh Kind = iota + 1
	KindMaterials
	KindSkeleton
	KindHardpoints
	KindCollision
	KindCloth
	KindStrings
	KindSounds
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "Mesh"
	case KindMaterials:
		return "Materials"
	case KindSkeleton:
		return "Skeleton"
	case KindHardpoints:
		return "Hardpoints"
	case KindCollision:
		return "Collision"
	case KindCloth:
		return "Cloth"
	case KindStrings:
		return "Strings"
	case KindSounds:
		return "Sounds"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Chunk is a decoded chunk. The set of implementations is closed:
// *Mesh, *Materials, *Skeleton, *Hardpoints, *Collision, *Cloth,
// *StringTable and *SoundBindings.
type Chunk interface {
	Kind() Kind
	isChunk()
}

// Context carries facts from other chunks that a dependent decoder needs.
type Context struct {
	HasSkeleton   bool
	SkeletonBones int
}

// ContextFor builds a decode context from a decoded skeleton, which may be nil.
func ContextFor(s *Skeleton) Context {
	if s == nil {
		return Context{}
	}
	return Context{HasSkeleton: true, SkeletonBones: len(s.Bones)}
}

type decodeFunc func(payload []byte, ctx Context) (Chunk, error)

type entry struct {
	kind      Kind
	dependent bool // decoded after independent chunks, with Context
	decode    decodeFunc
}

var decoders = map[chunked.Tag]entry{
	chunked.TagMesh:      {KindMesh, false, func(p []byte, _ Context) (Chunk, error) { return DecodeMesh(p) }},
	chunked.TagMaterial:  {KindMaterials, false, func(p []byte, _ Context) (Chunk, error) { return DecodeMaterials(p) }},
	chunked.TagSkeleton:  {KindSkeleton, false, func(p []byte, _ Context) (Chunk, error) { return DecodeSkeleton(p) }},
	chunked.TagHardpoint: {KindHardpoints, false, func(p []byte, _ Context) (Chunk, error) { return DecodeHardpoints(p) }},
	chunked.TagCollision: {KindCollision, false, func(p []byte, _ Context) (Chunk, error) { return DecodeCollision(p) }},
	chunked.TagCloth:     {KindCloth, true, func(p []byte, ctx Context) (Chunk, error) { return DecodeCloth(p, ctx) }},
	chunked.TagStrings:   {KindStrings, false, func(p []byte, _ Context) (Chunk, error) { return DecodeStringTable(p) }},
	chunked.TagSounds:    {KindSounds, false, func(p []byte, _ Context) (Chunk, error) { return DecodeSoundBindings(p) }},
}

// Decode dispatches payload to the decoder registered for tag.
func Decode(tag chunked.Tag, payload []byte, ctx Context) (Chunk, error) {
	e, ok := decoders[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTag, tag)
	}
	return e.decode(payload, ctx)
}

// KindOf returns the kind decoded for tag.
func KindOf(tag chunked.Tag) (Kind, bool) {
	e, ok := decoders[tag]
	return e.kind, ok
}

// Known reports whether tag has a decoder.
func Known(tag chunked.Tag) bool {
	_, ok := decoders[tag]
	return ok
}

// Dependent reports whether tag must be decoded after the rest of the
// container, with a Context.
func Dependent(tag chunked.Tag) bool {
	return decoders[tag].dependent
}
