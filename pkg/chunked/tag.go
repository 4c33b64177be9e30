// Package chunked reads the directory of a chunk-tagged model container.
package chunked

import "fmt"

// Tag is a 4-byte chunk identifier as stored in the container.
type Tag [4]byte

// Known chunk tags. Stored identifiers are byte-reversed names
// (MNRM = "mesh renderer", lksm = "skeleton", LDOM = "model").
var (
	TagModel     = MakeTag("LDOM")
	TagMesh      = MakeTag("MNRM")
	TagMaterial  = MakeTag("CLDM")
	TagSkeleton  = MakeTag("lksm")
	TagHardpoint = MakeTag("PRHM")
	TagCollision = MakeTag("LOCM")
	TagCloth     = MakeTag("HTLC")
	TagStrings   = MakeTag("GRTS")
	TagSounds    = MakeTag("DNBS")
)

// MakeTag builds a Tag from a 4-character string. Shorter strings are
// zero-padded; longer strings are truncated.
func MakeTag(s string) Tag {
	var t Tag
	copy(t[:], s)
	return t
}

// String returns the tag as text, or hex when it is not printable ASCII.
func (t Tag) String() string {
	for _, b := range t {
		if b < 0x20 || b > 0x7e {
			return fmt.Sprintf("%02x%02x%02x%02x", t[0], t[1], t[2], t[3])
		}
	}
	return string(t[:])
}

// IsZero reports whether the tag is unset.
func (t Tag) IsZero() bool {
	return t == Tag{}
}
