package formats

import (
	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/math"
)

// Bone is one skeleton joint. Parent is the bone's own index for roots.
type Bone struct {
	ID        uint32
	Parent    int
	Transform math.Mat3x4
}

// IsRoot reports whether the bone at index i is a root.
func (b Bone) IsRoot(i int) bool {
	return b.Parent == i
}

// Skeleton is a decoded lksm chunk.
type Skeleton struct {
	Bones []Bone
	Remap []uint16 // palette index -> bone index; empty means identity

	index map[uint32]int
}

func (*Skeleton) Kind() Kind { return KindSkeleton }
func (*Skeleton) isChunk()   {}

// IndexOf returns the array index of the bone with identifier id.
func (s *Skeleton) IndexOf(id uint32) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Lookup maps a raw skin palette index to a bone index. Without a remap
// table the palette is the bone order.
func (s *Skeleton) Lookup(palette int) (int, bool) {
	bone := palette
	if len(s.Remap) > 0 {
		if palette < 0 || palette >= len(s.Remap) {
			return 0, false
		}
		bone = int(s.Remap[palette])
	}
	if bone < 0 || bone >= len(s.Bones) {
		return 0, false
	}
	return bone, true
}

// Depth returns the number of parent steps from bone i to its root.
func (s *Skeleton) Depth(i int) int {
	depth := 0
	for s.Bones[i].Parent != i {
		i = s.Bones[i].Parent
		depth++
	}
	return depth
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

// DecodeSkeleton decodes an lksm payload and validates the hierarchy.
func DecodeSkeleton(payload []byte) (*Skeleton, error) {
	d := newDecoder(chunked.TagSkeleton, payload)

	var hdr skeletonHeader
	if err := d.read(&hdr); err != nil {
		return nil, err
	}
	n := int(hdr.BoneCount)

	hierarchy, err := requireTable[int16](d, "hierarchy", hdr.Hierarchy, n)
	if err != nil {
		return nil, err
	}
	ids, err := requireTable[uint32](d, "ids", hdr.IDs, n)
	if err != nil {
		return nil, err
	}

	var matrices []math.Mat3x4
	switch {
	case hdr.Matrices34 > 0:
		matrices, err = readTable[math.Mat3x4](d, "matrices34", hdr.Matrices34, n)
	case hdr.Matrices44 > 0:
		var wide []math.Mat4
		wide, err = readTable[math.Mat4](d, "matrices44", hdr.Matrices44, n)
		for _, m := range wide {
			matrices = append(matrices, math.Mat3x4FromMat4(m))
		}
	case n > 0:
		return nil, d.errorf(chunked.KindInvalid, "no bone matrix table for %d bones", n)
	}
	if err != nil {
		return nil, err
	}

	remap, err := readTable[uint16](d, "remap", hdr.Remap, int(hdr.RemapCount))
	if err != nil {
		return nil, err
	}

	s := &Skeleton{
		Bones: make([]Bone, n),
		Remap: remap,
		index: make(map[uint32]int, n),
	}
	for i := range s.Bones {
		parent := int(hierarchy[i])
		if parent == -1 {
			parent = i
		}
		if parent < 0 || parent >= n {
			return nil, d.errorf(chunked.KindInvalid, "bone %d: parent %d out of range [0, %d)", i, hierarchy[i], n)
		}
		s.Bones[i] = Bone{ID: ids[i], Parent: parent, Transform: matrices[i]}
		if _, dup := s.index[ids[i]]; !dup {
			s.index[ids[i]] = i
		}
	}

	if err := s.validateChains(d); err != nil {
		return nil, err
	}
	return s, nil
}

// validateChains checks every parent chain reaches a root within len(Bones) steps.
func (s *Skeleton) validateChains(d *decoder) error {
	n := len(s.Bones)
	// 0 unvisited, 1 on current path, 2 known to terminate
	state := make([]uint8, n)
	for start := range s.Bones {
		var path []int
		i := start
		for state[i] == 0 {
			state[i] = 1
			path = append(path, i)
			p := s.Bones[i].Parent
			if p == i {
				break
			}
			if state[p] == 1 {
				return d.errorf(chunked.KindInvalid, "bone %d: parent chain cycles through bone %d", start, p)
			}
			i = p
		}
		for _, j := range path {
			state[j] = 2
		}
	}
	return nil
}
