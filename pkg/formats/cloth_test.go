package formats_test

import (
	"errors"
	"testing"

	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/formats"
	"github.com/Faultbox/mdlconv/pkg/formats/formatstest"
	"github.com/Faultbox/mdlconv/pkg/math"
)

func legacyCloth() formats.ClothSystem {
	return formats.ClothSystem{
		Name:      "cape",
		System:    []uint16{4, 5, 6},
		Hierarchy: []int16{-1, 0, 1},
	}
}

func fullCloth() formats.ClothSystem {
	c := legacyCloth()
	c.Nodes = []formats.ClothNode{{Position: [3]float32{1, 2, 3}, Mass: 0.5}}
	c.Links = []formats.ClothLink{{A: 0, B: 1, Length: 2}}
	c.Weights = []float32{0.25, 0.75}
	c.Constraints = []formats.ClothConstraint{{Nodes: [3]uint16{0, 1, 2}, Value: 1}}
	c.Colliders = []formats.ClothCollider{{Values: [6]float32{1, 2, 3, 4, 5, 6}}}
	c.BindPoses = make([]math.Mat3x4, 3)
	c.BoneMap = []uint16{9, 8, 7, 6}
	return c
}

func TestDecodeCloth_Legacy(t *testing.T) {
	cloth, err := formats.DecodeCloth(formatstest.Cloth(legacyCloth()), formats.Context{})
	if err != nil {
		t.Fatalf("DecodeCloth failed: %v", err)
	}
	if !cloth.Legacy {
		t.Error("expected legacy variant")
	}
	sys := cloth.Systems[0]
	if sys.Name != "cape" {
		t.Errorf("name = %q, want cape", sys.Name)
	}
	if len(sys.System) != 3 || sys.System[2] != 6 || sys.Hierarchy[0] != -1 {
		t.Errorf("system = %v, hierarchy = %v", sys.System, sys.Hierarchy)
	}
}

func TestDecodeCloth_Full(t *testing.T) {
	payload := formatstest.Cloth(fullCloth())

	cloth, err := formats.DecodeCloth(payload, formats.Context{HasSkeleton: true, SkeletonBones: 4})
	if err != nil {
		t.Fatalf("DecodeCloth failed: %v", err)
	}
	if cloth.Legacy {
		t.Error("expected full variant")
	}
	sys := cloth.Systems[0]
	if len(sys.BoneMap) != 4 || sys.BoneMap[3] != 6 {
		t.Errorf("bone map = %v", sys.BoneMap)
	}
	if len(sys.Nodes) != 1 || sys.Nodes[0].Mass != 0.5 {
		t.Errorf("nodes = %+v", sys.Nodes)
	}
	if len(sys.Links) != 1 || sys.Links[0].Length != 2 {
		t.Errorf("links = %+v", sys.Links)
	}
	if len(sys.Weights) != 2 || len(sys.Constraints) != 1 || len(sys.Colliders) != 1 || len(sys.BindPoses) != 3 {
		t.Errorf("tables: weights %d constraints %d colliders %d bind poses %d",
			len(sys.Weights), len(sys.Constraints), len(sys.Colliders), len(sys.BindPoses))
	}
}

func TestDecodeCloth_MissingSkeleton(t *testing.T) {
	_, err := formats.DecodeCloth(formatstest.Cloth(legacyCloth(), fullCloth()), formats.Context{})

	var me *chunked.MissingDependencyError
	if !errors.As(err, &me) {
		t.Fatalf("expected *MissingDependencyError, got %v", err)
	}
	if me.Needed != chunked.TagSkeleton {
		t.Errorf("needed = %s, want lksm", me.Needed)
	}
}

func TestDecodeCloth_BoneMapLargerThanPayload(t *testing.T) {
	_, err := formats.DecodeCloth(formatstest.Cloth(fullCloth()), formats.Context{HasSkeleton: true, SkeletonBones: 60000})

	var de *chunked.DecodeError
	if !errors.As(err, &de) || de.Kind != chunked.KindCount {
		t.Fatalf("expected count DecodeError, got %v", err)
	}
}

func TestContextFor(t *testing.T) {
	if ctx := formats.ContextFor(nil); ctx.HasSkeleton {
		t.Error("nil skeleton should give empty context")
	}
	s, err := formats.DecodeSkeleton(formatstest.Chain(5).Payload())
	if err != nil {
		t.Fatalf("DecodeSkeleton failed: %v", err)
	}
	if ctx := formats.ContextFor(s); !ctx.HasSkeleton || ctx.SkeletonBones != 5 {
		t.Errorf("ContextFor = %+v", ctx)
	}
}
