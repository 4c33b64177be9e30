package model

import (
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/formats"
	"github.com/Faultbox/mdlconv/pkg/formats/formatstest"
)

func testMesh() []byte {
	return formatstest.Mesh(formats.Submesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Triangles: [][3]uint16{{0, 1, 2}},
	})
}

func fullCloth() formats.ClothSystem {
	return formats.ClothSystem{
		Name:    "cape",
		System:  []uint16{1, 2},
		BoneMap: []uint16{0, 1, 2},
	}
}

func TestLoad_TwoPhase(t *testing.T) {
	// Cloth precedes the skeleton it depends on.
	buf := formatstest.Container(
		formatstest.Chunk{Tag: chunked.TagCloth, Payload: formatstest.Cloth(fullCloth())},
		formatstest.Chunk{Tag: chunked.TagMesh, Payload: testMesh()},
		formatstest.Chunk{Tag: chunked.TagStrings, Payload: formatstest.Strings(false, formats.StringEntry{Value: "one"})},
		formatstest.Chunk{Tag: chunked.TagSkeleton, Payload: formatstest.Chain(3).Payload()},
		formatstest.Chunk{Tag: chunked.MakeTag("ABCD"), Payload: []byte{1, 2, 3}},
		formatstest.Chunk{Tag: chunked.TagStrings, Payload: formatstest.Strings(true, formats.StringEntry{Value: "two"})},
		formatstest.Chunk{Tag: chunked.TagMaterial, Payload: formatstest.Materials(0x10)},
	)

	m, err := Load(buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(m.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", m.Err())
	}
	if m.Mesh == nil || m.Skeleton == nil || m.Materials == nil {
		t.Fatal("expected mesh, skeleton and materials")
	}
	if m.Cloth == nil || m.Cloth.Legacy {
		t.Fatalf("expected full cloth, got %+v", m.Cloth)
	}
	if len(m.Cloth.Systems[0].BoneMap) != 3 {
		t.Errorf("bone map sized by skeleton: got %d entries", len(m.Cloth.Systems[0].BoneMap))
	}
	if len(m.Strings) != 2 || m.Strings[0].Entries[0].Value != "one" || m.Strings[1].Entries[0].Value != "two" {
		t.Errorf("strings should aggregate in container order: %+v", m.Strings)
	}
	if len(m.Skipped) != 1 || m.Skipped[0].Tag != chunked.MakeTag("ABCD") {
		t.Errorf("skipped = %+v", m.Skipped)
	}
}

func TestLoad_MissingDependency(t *testing.T) {
	buf := formatstest.Container(
		formatstest.Chunk{Tag: chunked.TagMesh, Payload: testMesh()},
		formatstest.Chunk{Tag: chunked.TagCloth, Payload: formatstest.Cloth(fullCloth())},
	)

	core, logs := observer.New(zapcore.WarnLevel)
	m, err := Load(buf, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Mesh == nil {
		t.Error("mesh should still decode")
	}
	if m.Cloth != nil {
		t.Error("cloth should be absent")
	}
	if !m.Failed(chunked.TagCloth) {
		t.Fatal("expected a cloth failure")
	}

	var me *chunked.MissingDependencyError
	if !errors.As(m.Err(), &me) || me.Needed != chunked.TagSkeleton {
		t.Errorf("expected missing lksm dependency, got %v", m.Err())
	}
	if logs.FilterMessage("chunk decode failed").Len() != 1 {
		t.Errorf("expected one warning, got %d", logs.Len())
	}
}

func TestLoad_LegacyClothWithoutSkeleton(t *testing.T) {
	legacy := formats.ClothSystem{Name: "old", System: []uint16{1}, Hierarchy: []int16{-1}}
	buf := formatstest.Container(
		formatstest.Chunk{Tag: chunked.TagCloth, Payload: formatstest.Cloth(legacy)},
	)

	m, err := Load(buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Cloth == nil || !m.Cloth.Legacy {
		t.Fatalf("expected legacy cloth, failures: %v", m.Err())
	}
}

func TestLoad_ChunkFailureIsLocal(t *testing.T) {
	corrupt := testMesh()[:12]
	buf := formatstest.Container(
		formatstest.Chunk{Tag: chunked.TagMesh, Payload: corrupt},
		formatstest.Chunk{Tag: chunked.TagSkeleton, Payload: formatstest.Chain(2).Payload()},
	)

	m, err := Load(buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Mesh != nil {
		t.Error("corrupt mesh should be absent")
	}
	if m.Skeleton == nil {
		t.Error("skeleton should decode")
	}

	var de *chunked.DecodeError
	if !errors.As(m.Err(), &de) || de.Tag != chunked.TagMesh || de.Kind != chunked.KindTruncated {
		t.Errorf("expected truncated mesh DecodeError, got %v", m.Err())
	}
}

func TestLoad_FirstSingletonWins(t *testing.T) {
	buf := formatstest.Container(
		formatstest.Chunk{Tag: chunked.TagMaterial, Payload: formatstest.Materials(1)},
		formatstest.Chunk{Tag: chunked.TagMaterial, Payload: formatstest.Materials(2, 3)},
	)

	m, err := Load(buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(m.Materials.Keys) != 1 || m.Materials.Keys[0] != 1 {
		t.Errorf("materials = %v, want first occurrence", m.Materials.Keys)
	}
}

func TestLoad_WithRoot(t *testing.T) {
	other := chunked.MakeTag("XXXX")
	buf := chunked.NewBuilder().
		Add(chunked.TagMaterial, other, formatstest.Materials(9)).
		Add(chunked.TagMaterial, chunked.TagModel, formatstest.Materials(1)).
		Bytes()

	m, err := Load(buf, WithRoot(chunked.TagModel))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Materials == nil || m.Materials.Keys[0] != 1 {
		t.Errorf("expected LDOM materials, got %+v", m.Materials)
	}
}

func TestLoad_ScanFailure(t *testing.T) {
	if _, err := Load([]byte("nope")); !errors.Is(err, chunked.ErrInvalidMagic) {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}

	called := false
	scanner := chunked.ScannerFunc(func(buf []byte) (*chunked.Container, error) {
		called = true
		return chunked.NewContainer(buf, nil), nil
	})
	m, err := Load([]byte("anything"), WithScanner(scanner))
	if err != nil || !called {
		t.Fatalf("custom scanner: called=%v err=%v", called, err)
	}
	if m.Mesh != nil {
		t.Error("empty directory should decode nothing")
	}
}

func TestLoad_Deterministic(t *testing.T) {
	buf := formatstest.Container(
		formatstest.Chunk{Tag: chunked.TagMesh, Payload: testMesh()},
		formatstest.Chunk{Tag: chunked.TagSkeleton, Payload: formatstest.Chain(3).Payload()},
		formatstest.Chunk{Tag: chunked.TagCloth, Payload: formatstest.Cloth(fullCloth())},
	)

	first, err := Load(buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	second, err := Load(buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("loading twice produced different models")
	}
}
