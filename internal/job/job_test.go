package job

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/mdlconv/internal/config"
	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/formats"
	"github.com/Faultbox/mdlconv/pkg/formats/formatstest"
	"github.com/Faultbox/mdlconv/pkg/owmdl"
)

func triangle(lod uint8, flags uint8) formats.Submesh {
	return formats.Submesh{
		LOD:       lod,
		Flags:     flags,
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Triangles: [][3]uint16{{0, 1, 2}},
	}
}

func writeContainer(t *testing.T, dir, name string, chunks ...formatstest.Chunk) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, formatstest.Container(chunks...), 0644); err != nil {
		t.Fatalf("write container: %v", err)
	}
	return path
}

func meshContainer(t *testing.T, dir, name string) string {
	return writeContainer(t, dir, name,
		formatstest.Chunk{Tag: chunked.TagMesh, Payload: formatstest.Mesh(
			triangle(0, 0),
			triangle(1, 0),
			triangle(0, formats.FlagCollision),
		)},
		formatstest.Chunk{Tag: chunked.TagMaterial, Payload: formatstest.Materials(0xABCD)},
	)
}

func TestConvert_OWMDL(t *testing.T) {
	dir := t.TempDir()
	in := meshContainer(t, dir, "hero.mdl")

	cfg := config.Default()
	cfg.Export.LODs = []int{0}
	res := New(cfg, nil).Convert(in)
	if res.Err != nil {
		t.Fatalf("Convert failed: %v", res.Err)
	}
	if res.Output != filepath.Join(dir, "hero.owmdl") {
		t.Errorf("output = %s", res.Output)
	}

	data, err := os.ReadFile(res.Output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if int64(len(data)) != res.Size {
		t.Errorf("size = %d, file has %d bytes", res.Size, len(data))
	}

	doc, err := owmdl.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if doc.Name != "hero" {
		t.Errorf("name = %q, want file stem", doc.Name)
	}
	// LOD 1 filtered, collision excluded by default.
	if len(doc.Submeshes) != 1 {
		t.Fatalf("submeshes = %d, want 1", len(doc.Submeshes))
	}
	if doc.Submeshes[0].Material != 0xABCD {
		t.Errorf("material = %#x", doc.Submeshes[0].Material)
	}
}

func TestConvert_GLB(t *testing.T) {
	dir := t.TempDir()
	in := meshContainer(t, dir, "hero.mdl")

	cfg := config.Default()
	cfg.Output.Format = config.FormatGLB
	cfg.Output.Dir = filepath.Join(dir, "out")
	res := New(cfg, nil).Convert(in)
	if res.Err != nil {
		t.Fatalf("Convert failed: %v", res.Err)
	}
	if filepath.Ext(res.Output) != ".glb" {
		t.Errorf("output = %s", res.Output)
	}

	f, err := os.Open(res.Output)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var g gltf.Document
	if err := gltf.NewDecoder(f).Decode(&g); err != nil {
		t.Fatalf("decode glb: %v", err)
	}
	if len(g.Meshes) != 2 {
		t.Errorf("meshes = %d, want 2", len(g.Meshes))
	}
}

func TestConvert_MissingMesh(t *testing.T) {
	dir := t.TempDir()
	in := writeContainer(t, dir, "bones.mdl",
		formatstest.Chunk{Tag: chunked.TagSkeleton, Payload: formatstest.Chain(3).Payload()},
	)

	res := New(nil, nil).Convert(in)
	var missing *owmdl.MissingRequiredChunkError
	if !errors.As(res.Err, &missing) || missing.Name != "mesh" {
		t.Fatalf("expected missing mesh error, got %v", res.Err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bones.owmdl")); !os.IsNotExist(err) {
		t.Error("no output should be written")
	}
	assertNoTemp(t, dir)
}

func TestConvert_NoOverwrite(t *testing.T) {
	dir := t.TempDir()
	in := meshContainer(t, dir, "hero.mdl")
	existing := filepath.Join(dir, "hero.owmdl")
	if err := os.WriteFile(existing, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Output.Overwrite = false
	res := New(cfg, nil).Convert(in)
	if !errors.Is(res.Err, ErrOutputExists) {
		t.Fatalf("expected ErrOutputExists, got %v", res.Err)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "keep" {
		t.Error("existing output was modified")
	}
}

func TestPhysics(t *testing.T) {
	dir := t.TempDir()
	in := meshContainer(t, dir, "hero.mdl")

	res := New(nil, nil).Physics(in)
	if res.Err != nil {
		t.Fatalf("Physics failed: %v", res.Err)
	}
	if res.Output != filepath.Join(dir, "hero.physics.owmdl") {
		t.Errorf("output = %s", res.Output)
	}

	data, err := os.ReadFile(res.Output)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := owmdl.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	p, ok := doc.Physics()
	if !ok {
		t.Fatal("expected physics document")
	}
	if len(p.Positions) != 3 || len(p.Triangles) != 1 {
		t.Errorf("physics mesh = %d positions, %d triangles", len(p.Positions), len(p.Triangles))
	}
}

func TestPhysics_NoCollision(t *testing.T) {
	dir := t.TempDir()
	in := writeContainer(t, dir, "plain.mdl",
		formatstest.Chunk{Tag: chunked.TagMesh, Payload: formatstest.Mesh(triangle(0, 0))},
	)

	res := New(nil, nil).Physics(in)
	if !errors.Is(res.Err, ErrNoCollision) {
		t.Fatalf("expected ErrNoCollision, got %v", res.Err)
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	good := meshContainer(t, dir, "a.mdl")
	bad := filepath.Join(dir, "missing.mdl")
	other := meshContainer(t, dir, "b.mdl")

	results := New(nil, nil).RunBatch([]string{good, bad, other})
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("unexpected errors: %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", results[1].Err)
	}
}

func TestOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Export.LODs = []int{2, 0}
	cfg.Export.Variant = "v"
	opts := New(cfg, nil).Options("/tmp/x/model_a.bin")

	if opts.Name != "model_a" || opts.Variant != "v" {
		t.Errorf("name/variant = %q/%q", opts.Name, opts.Variant)
	}
	if !bytes.Equal(opts.AllowedLODs, []byte{2, 0}) {
		t.Errorf("lods = %v", opts.AllowedLODs)
	}

	opts = New(config.Default(), nil).Options("m.bin")
	if opts.AllowedLODs != nil {
		t.Errorf("expected nil LOD filter, got %v", opts.AllowedLODs)
	}
}

func TestWriteAtomic_FailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	boom := errors.New("boom")
	_, err := WriteAtomic(path, func(f *os.File) error {
		f.Write([]byte("partial"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("output should not exist")
	}
	assertNoTemp(t, dir)
}

func TestWriteAtomic_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	path := filepath.Join(t.TempDir(), "out.owmdl")

	n, err := WriteAtomic(path, func(f *os.File) error {
		_, err := f.Write([]byte("data"))
		return err
	})
	if err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}
	if n != 4 {
		t.Errorf("size = %d, want 4", n)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0644 {
		t.Errorf("mode = %o, want 644", perm)
	}
}

func assertNoTemp(t *testing.T, dir string) {
	t.Helper()
	matches, _ := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}
