// mdltool is a CLI utility for inspecting chunked model containers and
// converting them to model documents.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/mdlconv/internal/config"
	"github.com/Faultbox/mdlconv/internal/job"
	"github.com/Faultbox/mdlconv/internal/logger"
	"github.com/Faultbox/mdlconv/pkg/chunked"
	"github.com/Faultbox/mdlconv/pkg/formats"
	"github.com/Faultbox/mdlconv/pkg/model"
	"github.com/Faultbox/mdlconv/pkg/owmdl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "dump":
		cmdDump(args)
	case "strings":
		cmdStrings(args)
	case "convert", "c":
		cmdConvert(args)
	case "physics":
		cmdPhysics(args)
	case "inspect":
		cmdInspect(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mdltool - chunked model container utility

Usage:
  mdltool <command> [options]

Commands:
  info <file>                 Show the chunk directory and decoded summary
  dump <file> [tag]           Dump decoded chunks (optionally one tag, e.g. MNRM)
  strings <file>              Print string table entries
  convert [options] <files>   Convert containers to .owmdl, .gltf or .glb
  physics [options] <file>    Write collision geometry as a physics document
  inspect <file.owmdl>        Show the contents of a model document
  config init [-o path] [-force]
                              Write the default config file
  config show [options]       Print the effective config

Convert options:
  -config <path>   Config file (default ./mdlconv.yaml or user config dir)
  -o <dir>         Output directory (default: next to input)
  -format <fmt>    owmdl, gltf or glb
  -lod 0,1         Export only these LODs
  -single-lod      Export only the first accepted LOD
  -no-collision    Skip collision-only submeshes
  -collision       Keep collision-only submeshes
  -legacy-scale    Write bone scale as X, X, X
  -name, -variant  Names written to the document

Examples:
  mdltool info hero.mdl
  mdltool dump hero.mdl lksm
  mdltool convert -lod 0 -format glb -o out hero.mdl villain.mdl
  mdltool inspect out/hero.owmdl
  mdltool config init -o mdlconv.yaml`)
}

// setup parses a command's flags, loads config and initializes logging.
func setup(name string, args []string) (*config.Config, *flag.FlagSet) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.BindFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fatal(err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatal(errors.Wrap(err, "init logger"))
	}
	return cfg, fs
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	logger.Sync()
	os.Exit(1)
}

func loadModel(path string) *model.Model {
	buf, err := os.ReadFile(path)
	if err != nil {
		fatal(err)
	}
	m, err := model.Load(buf, model.WithLogger(logger.Named("model")))
	if err != nil {
		fatal(errors.Wrapf(err, "scan %s", path))
	}
	return m
}

func cmdInfo(args []string) {
	_, fs := setup("info", args)
	defer logger.Sync()
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mdltool info <file>")
		os.Exit(1)
	}

	m := loadModel(fs.Arg(0))

	fmt.Printf("Container: %s\n", fs.Arg(0))
	fmt.Printf("Size:      %d bytes\n", m.Directory.Len())
	fmt.Printf("Chunks:    %d\n", len(m.Directory.Descriptors))
	fmt.Println()
	fmt.Println("  #   Tag   Root  Offset      Size        Kind")
	for _, d := range m.Directory.Descriptors {
		kind := "(unknown)"
		if k, ok := formats.KindOf(d.Tag); ok {
			kind = k.String()
		}
		fmt.Printf("  %-3d %-5s %-5s 0x%08x  %-10d  %s\n", d.Index, d.Tag, d.Root, d.Offset, d.Size, kind)
	}
	fmt.Println()

	if m.Mesh != nil {
		lods := make(map[uint8]int)
		collision := 0
		vertices := 0
		for i := range m.Mesh.Submeshes {
			sm := &m.Mesh.Submeshes[i]
			lods[sm.LOD]++
			vertices += sm.VertexCount()
			if sm.IsCollisionOnly() {
				collision++
			}
		}
		keys := make([]int, 0, len(lods))
		for lod := range lods {
			keys = append(keys, int(lod))
		}
		sort.Ints(keys)
		fmt.Printf("Submeshes:   %d (%d vertices, %d collision-only)\n", len(m.Mesh.Submeshes), vertices, collision)
		for _, lod := range keys {
			fmt.Printf("  LOD %d:     %d\n", lod, lods[uint8(lod)])
		}
	}
	if m.Materials != nil {
		fmt.Printf("Materials:   %d\n", len(m.Materials.Keys))
	}
	if m.Skeleton != nil {
		fmt.Printf("Bones:       %d\n", len(m.Skeleton.Bones))
	}
	if m.Hardpoints != nil {
		fmt.Printf("Hardpoints:  %d\n", len(m.Hardpoints.Points))
	}
	if m.Collision != nil {
		fmt.Printf("Hitboxes:    %d\n", len(m.Collision.Boxes))
	}
	if m.Cloth != nil {
		variant := "full"
		if m.Cloth.Legacy {
			variant = "legacy"
		}
		fmt.Printf("Cloth:       %d systems (%s)\n", len(m.Cloth.Systems), variant)
	}
	if n := len(m.Strings); n > 0 {
		fmt.Printf("Strings:     %d tables\n", n)
	}
	if n := len(m.Sounds); n > 0 {
		fmt.Printf("Sounds:      %d tables\n", n)
	}

	if len(m.Failures) > 0 {
		fmt.Println()
		fmt.Println("Failed chunks:")
		for _, f := range m.Failures {
			fmt.Printf("  %v\n", f)
		}
	}
}

var spewConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

func cmdDump(args []string) {
	_, fs := setup("dump", args)
	defer logger.Sync()
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mdltool dump <file> [tag]")
		os.Exit(1)
	}

	m := loadModel(fs.Arg(0))

	var filter chunked.Tag
	if fs.NArg() > 1 {
		if len(fs.Arg(1)) != 4 {
			fatal(fmt.Errorf("tag must be 4 characters: %q", fs.Arg(1)))
		}
		filter = chunked.MakeTag(fs.Arg(1))
	}

	ctx := formats.ContextFor(m.Skeleton)
	for _, d := range m.Directory.Descriptors {
		if !filter.IsZero() && d.Tag != filter {
			continue
		}
		if !formats.Known(d.Tag) {
			continue
		}
		payload, err := m.Directory.Payload(d)
		if err == nil {
			var c formats.Chunk
			c, err = formats.Decode(d.Tag, payload, ctx)
			if err == nil {
				fmt.Printf("=== chunk %d %s ===\n", d.Index, d.Tag)
				spewConfig.Fdump(os.Stdout, c)
				continue
			}
		}
		fmt.Printf("=== chunk %d %s: %v ===\n", d.Index, d.Tag, err)
	}
}

func cmdStrings(args []string) {
	_, fs := setup("strings", args)
	defer logger.Sync()
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mdltool strings <file>")
		os.Exit(1)
	}

	m := loadModel(fs.Arg(0))
	count := 0
	for t, table := range m.Strings {
		for i, e := range table.Entries {
			fmt.Printf("%d:%d\t%d\t%s\n", t, i, e.References, e.Value)
			count++
		}
	}
	fmt.Fprintf(os.Stderr, "\n(%d strings)\n", count)
}

func cmdConvert(args []string) {
	cfg, fs := setup("convert", args)
	defer logger.Sync()
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mdltool convert [options] <file>...")
		os.Exit(1)
	}

	runner := job.New(cfg, logger.Named("job"))
	results := runner.RunBatch(fs.Args())

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", res.Input, res.Err)
			failed++
			continue
		}
		fmt.Printf("Converted: %s (%d bytes)\n", res.Output, res.Size)
		for _, f := range res.Failures {
			fmt.Fprintf(os.Stderr, "  skipped %v\n", f)
		}
	}

	fmt.Fprintf(os.Stderr, "\n%d converted, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		logger.Sync()
		os.Exit(1)
	}
}

func cmdPhysics(args []string) {
	cfg, fs := setup("physics", args)
	defer logger.Sync()
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mdltool physics [options] <file>")
		os.Exit(1)
	}

	res := job.New(cfg, logger.Named("job")).Physics(fs.Arg(0))
	if res.Err != nil {
		fatal(res.Err)
	}
	fmt.Printf("Wrote: %s (%d bytes)\n", res.Output, res.Size)
}

func cmdInspect(args []string) {
	_, fs := setup("inspect", args)
	defer logger.Sync()
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mdltool inspect <file.owmdl>")
		os.Exit(1)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	doc, err := owmdl.Decode(data)
	if err != nil {
		fatal(errors.Wrapf(err, "decode %s", fs.Arg(0)))
	}
	logger.Debug("decoded document", zap.Int("bytes", len(data)))

	fmt.Printf("Document: %s\n", fs.Arg(0))
	fmt.Printf("Version:  %d.%d\n", doc.Major, doc.Minor)
	if doc.Name != "" || doc.Variant != "" {
		fmt.Printf("Name:     %s (%s)\n", doc.Name, doc.Variant)
	}
	fmt.Printf("Bones:    %d\n", len(doc.Bones))
	for i, b := range doc.Bones {
		fmt.Printf("  %-3d %-12s parent=%-3d pos=%v\n", i, b.Name, b.Parent, b.Position)
	}
	fmt.Printf("Submeshes: %d (%d vertices)\n", len(doc.Submeshes), doc.VertexCount())
	for _, s := range doc.Submeshes {
		fmt.Printf("  %-40s lod=%d uvs=%d vertices=%d triangles=%d\n",
			s.Name, s.LOD, s.UVCount, len(s.Vertices), len(s.Triangles))
	}
	fmt.Printf("Attachments: %d\n", len(doc.Attachments))
	for _, a := range doc.Attachments {
		fmt.Printf("  %-16s bone=%s\n", a.Name, a.Bone)
	}
	fmt.Printf("Hitboxes: %d\n", len(doc.Hitboxes))
}

func cmdConfig(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mdltool config <init|show> [options]")
		os.Exit(1)
	}

	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("config init", flag.ExitOnError)
		path := fs.String("o", config.DefaultPath(), "Config file to write")
		force := fs.Bool("force", false, "Replace an existing config file")
		fs.Parse(args[1:])

		if err := config.Default().SaveTo(*path, *force); err != nil {
			if errors.Is(err, config.ErrConfigExists) {
				fatal(fmt.Errorf("%w (use -force to replace it)", err))
			}
			fatal(errors.Wrap(err, "write config"))
		}
		fmt.Printf("Wrote %s\n", *path)
	case "show":
		cfg, _ := setup("config show", args[1:])
		data, err := cfg.Marshal()
		if err != nil {
			fatal(errors.Wrap(err, "encode config"))
		}
		os.Stdout.Write(data)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		os.Exit(1)
	}
}
