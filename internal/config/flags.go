package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// Flags holds command-line overrides bound to one FlagSet.
type Flags struct {
	config      *string
	debug       *bool
	logFile     *string
	output      *string
	format      *string
	lods        *string
	singleLOD   *bool
	noCollision *bool
	collision   *bool
	legacyScale *bool
	name        *string
	variant     *string
}

// BindFlags registers the converter flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:      fs.String("config", "", "Path to config file"),
		debug:       fs.Bool("debug", false, "Enable debug logging"),
		logFile:     fs.String("log", "", "Also write logs to this file"),
		output:      fs.String("o", "", "Output directory"),
		format:      fs.String("format", "", "Output format: owmdl, gltf or glb"),
		lods:        fs.String("lod", "", "Comma-separated LODs to export, e.g. 0,1"),
		singleLOD:   fs.Bool("single-lod", false, "Export only the first accepted LOD"),
		noCollision: fs.Bool("no-collision", false, "Skip collision-only submeshes"),
		collision:   fs.Bool("collision", false, "Keep collision-only submeshes"),
		legacyScale: fs.Bool("legacy-scale", false, "Write bone scale as X, X, X"),
		name:        fs.String("name", "", "Model name written to the document"),
		variant:     fs.String("variant", "", "Variant name written to the document"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// apply applies flag overrides to the config.
func (f *Flags) apply(cfg *Config) error {
	if f == nil {
		return nil
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.logFile != "" {
		cfg.Logging.LogFile = *f.logFile
	}
	if *f.output != "" {
		cfg.Output.Dir = *f.output
	}
	if *f.format != "" {
		cfg.Output.Format = strings.ToLower(*f.format)
	}
	if *f.lods != "" {
		lods, err := ParseLODs(*f.lods)
		if err != nil {
			return err
		}
		cfg.Export.LODs = lods
	}
	if *f.singleLOD {
		cfg.Export.SingleLOD = true
	}
	if *f.noCollision {
		cfg.Export.ExcludeCollision = true
	}
	if *f.collision {
		cfg.Export.ExcludeCollision = false
	}
	if *f.legacyScale {
		cfg.Export.LegacyScale = true
	}
	if *f.name != "" {
		cfg.Export.Name = *f.name
	}
	if *f.variant != "" {
		cfg.Export.Variant = *f.variant
	}
	return nil
}

// ParseLODs parses a comma-separated LOD list such as "0,1".
func ParseLODs(s string) ([]int, error) {
	var lods []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid LOD %q: %w", part, err)
		}
		lods = append(lods, int(v))
	}
	return lods, nil
}
