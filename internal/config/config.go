// Package config handles converter configuration loading and management.
package config

import (
	"fmt"
	"slices"
)

// Output formats.
const (
	FormatOWMDL = "owmdl"
	FormatGLTF  = "gltf"
	FormatGLB   = "glb"
)

// Config holds all converter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig controls which parts of a model are written.
type ExportConfig struct {
	LODs             []int  `yaml:"lods"` // empty exports every LOD
	SingleLOD        bool   `yaml:"single_lod"`
	ExcludeCollision bool   `yaml:"exclude_collision"`
	LegacyScale      bool   `yaml:"legacy_scale"`
	Name             string `yaml:"name"`
	Variant          string `yaml:"variant"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Dir       string `yaml:"dir"`    // empty writes next to the input
	Format    string `yaml:"format"` // owmdl, gltf or glb
	Overwrite bool   `yaml:"overwrite"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			ExcludeCollision: true,
		},
		Output: OutputConfig{
			Format:    FormatOWMDL,
			Overwrite: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if !slices.Contains([]string{FormatOWMDL, FormatGLTF, FormatGLB}, c.Output.Format) {
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	for _, lod := range c.Export.LODs {
		if lod < 0 || lod > 255 {
			return fmt.Errorf("LOD %d out of range 0..255", lod)
		}
	}
	if !slices.Contains([]string{"", "debug", "info", "warn", "error"}, c.Logging.Level) {
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

// Extension returns the file extension for the configured output format.
func (c *Config) Extension() string {
	switch c.Output.Format {
	case FormatGLTF:
		return ".gltf"
	case FormatGLB:
		return ".glb"
	default:
		return ".owmdl"
	}
}
