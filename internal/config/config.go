// Package config holds conversion settings loaded from YAML and CLI flags.
package config

import (
	"brush2mdl/internal/mathutil"
)

// Config holds all conversion settings.
type Config struct {
	Paths     PathsConfig        `yaml:"paths"`
	Convert   ConvertConfig      `yaml:"convert"`
	Tolerance mathutil.Tolerance `yaml:"tolerance"`
	Compiler  CompilerConfig     `yaml:"compiler"`
	Output    OutputConfig       `yaml:"output"`
	Logging   LoggingConfig      `yaml:"logging"`
}

// PathsConfig holds input and output locations.
type PathsConfig struct {
	Map      string   `yaml:"map"`
	Textures []string `yaml:"textures"` // searched in order, first match wins
	GameDir  string   `yaml:"game_dir"` // entity output paths are relative to it
	// OutputDir receives SMD, QC and BMP files. Defaults to the map's directory.
	OutputDir string `yaml:"output_dir"`
}

// ConvertConfig holds per-unit defaults and pipeline limits.
type ConvertConfig struct {
	Workers          int      `yaml:"workers"`
	ModelEntity      string   `yaml:"model_entity"`
	Clip             int      `yaml:"clip"`
	Options          int      `yaml:"options"`
	CelShadeColor    [3]uint8 `yaml:"celshade_color"`
	CelShadeDistance float64  `yaml:"celshade_distance"`
	PaletteSize      int      `yaml:"palette_size"`
	Iterations       int      `yaml:"iterations"`
	TextureMaxSize   int      `yaml:"texture_max_size"`
	VertexLimit      int      `yaml:"vertex_limit"`
	TexturesPerModel int      `yaml:"textures_per_model"`
}

// CompilerConfig holds the external model compiler settings.
type CompilerConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Studiomdl  string `yaml:"studiomdl"`
	WinePrefix string `yaml:"wineprefix"`
}

// OutputConfig selects optional outputs.
type OutputConfig struct {
	RewriteMap bool `yaml:"rewrite_map"`
	// RewritePath defaults to overwriting the input map.
	RewritePath string `yaml:"rewrite_path"`
	Manifest    bool   `yaml:"manifest"`
	Previews    bool   `yaml:"previews"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			ModelEntity:      "cycler_sprite",
			CelShadeDistance: 4,
			PaletteSize:      256,
			Iterations:       24,
			TextureMaxSize:   512,
			VertexLimit:      2048,
			TexturesPerModel: 64,
		},
		Tolerance: mathutil.DefaultTolerance(),
		Output: OutputConfig{
			Manifest: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
