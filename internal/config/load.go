package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load returns defaults merged with the YAML file at path. An empty path
// yields defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve applies CLI overrides, then fills derived defaults.
// Flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Map != "" {
		c.Paths.Map = flags.Map
	}
	if len(flags.Textures) > 0 {
		c.Paths.Textures = flags.Textures
	}
	if flags.GameDir != "" {
		c.Paths.GameDir = flags.GameDir
	}
	if flags.OutputDir != "" {
		c.Paths.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Convert.Workers = flags.Workers
	}
	if flags.Studiomdl != "" {
		c.Compiler.Studiomdl = flags.Studiomdl
		c.Compiler.Enabled = true
	}
	if flags.Rewrite {
		c.Output.RewriteMap = true
	}
	if flags.Previews {
		c.Output.Previews = true
	}
	if flags.Debug {
		c.Logging.Level = "debug"
	}

	// Paths relative to the map's directory
	if c.Paths.Map != "" {
		mapDir := filepath.Dir(c.Paths.Map)
		if c.Paths.OutputDir == "" {
			c.Paths.OutputDir = mapDir
		}
		if c.Paths.GameDir == "" {
			c.Paths.GameDir = mapDir
		}
		if len(c.Paths.Textures) == 0 {
			c.Paths.Textures = []string{mapDir}
		}
	}
	if c.Output.RewritePath == "" {
		c.Output.RewritePath = c.Paths.Map
	}

	if c.Convert.Workers <= 0 {
		c.Convert.Workers = runtime.NumCPU()
	}
	if c.Convert.ModelEntity == "" {
		c.Convert.ModelEntity = "cycler_sprite"
	}
	if c.Convert.PaletteSize <= 0 || c.Convert.PaletteSize > 256 {
		c.Convert.PaletteSize = 256
	}
	if c.Convert.VertexLimit <= 0 {
		c.Convert.VertexLimit = 2048
	}
	if c.Convert.TexturesPerModel <= 0 {
		c.Convert.TexturesPerModel = 64
	}
	c.Tolerance = c.Tolerance.OrDefault()
}
