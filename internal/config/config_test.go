package config

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Convert.ModelEntity != "cycler_sprite" {
		t.Errorf("expected model entity cycler_sprite, got %s", cfg.Convert.ModelEntity)
	}
	if cfg.Convert.CelShadeDistance != 4 {
		t.Errorf("expected celshade distance 4, got %f", cfg.Convert.CelShadeDistance)
	}
	if cfg.Convert.PaletteSize != 256 {
		t.Errorf("expected palette size 256, got %d", cfg.Convert.PaletteSize)
	}
	if cfg.Convert.VertexLimit != 2048 {
		t.Errorf("expected vertex limit 2048, got %d", cfg.Convert.VertexLimit)
	}
	if cfg.Convert.TexturesPerModel != 64 {
		t.Errorf("expected 64 textures per model, got %d", cfg.Convert.TexturesPerModel)
	}
	if cfg.Tolerance.Plane != 1e-4 {
		t.Errorf("expected plane tolerance 1e-4, got %g", cfg.Tolerance.Plane)
	}
	if cfg.Compiler.Enabled {
		t.Error("expected compiler disabled by default")
	}
	if !cfg.Output.Manifest {
		t.Error("expected manifest enabled by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
paths:
  map: "maps/test.map"
  textures: ["tex", "more"]
  game_dir: "/games/valve"

convert:
  workers: 3
  clip: 2
  options: 9
  celshade_color: [255, 128, 0]
  celshade_distance: 2.5
  iterations: 10

tolerance:
  plane: 0.001

compiler:
  enabled: true
  studiomdl: "/opt/studiomdl.exe"
  wineprefix: "/home/user/.wine"

output:
  rewrite_map: true
  previews: true

logging:
  level: "debug"
  log_file: "run.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Paths.Map != "maps/test.map" {
		t.Errorf("expected map maps/test.map, got %s", cfg.Paths.Map)
	}
	if len(cfg.Paths.Textures) != 2 || cfg.Paths.Textures[1] != "more" {
		t.Errorf("expected textures [tex more], got %v", cfg.Paths.Textures)
	}
	if cfg.Convert.Workers != 3 || cfg.Convert.Clip != 2 || cfg.Convert.Options != 9 {
		t.Errorf("expected workers 3 clip 2 options 9, got %+v", cfg.Convert)
	}
	if cfg.Convert.CelShadeColor != [3]uint8{255, 128, 0} {
		t.Errorf("expected celshade color [255 128 0], got %v", cfg.Convert.CelShadeColor)
	}
	if cfg.Convert.CelShadeDistance != 2.5 {
		t.Errorf("expected celshade distance 2.5, got %f", cfg.Convert.CelShadeDistance)
	}
	if cfg.Tolerance.Plane != 0.001 {
		t.Errorf("expected plane tolerance 0.001, got %g", cfg.Tolerance.Plane)
	}
	if cfg.Tolerance.Merge != 1e-3 {
		t.Errorf("expected merge tolerance kept at default, got %g", cfg.Tolerance.Merge)
	}
	if !cfg.Compiler.Enabled || cfg.Compiler.WinePrefix != "/home/user/.wine" {
		t.Errorf("expected compiler settings loaded, got %+v", cfg.Compiler)
	}
	if !cfg.Output.RewriteMap || !cfg.Output.Previews {
		t.Errorf("expected rewrite and previews, got %+v", cfg.Output)
	}
	if cfg.Convert.PaletteSize != 256 {
		t.Errorf("expected default palette size kept, got %d", cfg.Convert.PaletteSize)
	}
	if cfg.Logging.LogFile != "run.log" {
		t.Errorf("expected log file run.log, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	cfg, err := Load("")
	if err != nil || cfg.Convert.ModelEntity != "cycler_sprite" {
		t.Errorf("expected defaults for empty path, got %v %v", cfg, err)
	}
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.Paths.Map = filepath.Join("maps", "a.map")
	cfg.Convert.Workers = 2

	cfg.Resolve(Flags{Workers: 5, Studiomdl: "studiomdl", Debug: true})

	if cfg.Convert.Workers != 5 {
		t.Errorf("expected flag workers 5, got %d", cfg.Convert.Workers)
	}
	if !cfg.Compiler.Enabled || cfg.Compiler.Studiomdl != "studiomdl" {
		t.Errorf("expected compiler enabled by flag, got %+v", cfg.Compiler)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
	if cfg.Paths.OutputDir != "maps" || cfg.Paths.GameDir != "maps" {
		t.Errorf("expected output and game dir to default to map dir, got %q %q", cfg.Paths.OutputDir, cfg.Paths.GameDir)
	}
	if len(cfg.Paths.Textures) != 1 || cfg.Paths.Textures[0] != "maps" {
		t.Errorf("expected texture dir to default to map dir, got %v", cfg.Paths.Textures)
	}
	if cfg.Output.RewritePath != cfg.Paths.Map {
		t.Errorf("expected rewrite path to default to map, got %s", cfg.Output.RewritePath)
	}

	empty := &Config{}
	empty.Resolve(Flags{})
	if empty.Convert.Workers != runtime.NumCPU() {
		t.Errorf("expected NumCPU workers, got %d", empty.Convert.Workers)
	}
	if empty.Tolerance.Merge != 1e-3 {
		t.Errorf("expected default tolerance, got %+v", empty.Tolerance)
	}
}

func TestFlagsRegister(t *testing.T) {
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f.Register(fs)
	if err := fs.Parse([]string{"-map", "x.map", "-textures", "a, b", "-textures", "c", "-rewrite"}); err != nil {
		t.Fatal(err)
	}
	if f.Map != "x.map" || !f.Rewrite {
		t.Errorf("expected map and rewrite parsed, got %+v", f)
	}
	if len(f.Textures) != 3 || f.Textures[1] != "b" {
		t.Errorf("expected textures [a b c], got %v", f.Textures)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.Convert.Clip = 1
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Convert.Clip != 1 || back.Convert.ModelEntity != "cycler_sprite" {
		t.Errorf("expected saved values, got %+v", back.Convert)
	}
}
