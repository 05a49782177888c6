package config

import (
	"flag"
	"strings"
)

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Config    string
	Map       string
	Textures  []string
	GameDir   string
	OutputDir string
	Workers   int
	Studiomdl string
	Rewrite   bool
	Previews  bool
	Debug     bool
}

// listFlag collects a comma-separated or repeated flag.
type listFlag struct{ dst *[]string }

func (l listFlag) String() string {
	if l.dst == nil {
		return ""
	}
	return strings.Join(*l.dst, ",")
}

func (l listFlag) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			*l.dst = append(*l.dst, p)
		}
	}
	return nil
}

// Register binds f to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config.yaml file")
	fs.StringVar(&f.Map, "map", "", "Input .map file")
	fs.Var(listFlag{&f.Textures}, "textures", "Texture directories, comma-separated (default: map directory)")
	fs.StringVar(&f.GameDir, "game", "", "Game directory that entity output paths are relative to")
	fs.StringVar(&f.OutputDir, "out", "", "Directory for SMD, QC and BMP files (default: map directory)")
	fs.IntVar(&f.Workers, "workers", 0, "Number of worker goroutines (default: NumCPU)")
	fs.StringVar(&f.Studiomdl, "studiomdl", "", "studiomdl binary; enables compilation")
	fs.BoolVar(&f.Rewrite, "rewrite", false, "Rewrite converted entities in the map")
	fs.BoolVar(&f.Previews, "previews", false, "Also write WebP and glTF previews")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
}
