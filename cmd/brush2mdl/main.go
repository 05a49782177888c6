package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"brush2mdl/internal/batch"
	"brush2mdl/internal/brush"
	"brush2mdl/internal/compiler"
	"brush2mdl/internal/config"
	"brush2mdl/internal/emit"
	"brush2mdl/internal/logger"
	"brush2mdl/internal/mapfile"
	"brush2mdl/internal/mesh"
	"brush2mdl/internal/palette"
	"brush2mdl/internal/texture"

	"go.uber.org/zap"
)

func main() {
	// CLI flags
	var flags config.Flags
	flags.Register(flag.CommandLine)
	flag.Parse()
	if flags.Map == "" && flag.NArg() > 0 {
		flags.Map = flag.Arg(0)
	}

	cfg, err := config.Load(flags.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.Resolve(flags)

	if cfg.Paths.Map == "" {
		fmt.Fprintln(os.Stderr, "Error: no map given. Use -map or config paths.map.")
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	m, err := mapfile.ParseFile(cfg.Paths.Map)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading map: %v\n", err)
		os.Exit(1)
	}

	// Build texture index
	texIndex := texture.BuildIndex(cfg.Paths.Textures...)
	texCache := texture.NewCache(texIndex)
	fmt.Printf("Textures: %d indexed\n", texIndex.Len())

	pal := palette.DefaultOptions()
	pal.Colors = cfg.Convert.PaletteSize
	if cfg.Convert.Iterations > 0 {
		pal.Iterations = cfg.Convert.Iterations
	}

	batchCfg := batch.Config{
		Textures:         texCache,
		Sink:             emit.DirSink{Dir: cfg.Paths.OutputDir},
		OutputDir:        cfg.Paths.OutputDir,
		GameDir:          cfg.Paths.GameDir,
		Tolerance:        cfg.Tolerance,
		Palette:          pal,
		TextureMaxSize:   cfg.Convert.TextureMaxSize,
		VertexLimit:      cfg.Convert.VertexLimit,
		TexturesPerModel: cfg.Convert.TexturesPerModel,
		Previews:         cfg.Output.Previews,
		Workers:          cfg.Convert.Workers,
		Rewrite:          cfg.Output.RewriteMap,
	}
	if cfg.Compiler.Enabled {
		batchCfg.Compiler = &compiler.Studiomdl{
			Path:       cfg.Compiler.Studiomdl,
			WinePrefix: cfg.Compiler.WinePrefix,
		}
	}

	defaults := batch.DefaultOptions()
	defaults.Clip = brush.ClampClipMode(cfg.Convert.Clip)
	defaults.Shading = mesh.Shading(cfg.Convert.Options)
	defaults.CelColor = cfg.Convert.CelShadeColor
	if cfg.Convert.CelShadeDistance > 0 {
		defaults.CelDistance = cfg.Convert.CelShadeDistance
	}
	defaults.DisplayClass = cfg.Convert.ModelEntity

	fmt.Println("Brush entities → studio models")
	fmt.Printf("Map: %s, Workers: %d\n", cfg.Paths.Map, cfg.Convert.Workers)
	fmt.Printf("Output: %s\n", cfg.Paths.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	results := batch.Process(ctx, batchCfg, m, defaults)
	elapsed := time.Since(start)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	if len(results) == 0 {
		fmt.Println("No conversion entities found.")
		os.Exit(0)
	}

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}
	fmt.Printf("Converted: %d/%d\n", success, len(results))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %v\n", e.Output, e.Err)
		}
	}

	if cfg.Output.RewriteMap && success > 0 {
		if err := m.WriteFile(cfg.Output.RewritePath); err != nil {
			logger.Error("map rewrite failed", zap.String("path", cfg.Output.RewritePath), zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error writing map: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map: %s\n", cfg.Output.RewritePath)
	}

	// Write manifest
	if cfg.Output.Manifest {
		manifestPath := filepath.Join(cfg.Paths.OutputDir, "manifest.json")
		os.MkdirAll(cfg.Paths.OutputDir, 0755)
		if err := batch.WriteManifest(manifestPath, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", manifestPath)
		}
	}

	if batch.Failed(results) {
		os.Exit(1)
	}
}
