// Package batch converts the marked entities of a map into studio model
// packages using a worker pool, then optionally compiles them and rewrites
// the map to reference the results.
package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"brush2mdl/internal/brush"
	"brush2mdl/internal/compiler"
	"brush2mdl/internal/converr"
	"brush2mdl/internal/emit"
	"brush2mdl/internal/logger"
	"brush2mdl/internal/mathutil"
	"brush2mdl/internal/palette"
	"brush2mdl/internal/texture"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// TextureSource decodes textures and reports their sizes.
type TextureSource interface {
	texture.Resolver
	brush.TextureSizer
}

// Config holds all shared resources for a batch run.
type Config struct {
	Textures TextureSource
	Sink     emit.Sink
	// OutputDir is where Sink lands on disk; scripts reference it.
	OutputDir string
	// GameDir prefixes entity output paths in $modelname.
	GameDir string

	Tolerance        mathutil.Tolerance
	Palette          palette.Options
	TextureMaxSize   int
	VertexLimit      int
	TexturesPerModel int
	Previews         bool
	Workers          int

	// Compiler runs over every emitted script when set.
	Compiler compiler.Compiler
	// Rewrite replaces converted entities in the map.
	Rewrite bool

	// ProgressInterval between progress log lines; zero uses 2s.
	ProgressInterval time.Duration
}

// Result holds the outcome of converting one unit.
type Result struct {
	Entity  int
	Output  string
	Success bool
	Err     error

	// Set on success.
	Dir       string // package directory relative to OutputDir
	Package   *emit.Package
	Origin    mgl64.Vec3
	Models    int
	Triangles int
	Clip      *brush.ClipBrush
	Elapsed   time.Duration
}

// Kind classifies a failed result.
func (r *Result) Kind() converr.Kind {
	if r.Success {
		return converr.Unknown
	}
	return converr.KindOf(r.Err)
}

func failed(u *Unit, err error) Result {
	return Result{
		Entity: u.Entity,
		Output: u.Output,
		Err:    converr.Wrap(converr.Unknown, err).WithEntity(u.Entity),
	}
}

// Run converts units using a worker pool. Results are in unit order.
// Once ctx is done, units not yet dispatched are marked Skipped; units in
// flight finish.
func Run(ctx context.Context, cfg Config, units []Unit) []Result {
	total := len(units)
	results := make([]Result, total)
	var processed atomic.Int64
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	interval := cfg.ProgressInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					logger.Info("progress",
						zap.Int64("done", p),
						zap.Int("total", total),
						zap.Float64("units_per_sec", rate))
				}
			}
		}
	}()

	// Worker pool
	unitChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range unitChan {
				results[idx] = processUnit(cfg, &units[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range units {
		if ctx.Err() != nil {
			results[i] = failed(&units[i], converr.New(converr.Skipped, ctx.Err()))
			continue
		}
		select {
		case unitChan <- i:
		case <-ctx.Done():
			results[i] = failed(&units[i], converr.New(converr.Skipped, ctx.Err()))
		}
	}
	close(unitChan)

	wg.Wait()
	close(done)

	return results
}

func processUnit(cfg Config, u *Unit) Result {
	if u.Err != nil {
		logger.Warn("unit rejected", zap.Int("entity", u.Entity), zap.Error(u.Err))
		return failed(u, u.Err)
	}

	start := time.Now()
	logger.Debug("converting unit", zap.Int("entity", u.Entity), zap.String("output", u.Output))

	r, err := convertUnit(cfg, u)
	if err != nil {
		logger.Warn("unit failed", zap.Int("entity", u.Entity), zap.String("output", u.Output), zap.Error(err))
		return failed(u, err)
	}
	r.Elapsed = time.Since(start)

	logger.Info("unit converted",
		zap.Int("entity", u.Entity),
		zap.String("output", u.Output),
		zap.Int("triangles", r.Triangles),
		zap.Int("textures", len(r.Package.Textures)),
		zap.Duration("elapsed", r.Elapsed))
	return r
}
