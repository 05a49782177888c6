package batch

import (
	"context"

	"brush2mdl/internal/logger"
	"brush2mdl/internal/mapfile"

	"go.uber.org/zap"
)

// Process converts every unit of m, then compiles and rewrites according
// to cfg. The map is only modified by the rewrite, after conversion.
func Process(ctx context.Context, cfg Config, m *mapfile.Map, def Options) []Result {
	units := ExtractUnits(m, def)
	logger.Info("conversion units", zap.Int("count", len(units)), zap.Int("workers", cfg.Workers))

	results := Run(ctx, cfg, units)
	if cfg.Compiler != nil {
		CompileAll(ctx, cfg.Compiler, cfg.OutputDir, results)
	}
	if cfg.Rewrite {
		Rewrite(m, units, results)
	}
	return results
}
