package batch

import (
	"context"
	"path/filepath"

	"brush2mdl/internal/compiler"
	"brush2mdl/internal/converr"
	"brush2mdl/internal/logger"

	"go.uber.org/zap"
)

// CompileAll runs c over every script of every successful result, one at a
// time. A compiler failure turns that result into a failure; once ctx is
// done remaining results are marked Skipped.
func CompileAll(ctx context.Context, c compiler.Compiler, outputDir string, results []Result) {
	for i := range results {
		r := &results[i]
		if !r.Success {
			continue
		}
		if err := ctx.Err(); err != nil {
			r.fail(converr.New(converr.Skipped, err))
			continue
		}
		for _, qc := range r.Package.QC {
			qcPath := filepath.Join(outputDir, r.Dir, qc)
			logger.Info("compiling", zap.Int("entity", r.Entity), zap.String("qc", qcPath))
			if err := c.Compile(ctx, qcPath); err != nil {
				logger.Warn("compile failed", zap.Int("entity", r.Entity), zap.Error(err))
				r.fail(converr.Wrap(converr.ExternalCompilerFailure, err))
				break
			}
		}
	}
}

func (r *Result) fail(err *converr.Error) {
	r.Success = false
	r.Err = err.WithEntity(r.Entity)
}
