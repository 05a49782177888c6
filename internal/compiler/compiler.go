// Package compiler runs the external studio model compiler over emitted
// QC scripts.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"brush2mdl/internal/converr"
	"brush2mdl/internal/logger"

	"go.uber.org/zap"
)

// ErrorMarker precedes the failure message in studiomdl output.
const ErrorMarker = "************ ERROR ************"

// Compiler turns a QC script into a model.
type Compiler interface {
	Compile(ctx context.Context, qcPath string) error
}

// Studiomdl invokes a studiomdl binary. With WinePrefix set the binary is
// run through wine under that prefix.
type Studiomdl struct {
	Path       string
	WinePrefix string
	// Wine overrides the wine executable, default "wine".
	Wine string
}

func (s *Studiomdl) command(ctx context.Context, qcPath string) *exec.Cmd {
	if s.WinePrefix == "" {
		return exec.CommandContext(ctx, s.Path, qcPath)
	}
	wine := s.Wine
	if wine == "" {
		wine = "wine"
	}
	cmd := exec.CommandContext(ctx, wine, s.Path, qcPath)
	cmd.Env = append(cmd.Environ(), "WINEPREFIX="+s.WinePrefix)
	return cmd
}

// Compile runs the compiler in the script's directory and reports any
// failure as ExternalCompilerFailure with the compiler's own message.
func (s *Studiomdl) Compile(ctx context.Context, qcPath string) error {
	cmd := s.command(ctx, qcPath)
	cmd.Dir = filepath.Dir(qcPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("running studiomdl", zap.String("qc", qcPath), zap.String("bin", s.Path))
	runErr := cmd.Run()

	if err := ParseOutput(stdout.String()); err != nil {
		return converr.Wrap(converr.ExternalCompilerFailure, err).WithPath(qcPath)
	}
	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = runErr.Error()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return converr.New(converr.ExternalCompilerFailure, fmt.Errorf("%s: %w", msg, ctxErr)).WithPath(qcPath)
		}
		return converr.New(converr.ExternalCompilerFailure, errors.New(msg)).WithPath(qcPath)
	}
	return nil
}

// ParseOutput returns the compiler's failure message, verbatim after the
// error marker, or nil when the output carries no marker.
func ParseOutput(stdout string) error {
	i := strings.Index(stdout, ErrorMarker)
	if i < 0 {
		return nil
	}
	msg := strings.TrimSpace(stdout[i+len(ErrorMarker):])
	if msg == "" {
		msg = "studiomdl reported an error"
	}
	return converr.New(converr.ExternalCompilerFailure, errors.New(msg))
}
