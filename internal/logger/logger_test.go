package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brush2mdl.log")
	if err := InitWithFileConfig("debug", DefaultFileConfig(path), false); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer Nop()

	Info("unit converted", zap.String("output", "models/crate.mdl"))
	Debug("resolved brush", zap.Int("faces", 6))
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "unit converted") || !strings.Contains(text, "models/crate.mdl") {
		t.Errorf("expected info entry in log, got %q", text)
	}
	if !strings.Contains(text, "DEBUG") {
		t.Errorf("expected debug entry in log, got %q", text)
	}
}

func TestNopBeforeInit(t *testing.T) {
	Nop()
	Warn("discarded")
	Error("discarded")
}
