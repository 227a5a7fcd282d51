package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "xml")
	t.Setenv("LOG_TO_FILE", "true")
	t.Setenv("LOG_FILE", "")
	opts := OptionsFromEnv()
	if opts.Level != zapcore.WarnLevel {
		t.Fatalf("level = %v", opts.Level)
	}
	if opts.Format != "legacy" {
		t.Fatalf("unknown format should fall back to legacy, got %q", opts.Format)
	}
	if opts.File != filepath.Join("logs", "chess-server.log") {
		t.Fatalf("file = %q", opts.File)
	}
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.log")
	l, err := New(Options{Level: zapcore.InfoLevel, Format: "json", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("area_created", zap.String("area_id", "lobby"))
	_ = l.Sync()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"area_id":"lobby"`) {
		t.Fatalf("log line missing field: %s", b)
	}
}

func TestSetLoggerRestore(t *testing.T) {
	prev := L()
	restore := SetLogger(zap.NewExample())
	if L() == prev {
		t.Fatalf("logger not replaced")
	}
	restore()
	if L() != prev {
		t.Fatalf("logger not restored")
	}
}
