package logger

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelDebug,
		"bogus":   slog.LevelDebug,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestColorTextHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewColorTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	log.Warn("grace period elapsed")
	out := buf.String()
	if !strings.Contains(out, "\033[33m") {
		t.Fatalf("expected yellow escape in output, got %q", out)
	}
	if !strings.Contains(out, "grace period elapsed") {
		t.Fatalf("message missing from output: %q", out)
	}
}

func TestNewSloggerWithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Level: "info",
		File:  FileConfig{Path: filepath.Join(dir, "steamkiller.log")},
	}
	log := cfg.NewSlogger()
	log.Info("daemon starting")
	if !log.Enabled(t.Context(), slog.LevelInfo) {
		t.Fatalf("info level should be enabled")
	}
	if log.Enabled(t.Context(), slog.LevelDebug) {
		t.Fatalf("debug level should be filtered at info")
	}
}
