package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults when a log file is configured.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// FileConfig enables an additional rotating log file next to stdout.
// Rotation parameters follow lumberjack semantics.
type FileConfig struct {
	Path       string `toml:"path" mapstructure:"path"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// Config describes daemon logging. Structured lines always go to stdout;
// File adds a rotating copy on disk.
type Config struct {
	Level string     `toml:"level" mapstructure:"level"` // debug|info|warn|error
	Color bool       `toml:"color" mapstructure:"color"`
	File  FileConfig `toml:"file" mapstructure:"file"`
}

// ParseLevel maps a config string to a slog level. Unknown values fall back
// to debug, matching the daemon's historical default.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// NewSlogger builds the application logger from the config.
func (c Config) NewSlogger() *slog.Logger {
	var w io.Writer = os.Stdout
	if c.File.Path != "" {
		w = io.MultiWriter(os.Stdout, &lj.Logger{
			Filename:   c.File.Path,
			MaxSize:    valOr(c.File.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: valOr(c.File.MaxBackups, DefaultMaxBackups),
			MaxAge:     valOr(c.File.MaxAgeDays, DefaultMaxAgeDays),
			Compress:   c.File.Compress,
		})
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(c.Level)}
	var h slog.Handler
	if c.Color {
		h = NewColorTextHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
