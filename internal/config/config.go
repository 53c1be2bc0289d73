package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkrajnik/steamkiller/internal/logger"
	"github.com/mkrajnik/steamkiller/internal/policy"
	"github.com/spf13/viper"
)

// Built-in defaults. They reproduce the behavior of running with no config
// file at all: Steam may run on Saturday between 06:00 and 18:59 local time.
const (
	DefaultTargetName  = "steam"
	DefaultGracePeriod = 10 * time.Second

	DefaultNotifyCommand = "notify-send"
	DefaultNotifyTitle   = "Steam Killer"
	DefaultNotifyBody    = "Terminating Steam."
	DefaultNotifyIcon    = "/usr/share/icons/hicolor/256x256/apps/steam.png"
)

// Config is the top-level TOML structure.
type Config struct {
	Window  WindowConfig  `toml:"window" mapstructure:"window"`
	Target  TargetConfig  `toml:"target" mapstructure:"target"`
	Notify  NotifyConfig  `toml:"notify" mapstructure:"notify"`
	Log     logger.Config `toml:"log" mapstructure:"log"`
	Metrics MetricsConfig `toml:"metrics" mapstructure:"metrics"`
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
}

// WindowConfig is the TOML form of the allowed window.
type WindowConfig struct {
	Weekday   string `toml:"weekday" mapstructure:"weekday"`
	StartHour int    `toml:"start_hour" mapstructure:"start_hour"`
	EndHour   int    `toml:"end_hour" mapstructure:"end_hour"`
}

// TargetConfig identifies the watched process.
type TargetConfig struct {
	Name        string        `toml:"name" mapstructure:"name"`
	PIDFile     string        `toml:"pidfile" mapstructure:"pidfile"`
	GracePeriod time.Duration `toml:"grace_period" mapstructure:"grace_period"`
}

// NotifyConfig describes the desktop notification sent before termination.
type NotifyConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Command string `toml:"command" mapstructure:"command"`
	Title   string `toml:"title" mapstructure:"title"`
	Body    string `toml:"body" mapstructure:"body"`
	Icon    string `toml:"icon" mapstructure:"icon"`
}

// MetricsConfig enables the Prometheus /metrics listener.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Listen  string `toml:"listen" mapstructure:"listen"`
}

// ServerConfig enables the read-only HTTP status endpoint.
type ServerConfig struct {
	Enabled  bool   `toml:"enabled" mapstructure:"enabled"`
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday accepts full and three-letter English weekday names,
// case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	if d, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("invalid weekday: %q", s)
}

// Window converts the TOML form into a validated policy.Window.
func (w WindowConfig) Window() (policy.Window, error) {
	day, err := ParseWeekday(w.Weekday)
	if err != nil {
		return policy.Window{}, err
	}
	pw := policy.Window{Weekday: day, StartHour: w.StartHour, EndHour: w.EndHour}
	if err := pw.Validate(); err != nil {
		return policy.Window{}, err
	}
	return pw, nil
}

// DefaultPIDFile returns <home>/.steam/steam.pid for the invoking user.
func DefaultPIDFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".steam", "steam.pid")
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowConfig{Weekday: "saturday", StartHour: 6, EndHour: 18},
		Target: TargetConfig{
			Name:        DefaultTargetName,
			PIDFile:     DefaultPIDFile(),
			GracePeriod: DefaultGracePeriod,
		},
		Notify: NotifyConfig{
			Enabled: true,
			Command: DefaultNotifyCommand,
			Title:   DefaultNotifyTitle,
			Body:    DefaultNotifyBody,
			Icon:    DefaultNotifyIcon,
		},
		Log: logger.Config{Level: "debug", Color: true},
	}
}

// Load reads a TOML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration.
func (c Config) Validate() error {
	if _, err := c.Window.Window(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Target.Name) == "" {
		return fmt.Errorf("target name must not be empty")
	}
	if strings.TrimSpace(c.Target.PIDFile) == "" {
		return fmt.Errorf("target pidfile must not be empty")
	}
	if c.Target.GracePeriod <= 0 {
		return fmt.Errorf("grace period must be > 0, got %v", c.Target.GracePeriod)
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics enabled without listen address")
	}
	if c.Server.Enabled && c.Server.Listen == "" {
		return fmt.Errorf("server enabled without listen address")
	}
	return nil
}
