// Package steamkiller is a personal daemon that terminates the Steam client
// outside an allowed weekly usage window. It watches Steam's PID file for
// the client starting and keeps a weekly timer armed for the window close;
// both triggers feed the same evaluate-and-act step.
package steamkiller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mkrajnik/steamkiller/internal/config"
	"github.com/mkrajnik/steamkiller/internal/killer"
	"github.com/mkrajnik/steamkiller/internal/metrics"
	"github.com/mkrajnik/steamkiller/internal/monitor"
	"github.com/mkrajnik/steamkiller/internal/notify"
	"github.com/mkrajnik/steamkiller/internal/policy"
	"github.com/mkrajnik/steamkiller/internal/scheduler"
	"github.com/mkrajnik/steamkiller/internal/server"
	"github.com/mkrajnik/steamkiller/internal/watcher"
)

// Re-export core types for external consumers.

type Config = config.Config

type Window = policy.Window

type State = monitor.State

type Outcome = killer.Outcome

// LoadConfig reads a TOML config file over the built-in defaults. An empty
// path yields the defaults, which reproduce the original fixed constants.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config { return config.Default() }

// Daemon wires the monitor, the PID-file watcher, the weekly scheduler, and
// the optional HTTP listeners together.
type Daemon struct {
	cfg config.Config
	mon *monitor.Monitor
}

// New validates cfg and builds a daemon. The logger from cfg.Log should be
// installed as slog default by the caller before Run.
func New(cfg config.Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	window, err := cfg.Window.Window()
	if err != nil {
		return nil, err
	}
	var notifier *notify.Notifier
	if cfg.Notify.Enabled {
		notifier = &notify.Notifier{
			Command: cfg.Notify.Command,
			Title:   cfg.Notify.Title,
			Body:    cfg.Notify.Body,
			Icon:    cfg.Notify.Icon,
		}
	}
	mon := &monitor.Monitor{
		Window:  window,
		Locator: monitor.PIDFileLocator{PIDFile: cfg.Target.PIDFile, Name: cfg.Target.Name},
		Terminator: &killer.Killer{
			Grace:    cfg.Target.GracePeriod,
			Notifier: notifier,
		},
	}
	return &Daemon{cfg: cfg, mon: mon}, nil
}

// Evaluate runs one evaluate-and-act pass, the same step the triggers run.
func (d *Daemon) Evaluate(ctx context.Context) {
	d.mon.Evaluate(ctx, monitor.TriggerManual)
}

// State reports the current window and target state.
func (d *Daemon) State() State { return d.mon.State() }

// Run starts the daemon and blocks until ctx is canceled. The PID-file
// directory must exist up front; without a location to watch the daemon
// cannot operate and returns an error before arming anything.
func (d *Daemon) Run(ctx context.Context) error {
	log := slog.Default()

	pidDir := filepath.Dir(d.cfg.Target.PIDFile)
	if st, err := os.Stat(pidDir); err != nil || !st.IsDir() {
		return fmt.Errorf("target installation directory %s not found: %w", pidDir, err)
	}

	if d.cfg.Metrics.Enabled {
		if err := metrics.RegisterDefault(); err != nil {
			log.Warn("failed to register metrics", "error", err)
		}
		go func() {
			if err := metrics.ServeMetrics(d.cfg.Metrics.Listen); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", "error", err)
			}
		}()
		log.Info("metrics listening", "addr", d.cfg.Metrics.Listen)
	}

	var statusSrv *http.Server
	if d.cfg.Server.Enabled {
		statusSrv = server.NewServer(d.cfg.Server.Listen, d.cfg.Server.BasePath, d.mon)
		log.Info("status endpoint listening", "addr", d.cfg.Server.Listen)
	}

	// The target may have been running since before the daemon started.
	d.mon.Evaluate(ctx, monitor.TriggerStartup)

	w, err := watcher.New(d.cfg.Target.PIDFile, func() {
		d.mon.Evaluate(ctx, monitor.TriggerPIDFile)
	}, log)
	if err != nil {
		return fmt.Errorf("arm pidfile watch: %w", err)
	}
	defer w.Stop()

	sched := scheduler.New(d.mon.Window, func() {
		d.mon.Evaluate(ctx, monitor.TriggerTimer)
	}, nil, log)
	sched.Start()
	defer sched.Stop()

	log.Info("daemon running",
		"window", d.mon.Window.String(),
		"pidfile", d.cfg.Target.PIDFile,
		"target", d.cfg.Target.Name)

	<-ctx.Done()
	log.Info("shutting down")
	if statusSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = statusSrv.Shutdown(shutdownCtx)
	}
	return nil
}
