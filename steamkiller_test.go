package steamkiller

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Target.PIDFile = filepath.Join(dir, "steam.pid")
	cfg.Notify.Enabled = false
	return cfg
}

func TestNewWithDefaults(t *testing.T) {
	if _, err := New(testConfig(t)); err != nil {
		t.Fatalf("new: %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Window.StartHour = 20
	cfg.Window.EndHour = 6
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for inverted window")
	}
}

func TestRunFatalWithoutPIDFileDirectory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Target.PIDFile = filepath.Join(t.TempDir(), "missing", ".steam", "steam.pid")
	d, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := d.Run(t.Context()); err == nil {
		t.Fatalf("expected startup error when the PID-file directory is absent")
	}
}

func TestRunStartsAndStops(t *testing.T) {
	d, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(t.Context())
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()

	// Let the initial evaluation and the watcher come up, then stop.
	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("daemon did not stop on context cancel")
	}
}

func TestEvaluateNoTargetIsANoOp(t *testing.T) {
	cfg := testConfig(t)
	d, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	d.Evaluate(t.Context())
	d.Evaluate(t.Context()) // idempotent

	st := d.State()
	if st.TargetRunning {
		t.Fatalf("no target should be running")
	}
	if st.LastEval.IsZero() {
		t.Fatalf("evaluation not recorded")
	}
}

func TestStateReflectsPIDFile(t *testing.T) {
	cfg := testConfig(t)
	d, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	// A PID file pointing at a dead PID still means "not running".
	if err := os.WriteFile(cfg.Target.PIDFile, []byte("99999999\n"), 0o644); err != nil {
		t.Fatalf("write pidfile: %v", err)
	}
	if st := d.State(); st.TargetRunning {
		t.Fatalf("dead PID reported as running")
	}
}
