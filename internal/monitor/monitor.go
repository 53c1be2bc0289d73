// Package monitor composes the policy clock, the process locator, and the
// killer into the single evaluate-and-act operation both triggers invoke.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mkrajnik/steamkiller/internal/killer"
	"github.com/mkrajnik/steamkiller/internal/metrics"
	"github.com/mkrajnik/steamkiller/internal/policy"
	"github.com/mkrajnik/steamkiller/internal/target"
)

// Trigger sources, used for logging and metrics labels.
const (
	TriggerStartup = "startup"
	TriggerPIDFile = "pidfile"
	TriggerTimer   = "timer"
	TriggerManual  = "manual"
)

// Locator resolves the watched process. A (nil, nil) return means
// "not running". Implementations must resolve fresh on every call.
type Locator interface {
	Resolve() (killer.Proc, error)
}

// Terminator performs the graceful-then-forceful escalation.
type Terminator interface {
	Terminate(ctx context.Context, p killer.Proc) killer.Outcome
}

// PIDFileLocator resolves the target through its PID file by name match.
type PIDFileLocator struct {
	PIDFile string
	Name    string
}

func (l PIDFileLocator) Resolve() (killer.Proc, error) {
	t, err := target.Resolve(l.PIDFile, l.Name)
	if t == nil {
		// Keep the interface value nil, not a nil *Target inside it.
		return nil, err
	}
	return t, err
}

// Monitor is re-entered on every trigger. Evaluate is safe to invoke
// concurrently from the watcher and the timer: it only reads OS process
// state and acts on it, so the worst case of a race is a duplicate
// termination attempt that finds the process already gone.
type Monitor struct {
	Window     policy.Window
	Locator    Locator
	Terminator Terminator
	Now        func() time.Time // nil means time.Now
	Logger     *slog.Logger

	mu          sync.Mutex
	lastEval    time.Time
	lastOutcome killer.Outcome
}

// State is a point-in-time snapshot for the status endpoint and CLI.
type State struct {
	Window        string         `json:"window"`
	WithinWindow  bool           `json:"within_window"`
	NextClose     time.Time      `json:"next_close"`
	TargetRunning bool           `json:"target_running"`
	LastEval      time.Time      `json:"last_evaluation,omitzero"`
	LastOutcome   killer.Outcome `json:"last_outcome,omitempty"`
}

func (m *Monitor) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Monitor) log() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

// Evaluate checks the window and, outside it, terminates the target if it is
// running. Idempotent: repeated calls with no process present only produce
// repeated no-op log lines.
func (m *Monitor) Evaluate(ctx context.Context, trigger string) {
	now := m.now()
	allowed := m.Window.Contains(now)
	metrics.IncEvaluation(trigger)
	metrics.SetWithinWindow(allowed)
	m.recordEval(now, "")

	if allowed {
		m.log().Debug("inside allowed window, nothing to do",
			"trigger", trigger, "window", m.Window.String())
		return
	}

	proc, err := m.Locator.Resolve()
	if err != nil {
		// Recoverable: unreadable PID file means "treat as not running".
		m.log().Warn("could not resolve target", "trigger", trigger, "error", err)
	}
	if proc == nil {
		m.log().Debug("target not running", "trigger", trigger)
		return
	}

	m.log().Info("outside allowed window with target running, terminating",
		"trigger", trigger, "target", proc.String(), "window", m.Window.String())
	outcome := m.Terminator.Terminate(ctx, proc)
	metrics.IncTermination(string(outcome))
	m.recordEval(now, outcome)
}

func (m *Monitor) recordEval(at time.Time, outcome killer.Outcome) {
	m.mu.Lock()
	m.lastEval = at
	if outcome != "" {
		m.lastOutcome = outcome
	}
	m.mu.Unlock()
}

// State reports the current window and target state. The target is resolved
// fresh, never cached.
func (m *Monitor) State() State {
	now := m.now()
	proc, _ := m.Locator.Resolve()
	m.mu.Lock()
	lastEval, lastOutcome := m.lastEval, m.lastOutcome
	m.mu.Unlock()
	return State{
		Window:        m.Window.String(),
		WithinWindow:  m.Window.Contains(now),
		NextClose:     m.Window.NextClose(now),
		TargetRunning: proc != nil,
		LastEval:      lastEval,
		LastOutcome:   lastOutcome,
	}
}
