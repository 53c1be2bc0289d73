// Package killer performs the graceful-then-forceful termination of the
// watched process: notify, SIGTERM, bounded wait, SIGKILL.
package killer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkrajnik/steamkiller/internal/notify"
)

// Proc is the part of a resolved target the killer needs. It is satisfied by
// *target.Target.
type Proc interface {
	Alive() bool
	Terminate() error
	Kill() error
	fmt.Stringer
}

// Outcome describes how a termination attempt ended.
type Outcome string

const (
	// OutcomeGraceful: the process exited within the grace period.
	OutcomeGraceful Outcome = "graceful"
	// OutcomeKilled: the process ignored SIGTERM and was SIGKILLed.
	OutcomeKilled Outcome = "killed"
	// OutcomeAlreadyGone: the process had exited before any signal was sent.
	OutcomeAlreadyGone Outcome = "already_gone"
)

const (
	pollInterval = 50 * time.Millisecond
	reapWait     = 200 * time.Millisecond
)

// Killer escalates termination after a fixed grace period. Every step is
// best-effort and logged; no step aborts the ones after it.
type Killer struct {
	Grace    time.Duration
	Notifier *notify.Notifier // nil disables notifications
	Logger   *slog.Logger
}

// Terminate runs the escalation against p and reports the outcome. The only
// bounded wait in the daemon is the grace period here.
func (k *Killer) Terminate(ctx context.Context, p Proc) Outcome {
	log := k.Logger
	if log == nil {
		log = slog.Default()
	}

	if k.Notifier != nil {
		if err := k.Notifier.Send(ctx); err != nil {
			log.Warn("failed to send desktop notification", "error", err)
		}
	}

	if !p.Alive() {
		log.Info("process already gone", "target", p.String())
		return OutcomeAlreadyGone
	}
	log.Info("sending SIGTERM", "target", p.String())
	if err := p.Terminate(); err != nil {
		log.Debug("SIGTERM failed, process likely exited", "target", p.String(), "error", err)
	}

	if k.waitGone(ctx, p, k.Grace) {
		log.Info("process terminated gracefully", "target", p.String())
		return OutcomeGraceful
	}

	log.Warn("grace period elapsed, sending SIGKILL", "target", p.String(), "grace", k.Grace)
	if err := p.Kill(); err != nil {
		log.Debug("SIGKILL failed, process likely exited", "target", p.String(), "error", err)
	}
	k.waitGone(ctx, p, reapWait)
	log.Info("process killed", "target", p.String())
	return OutcomeKilled
}

// waitGone polls aliveness until the process exits, d elapses, or ctx is
// canceled. Polling is the only option for a process the daemon did not
// start and therefore cannot Wait on.
func (k *Killer) waitGone(ctx context.Context, p Proc, d time.Duration) bool {
	deadline := time.Now().Add(d)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if !p.Alive() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return !p.Alive()
		case <-ticker.C:
		}
	}
}
