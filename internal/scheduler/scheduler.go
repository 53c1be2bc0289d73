// Package scheduler guarantees one evaluation at the close of every allowed
// window, even when no filesystem event arrives: a one-shot timer armed for
// the next window close, re-armed after each firing.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mkrajnik/steamkiller/internal/policy"
)

// Scheduler owns exactly one pending timer at any time; the timer is
// replaced, never accumulated, on each firing.
type Scheduler struct {
	window policy.Window
	fn     func()
	now    func() time.Time
	logger *slog.Logger

	mu      sync.Mutex
	nextAt  time.Time
	quit    chan struct{}
	done    chan struct{}
	started bool
}

// New builds a scheduler for the window; fn runs on the scheduler goroutine
// at every window close. now is injectable for tests and defaults to
// time.Now when nil.
func New(w policy.Window, fn func(), now func() time.Time, logger *slog.Logger) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{window: w, fn: fn, now: now, logger: logger}
}

// Start launches the timer loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop()
}

// Stop cancels the pending timer and waits for the loop to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	quit, done := s.quit, s.done
	s.mu.Unlock()
	close(quit)
	<-done
}

// NextFire reports the instant the pending timer is armed for.
func (s *Scheduler) NextFire() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextAt
}

func (s *Scheduler) loop() {
	defer close(s.done)
	for {
		next := s.window.NextClose(s.now())
		s.mu.Lock()
		s.nextAt = next
		s.mu.Unlock()
		delay := next.Sub(s.now())
		s.logger.Debug("window close check scheduled", "at", next, "in", delay)

		timer := time.NewTimer(delay)
		select {
		case <-s.quit:
			timer.Stop()
			return
		case <-timer.C:
			s.logger.Debug("window close reached", "at", next)
			s.fn()
		}
	}
}
