// Package watcher reacts to the target application starting: it watches the
// directory holding the PID file and fires when that exact path is created
// or rewritten.
package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/mkrajnik/steamkiller/internal/metrics"
)

// Watcher drives a callback from filesystem events on a single file. The
// directory is watched rather than the file itself so a create after a
// delete is still observed.
type Watcher struct {
	path   string
	fn     func()
	logger *slog.Logger

	w    *fsnotify.Watcher
	quit chan struct{}
	done chan struct{}
}

// New arms an fsnotify watch on the directory containing path. fn runs on
// the watcher's goroutine for every create/write on path.
func New(path string, fn func(), logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		path:   filepath.Clean(path),
		fn:     fn,
		logger: logger,
		w:      fw,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Stop tears the watch down and waits for the loop to exit.
func (w *Watcher) Stop() {
	close(w.quit)
	_ = w.w.Close()
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			return

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			metrics.IncWatchError()
			w.logger.Warn("filesystem watch error", "error", err)

		case evt, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != w.path {
				continue
			}
			if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Write) {
				continue
			}
			metrics.IncPIDFileEvent()
			w.logger.Debug("pidfile event", "op", evt.Op.String(), "path", evt.Name)
			w.fn()
		}
	}
}
