package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "steamkiller",
			Subsystem: "monitor",
			Name:      "evaluations_total",
			Help:      "Number of evaluate() runs, by trigger source.",
		}, []string{"trigger"},
	)
	terminations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "steamkiller",
			Subsystem: "monitor",
			Name:      "terminations_total",
			Help:      "Number of termination attempts, by outcome.",
		}, []string{"outcome"},
	)
	pidfileEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "steamkiller",
			Subsystem: "watcher",
			Name:      "pidfile_events_total",
			Help:      "Number of filesystem events observed on the PID file.",
		},
	)
	watchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "steamkiller",
			Subsystem: "watcher",
			Name:      "errors_total",
			Help:      "Number of filesystem watch errors.",
		},
	)
	withinWindow = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "steamkiller",
			Subsystem: "policy",
			Name:      "within_window",
			Help:      "1 while the current time is inside the allowed window.",
		},
	)
)

// Register registers all collectors on reg, tolerating duplicates so embed
// and test scenarios can call it more than once.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		evaluations, terminations, pidfileEvents, watchErrors, withinWindow,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// RegisterDefault registers on the default Prometheus registry.
func RegisterDefault() error { return Register(prometheus.DefaultRegisterer) }

func enabled() bool { return regOK.Load() }

// IncEvaluation counts one evaluate() run for the given trigger source
// (startup, pidfile, timer, manual).
func IncEvaluation(trigger string) {
	if enabled() {
		evaluations.WithLabelValues(trigger).Inc()
	}
}

// IncTermination counts one termination attempt by outcome.
func IncTermination(outcome string) {
	if enabled() {
		terminations.WithLabelValues(outcome).Inc()
	}
}

// IncPIDFileEvent counts one filesystem event on the PID file.
func IncPIDFileEvent() {
	if enabled() {
		pidfileEvents.Inc()
	}
}

// IncWatchError counts one filesystem watch error.
func IncWatchError() {
	if enabled() {
		watchErrors.Inc()
	}
}

// SetWithinWindow records the current window state.
func SetWithinWindow(in bool) {
	if enabled() {
		if in {
			withinWindow.Set(1)
		} else {
			withinWindow.Set(0)
		}
	}
}

// ServeMetrics exposes the default registry on addr at /metrics. It blocks
// like http.ListenAndServe.
func ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}
