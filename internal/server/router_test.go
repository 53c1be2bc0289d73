package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkrajnik/steamkiller/internal/killer"
	"github.com/mkrajnik/steamkiller/internal/monitor"
	"github.com/mkrajnik/steamkiller/internal/policy"
)

type noLocator struct{}

func (noLocator) Resolve() (killer.Proc, error) { return nil, nil }

type noTerminator struct{}

func (noTerminator) Terminate(context.Context, killer.Proc) killer.Outcome {
	return killer.OutcomeAlreadyGone
}

func testMonitor() *monitor.Monitor {
	sunday := time.Date(2025, 1, 5, 12, 0, 0, 0, time.Local)
	return &monitor.Monitor{
		Window:     policy.Window{Weekday: time.Saturday, StartHour: 6, EndHour: 18},
		Locator:    noLocator{},
		Terminator: noTerminator{},
		Now:        func() time.Time { return sunday },
	}
}

func TestStatusEndpoint(t *testing.T) {
	r := NewRouter(testMonitor(), "")
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var st monitor.State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.WithinWindow {
		t.Fatalf("Sunday noon reported inside window")
	}
	if st.TargetRunning {
		t.Fatalf("no target should be running")
	}
	if st.NextClose.IsZero() {
		t.Fatalf("next close missing from status")
	}
}

func TestHealthz(t *testing.T) {
	r := NewRouter(testMonitor(), "/steamkiller")
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/steamkiller/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestSanitizeBase(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"/":            "",
		"steamkiller":  "/steamkiller",
		"/steamkiller": "/steamkiller",
		"/api/":        "/api",
	}
	for in, want := range cases {
		if got := sanitizeBase(in); got != want {
			t.Fatalf("sanitizeBase(%q) = %q, want %q", in, got, want)
		}
	}
}
