// Package server exposes a read-only HTTP view of the daemon: the allowed
// window, whether the target is running, and when the next forced check
// happens. Nothing here mutates daemon state.
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkrajnik/steamkiller/internal/monitor"
)

// Router provides embeddable HTTP handlers for the status endpoint.
// Endpoints:
//
//	GET {basePath}/status
//	GET {basePath}/healthz
type Router struct {
	mon      *monitor.Monitor
	basePath string
}

// NewRouter constructs a Router with a configurable basePath. An empty
// basePath mounts the endpoints at the root.
func NewRouter(mon *monitor.Monitor, basePath string) *Router {
	return &Router{mon: mon, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in any
// server or mux.
func (r *Router) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/status", r.handleStatus)
	group.GET("/healthz", r.handleHealthz)
	return g
}

// NewServer starts a standalone HTTP server for the router on addr. The
// caller shuts it down via http.Server Close or Shutdown.
func NewServer(addr, basePath string, mon *monitor.Monitor) *http.Server {
	r := NewRouter(mon, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server
}

func (r *Router) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, r.mon.State())
}

func (r *Router) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func sanitizeBase(bp string) string {
	bp = strings.TrimSpace(bp)
	if bp == "" || bp == "/" {
		return ""
	}
	if !strings.HasPrefix(bp, "/") {
		bp = "/" + bp
	}
	return strings.TrimRight(bp, "/")
}
