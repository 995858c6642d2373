// Package api exposes frame conversion and satellite ephemeris over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/brandon-sexton/openspace-coordinates/internal/auth"
	"github.com/brandon-sexton/openspace-coordinates/internal/frames"
	"github.com/brandon-sexton/openspace-coordinates/internal/health"
	"github.com/brandon-sexton/openspace-coordinates/internal/httputil"
	"github.com/brandon-sexton/openspace-coordinates/internal/metrics"
	"github.com/brandon-sexton/openspace-coordinates/internal/propagation"
	"github.com/brandon-sexton/openspace-coordinates/internal/tle"
)

// DefaultMaxBatch is the default cap on positions per conversion request.
const DefaultMaxBatch = 10000

// Config holds HTTP-layer configuration.
type Config struct {
	Auth       auth.Config
	MaxBatch   int  // positions per conversion request
	TrustProxy bool // honor X-Forwarded-For / X-Real-IP in request logs
}

// Deps are the services the handlers call into. Ephemeris and Catalog may
// be nil when no TLE source is configured.
type Deps struct {
	Converter *frames.Converter
	Ephemeris *propagation.Service
	Catalog   *tle.Catalog
	Ready     func() bool
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(addr string, logger *slog.Logger, cfg Config, deps Deps) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           newHandler(logger, cfg, deps),
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// newHandler registers routes and wraps them in the middleware chain:
// metrics -> logging -> auth -> mux.
func newHandler(logger *slog.Logger, cfg Config, deps Deps) http.Handler {
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = DefaultMaxBatch
	}
	h := &handlers{logger: logger, maxBatch: cfg.MaxBatch, deps: deps}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(deps.Ready))
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/v1/convert/fixed", h.convert(deps.Converter.FixedFromInertial))
	mux.HandleFunc("POST /api/v1/convert/inertial", h.convert(deps.Converter.InertialFromFixed))
	mux.HandleFunc("POST /api/v1/convert/spherical", h.spherical)
	mux.HandleFunc("GET /api/v1/matrices", h.matrices)
	mux.HandleFunc("GET /api/v1/ephemeris/{norad_id}", h.ephemeris)
	mux.HandleFunc("GET /api/v1/snapshot", h.snapshot)
	mux.HandleFunc("GET /api/v1/catalog", h.catalog)

	var handler http.Handler = mux
	handler = auth.Middleware(cfg.Auth)(handler)
	handler = loggingMiddleware(logger, cfg.TrustProxy)(handler)
	handler = metrics.Middleware(handler)
	return handler
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
			)
		})
	}
}
