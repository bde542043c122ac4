package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-radar-etl/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SweepStore looks up archived sweeps.
type SweepStore interface {
	Latest(ctx context.Context, site string) (string, time.Time, error)
	Get(ctx context.Context, id string) (domain.CompactSweep, error)
}

// Server exposes health, readiness, metrics and archive HTTP endpoints.
type Server struct {
	httpServer *http.Server
	store      SweepStore
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, and /metrics routes.
// When store is non-nil, /sweeps/{site}/latest serves the newest archived sweep.
func NewServer(addr string, ready sharedobs.ReadinessChecker, store SweepStore, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:  store,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if store != nil {
		mux.HandleFunc("GET /sweeps/{site}/latest", s.handleLatest)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	site := domain.NormalizeSite(r.PathValue("site"))

	id, _, err := s.store.Latest(r.Context(), site)
	if err == nil {
		var sweep domain.CompactSweep
		if sweep, err = s.store.Get(r.Context(), id); err == nil {
			sharedobs.WriteJSON(w, http.StatusOK, sweep)
			return
		}
	}

	if errors.Is(err, domain.ErrSweepNotFound) {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "no sweeps archived for " + site})
		return
	}
	s.logger.Error("archive lookup failed", "site", site, "error", err)
	sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "archive lookup failed"})
}
