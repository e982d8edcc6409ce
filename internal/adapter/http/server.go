package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/spin-location-service/internal/domain"
	"github.com/couchcryptid/spin-location-service/internal/geo"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// LocationResolver resolves free-text locations.
type LocationResolver interface {
	Resolve(ctx context.Context, query string) domain.ResolvedLocation
	ResolveNear(ctx context.Context, query string, device geo.Coordinate) domain.ResolvedLocation
}

// SessionResolver resolves on behalf of a client, cancelling that client's
// previous in-flight resolution. The boolean is false for a superseded call.
type SessionResolver interface {
	ResolveFor(ctx context.Context, clientID, query string, device *geo.Coordinate) (domain.ResolvedLocation, bool)
}

// ResolveResponse is the body of GET /v1/resolve.
type ResolveResponse struct {
	Resolved  domain.ResolvedLocation `json:"resolved"`
	SearchKey string                  `json:"search_key"`

	// Superseded is set when a newer request from the same client cancelled this one.
	Superseded bool `json:"superseded,omitempty"`
}

// Server exposes the resolve API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	resolver   LocationResolver
	sessions   SessionResolver
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /v1/resolve, and /v1/search-key routes.
func NewServer(addr string, resolver LocationResolver, sessions SessionResolver, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		resolver: resolver,
		sessions: sessions,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/resolve", s.handleResolve)
	mux.HandleFunc("GET /v1/search-key", s.handleSearchKey)

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleResolve resolves q, biased by the optional lat/lng device location.
// Requests carrying a client ID supersede that client's in-flight request.
// Provider failures still return 200 with a fallback resolution.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	device, err := parseCoordinate(q.Get("lat"), q.Get("lng"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var (
		resolved domain.ResolvedLocation
		current  = true
	)
	switch {
	case q.Get("client") != "":
		resolved, current = s.sessions.ResolveFor(r.Context(), q.Get("client"), q.Get("q"), device)
	case device != nil:
		resolved = s.resolver.ResolveNear(r.Context(), q.Get("q"), *device)
	default:
		resolved = s.resolver.Resolve(r.Context(), q.Get("q"))
	}

	writeJSON(w, http.StatusOK, ResolveResponse{
		Resolved:   resolved,
		SearchKey:  domain.BuildSearchKey(resolved, q.Get("term")),
		Superseded: !current,
	})
}

// handleSearchKey derives a search key from coordinates, or from a label when
// no coordinates are given.
func (s *Server) handleSearchKey(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	coords, err := parseCoordinate(q.Get("lat"), q.Get("lng"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if coords == nil && q.Get("label") == "" {
		writeError(w, http.StatusBadRequest, errors.New("lat/lng or label is required"))
		return
	}

	resolved := domain.ResolvedLocation{Coords: coords, Label: q.Get("label")}
	writeJSON(w, http.StatusOK, map[string]string{
		"search_key": domain.BuildSearchKey(resolved, q.Get("term")),
	})
}

// parseCoordinate returns nil when both values are empty.
func parseCoordinate(lat, lng string) (*geo.Coordinate, error) {
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, errors.New("lat and lng must be given together")
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q", lat)
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lng %q", lng)
	}
	c := geo.NewCoordinate(la, ln)
	if !c.Valid() {
		return nil, fmt.Errorf("coordinate %s,%s out of range", lat, lng)
	}
	return &c, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
