// Package ops exposes the operational HTTP surface: health, Prometheus
// metrics and the most recently generated digest.
package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger checks connectivity to the article store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the ops HTTP handler set.
type Server struct {
	db Pinger

	mu         sync.RWMutex
	digestHTML string
}

func NewServer(db Pinger) *Server {
	return &Server{db: db}
}

// SetDigest publishes the latest rendered digest for GET /digest.
func (s *Server) SetDigest(html string) {
	s.mu.Lock()
	s.digestHTML = html
	s.mu.Unlock()
}

// Router builds the chi router for the ops endpoint.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Get("/health", s.health)
	r.Get("/metrics", s.metrics)
	r.Get("/digest", s.digest)
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Checks: map[string]string{}}
	httpStatus := http.StatusOK

	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			resp.Status = "error"
			resp.Checks["db"] = "error"
			httpStatus = http.StatusServiceUnavailable
		} else {
			resp.Checks["db"] = "ok"
		}
	}

	writeJSON(w, httpStatus, resp)
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) digest(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	html := s.digestHTML
	s.mu.RUnlock()

	if html == "" {
		http.Error(w, "no digest generated yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
