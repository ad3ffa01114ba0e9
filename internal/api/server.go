// v1
// internal/api/server.go
// Package api exposes the scrape endpoint and the health probe. It only ever
// reads the snapshot.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/your-org/electricity-exporter/internal/snapshot"
)

// NewRouter wires the read-only routes: /metrics served by the Prometheus
// handler, /health reporting the snapshot health flag.
func NewRouter(snap *snapshot.Snapshot, metricsHandler http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler(snap)).Methods(http.MethodGet)
	return r
}

func healthHandler(snap *snapshot.Snapshot) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"up": snap.Health()})
	}
}

type Server struct {
	HTTP *http.Server
	Log  *slog.Logger
}

// NewServer wraps the router with access logging and panic recovery and
// applies the usual timeouts.
func NewServer(addr string, log *slog.Logger, router *mux.Router) *Server {
	wrapped := handlers.LoggingHandler(os.Stdout, handlers.RecoveryHandler()(router))

	hs := &http.Server{
		Addr:              addr,
		Handler:           wrapped,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{HTTP: hs, Log: log}
}

func (s *Server) Start() error {
	s.Log.Info("http server starting", "addr", s.HTTP.Addr)
	return s.HTTP.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.Log.Info("http server stopping")
	return s.HTTP.Shutdown(ctx)
}
