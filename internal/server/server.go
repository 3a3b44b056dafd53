// Package server exposes the tracker over a small JSON HTTP API with a
// Prometheus /metrics endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sadopc/timetrax/internal/accounting"
	"github.com/sadopc/timetrax/internal/logging"
	"github.com/sadopc/timetrax/internal/store"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	store   *store.Store
	engine  *accounting.Engine
	logger  *slog.Logger
	metrics *metrics
	handler http.Handler
}

// New builds the HTTP handler tree over st and engine. logger may be nil.
func New(st *store.Store, engine *accounting.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Logger()
	}
	s := &Server{
		store:   st,
		engine:  engine,
		logger:  logger,
		metrics: newMetrics(engine),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/work_items", s.handleListWorkItems)
	mux.HandleFunc("POST /api/work_items", s.handleAddWorkItem)
	mux.HandleFunc("GET /api/current", s.handleGetCurrent)
	mux.HandleFunc("PUT /api/current", s.handleSetCurrent)
	mux.HandleFunc("GET /api/today", s.handleToday)
	mux.HandleFunc("GET /api/ledger", s.handleLedger)
	mux.HandleFunc("GET /api/diff", s.handleDiff)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	s.handler = s.instrument(mux)
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	s.logger.Info("starting http server", logging.KeyAddr, listener.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.requests.WithLabelValues(route, fmt.Sprint(rec.status)).Inc()
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			logging.KeyStatus, rec.status,
			logging.KeyDuration, time.Since(start).Milliseconds(),
		)
	})
}
