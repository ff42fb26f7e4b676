// Package server exposes the Slack Events API endpoint together with health,
// readiness and metrics endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/edgard/slackchat/internal/config"
	errs "github.com/edgard/slackchat/internal/errors"
	"github.com/edgard/slackchat/internal/logger"
	"github.com/edgard/slackchat/internal/metrics"
	"github.com/edgard/slackchat/internal/reconcile"
)

// Route paths.
const (
	EventsPath  = "/slack/events"
	HealthPath  = "/healthz"
	ReadyPath   = "/readyz"
	MetricsPath = "/metrics"
)

// Applier reconciles a decoded message event.
type Applier interface {
	Apply(ctx context.Context, eventID string, ev *reconcile.Event) (reconcile.Outcome, error)
}

// Store is the part of the record store used by the HTTP layer.
type Store interface {
	Ping(ctx context.Context) error
	HasEventReceipt(ctx context.Context, eventID string) (bool, error)
	SaveEventReceipt(ctx context.Context, eventID, outcome string) error
}

// Server serves Slack event callbacks.
type Server struct {
	cfg        config.HTTPConfig
	slack      config.SlackConfig
	store      Store
	applier    Applier
	metrics    *metrics.Metrics
	limiter    *rate.Limiter
	logger     *slog.Logger
	router     *mux.Router
	httpServer *http.Server
}

// New builds a Server. At least one of the Slack verification token and
// signing secret must be configured.
func New(cfg config.HTTPConfig, slackCfg config.SlackConfig, store Store, applier Applier, m *metrics.Metrics, log *slog.Logger) (*Server, error) {
	if !slackCfg.HasRequestAuth() {
		return nil, errs.NewConfigError("slack.verification_token or slack.signing_secret must be set", nil)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if m == nil {
		m = metrics.New()
	}

	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		cfg:     cfg,
		slack:   slackCfg,
		store:   store,
		applier: applier,
		metrics: m,
		limiter: rate.NewLimiter(limit, burst),
		logger:  log.With("component", "http_server"),
	}
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(logger.Middleware(s.logger), s.metrics.Middleware)

	r.Handle(EventsPath, s.rateLimit(http.HandlerFunc(s.handleEvents))).Methods(http.MethodPost)
	r.HandleFunc(HealthPath, s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc(ReadyPath, s.handleReady).Methods(http.MethodGet)
	r.Handle(MetricsPath, s.metrics.Handler()).Methods(http.MethodGet)
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is like Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", listener.Addr().String())
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server stopped: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutdown signal received, stopping HTTP server...")
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Error during HTTP server shutdown", "error", err)
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	s.logger.Info("HTTP server stopped gracefully.")
	return nil
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded", "path", r.URL.Path)
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, "ok")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
		writeStatus(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	writeStatus(w, http.StatusOK, "ok")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"status":"` + status + `"}`))
}
