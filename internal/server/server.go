// Package server exposes the accelerator over HTTP. It serves JSON reports of
// single runs, the problem catalogue, a health probe and Prometheus metrics,
// behind a middleware chain of security headers, rate limiting, logging and
// request metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/aitken/internal/config"
	"github.com/agbru/aitken/internal/engine"
	apperrors "github.com/agbru/aitken/internal/errors"
	"github.com/agbru/aitken/internal/logging"
	"github.com/agbru/aitken/internal/service"
)

// Server represents the HTTP server of the acceleration API. It wraps the
// standard http.Server and adds application-specific configuration and
// graceful shutdown capabilities.
type Server struct {
	factory        engine.RunnerFactory
	service        service.Service
	cfg            config.AppConfig
	httpServer     *http.Server
	logger         logging.Logger
	shutdownSignal chan os.Signal
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
}

// NewServer creates a new Server instance with the given runner factory and
// configuration. It initializes the HTTP server with timeouts and a request
// multiplexer.
//
// Parameters:
//   - factory: The runner factory to retrieve strategies from.
//   - cfg: The application configuration (port, default tolerances, etc.).
//   - opts: Optional functional options for customizing the server (e.g., WithLogger).
//
// Returns:
//   - *Server: A pointer to the initialized Server.
func NewServer(factory engine.RunnerFactory, cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		factory:        factory,
		cfg:            cfg,
		logger:         logging.NewLogger(os.Stdout, "server"),
		shutdownSignal: make(chan os.Signal, 1),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.service == nil {
		s.service = service.NewAccelerationService(s.factory, nil, s.securityConfig.MaxBudget)
	}

	if s.rateLimiter == nil {
		s.rateLimiter = NewRateLimiter(DefaultRateLimiterConfig())
	}

	mux := http.NewServeMux()

	// Security -> RateLimit -> Logging -> Metrics -> Handler
	mux.HandleFunc("/accelerate", s.wrapWithMiddleware("/accelerate", s.handleAccelerate))
	mux.HandleFunc("/problems", s.wrapWithMiddleware("/problems", s.handleProblems))
	mux.HandleFunc("/runners", s.wrapWithMiddleware("/runners", s.handleRunners))
	mux.HandleFunc("/health", s.wrapWithMiddleware("/health", s.handleHealth))
	mux.HandleFunc("/metrics", s.wrapWithMiddleware("/metrics", s.handleMetrics))

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}

	return s
}

// Handler returns the root handler with every route and middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// wrapWithMiddleware applies the full middleware chain to a handler. route is
// the label under which request metrics are recorded.
func (s *Server) wrapWithMiddleware(route string, handler http.HandlerFunc) http.HandlerFunc {
	wrapped := s.metricsMiddleware(route, handler)
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = RateLimitMiddleware(s.rateLimiter, wrapped)
	wrapped = SecurityMiddleware(s.securityConfig, wrapped)
	return wrapped
}

// endpoints lists the routes announced at startup.
var endpoints = []string{
	"GET /accelerate?problem=<name>&algo=<runner>&abs=<tol>&rel=<tol>&budget=<terms>&policy=<policy>",
	"GET /problems",
	"GET /runners",
	"GET /health",
	"GET /metrics",
}

// Start initializes and starts the HTTP server.
// It listens for incoming requests on the configured port and handles system
// signals (SIGINT, SIGTERM) to ensure a graceful shutdown.
//
// Returns:
//   - error: An error if the server fails to start or shuts down unexpectedly.
func (s *Server) Start() error {
	signal.Notify(s.shutdownSignal, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.shutdownSignal)
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting server", logging.String("addr", s.httpServer.Addr))
		s.logger.Info("default run options",
			logging.Float64("abs", s.cfg.AbsTolerance),
			logging.Float64("rel", s.cfg.RelTolerance),
			logging.Uint64("max_budget", s.securityConfig.MaxBudget),
			logging.String("policy", s.cfg.Policy),
		)
		for _, e := range endpoints {
			s.logger.Info("endpoint", logging.String("route", e))
		}

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-s.shutdownSignal:
		s.logger.Info("shutdown signal received, draining requests", logging.Duration("timeout", s.timeouts.ShutdownTimeout))
	case err := <-errCh:
		return apperrors.NewServerError("server failed to start", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}

	s.logger.Info("server stopped")
	return nil
}
