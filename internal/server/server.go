// Package server holds the HTTP server and its middleware: request ids,
// structured request logging, timeouts, authentication and rate limiting.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options configures a Server.
type Options struct {
	Port            int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	// ServiceName names the otelhttp server spans.
	ServiceName string
}

type Server struct {
	Router *chi.Mux
	Port   int
	logger *slog.Logger

	shutdownTimeout time.Duration
	httpServer      *http.Server
}

func New(opts Options, logger *slog.Logger) *Server {
	if opts.ServiceName == "" {
		opts.ServiceName = "autodiag"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 15 * time.Second
	}

	r := chi.NewRouter()

	// Apply middleware in order
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimeoutMiddleware(opts.RequestTimeout))
	r.Use(middleware.Recoverer)

	// Wrap with OpenTelemetry HTTP instrumentation
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, opts.ServiceName)
	})

	return &Server{
		Router:          r,
		Port:            opts.Port,
		logger:          logger,
		shutdownTimeout: opts.ShutdownTimeout,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", slog.Int("port", s.Port))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
