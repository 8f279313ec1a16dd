// internal/httpserver/server.go
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/bindery/internal/config"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/mw"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/routes"
	"github.com/MrSnakeDoc/bindery/internal/logger"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http    *http.Server
	logger  logger.Logger
	started time.Time
}

// NewRouter builds the router (middlewares, route registration). No global
// timeout middleware: the entry stream is long-lived and uploads can be slow.
func NewRouter(loggerClient logger.Logger, d deps.Deps) http.Handler {
	r := chi.NewRouter()

	// --- Global middlewares (safe defaults)
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID) // X-Request-ID on each request
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer) // never crash the process on panic
	r.Use(mw.Log(loggerClient)) // structured access logs

	routes.RegisterAll(r, d)
	r.NotFound(handlers.NotFound(d))

	return r
}

// New builds the HTTP server around NewRouter.
func New(cfg *config.Config, loggerClient logger.Logger, d deps.Deps) *Server {
	if d.WriteLimit == nil && cfg.WriteRatePerMin > 0 {
		d.WriteLimit = mw.RateLimit(mw.RateLimitConfig{
			Burst:             cfg.WriteRateBurst,
			RefillPerIPPerMin: cfg.WriteRatePerMin,
			MaxEntries:        10_000,
			TrustProxy:        cfg.TrustProxy,
		})
	}

	// Streams never go idle; end them when shutdown starts.
	shuttingDown, closeStreams := context.WithCancel(context.Background())
	d.Shutdown = shuttingDown.Done()

	s := &http.Server{
		Addr:              cfg.ListenPort,
		Handler:           NewRouter(loggerClient, d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute, // multipart photo uploads
		WriteTimeout:      2 * time.Minute, // the stream pushes its deadline per event
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	s.RegisterOnShutdown(closeStreams)

	return &Server{
		http:    s,
		logger:  loggerClient,
		started: d.StartTime,
	}
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
