// Package server exposes exploration sessions over HTTP.
//
// # Overview
//
// Each POST /sessions creates a session keyed by a random UUID. Zoom, reset
// and recompute requests compute synchronously and answer with the session
// state; frame.png and buffer serve the installed buffer, computing it on
// first use. Sessions expire after a period without requests.
//
// # Routes
//
//	GET    /healthz
//	GET    /gradients
//	GET    /regions
//	GET    /sessions
//	POST   /sessions
//	GET    /sessions/{id}
//	DELETE /sessions/{id}
//	POST   /sessions/{id}/recompute
//	POST   /sessions/{id}/zoom-in
//	POST   /sessions/{id}/zoom-out
//	POST   /sessions/{id}/reset
//	PUT    /sessions/{id}/gradient
//	POST   /sessions/{id}/invert
//	GET    /sessions/{id}/buffer
//	GET    /sessions/{id}/frame.png
//	GET    /sessions/{id}/ws
//
// Errors are JSON objects {"error": {"code": ..., "message": ...}} with the
// status chosen by [StatusCode].
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mandelscope/pkg/pipeline"
	"github.com/matzehuels/mandelscope/pkg/session"
)

const (
	// cleanupInterval is how often expired sessions are dropped.
	cleanupInterval = time.Minute

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 10 * time.Second

	// maxBodyBytes bounds JSON request bodies.
	maxBodyBytes = 1 << 16
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Runner computes buffers for every session; nil means no caching.
	Runner *pipeline.Runner

	// Logger receives request logs; nil discards them.
	Logger *log.Logger

	// SessionTTL is how long an idle session lives; 0 means session.DefaultTTL.
	SessionTTL time.Duration

	// Defaults fill the fields a create request leaves out.
	Defaults pipeline.Options
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	store  *session.Store
	logger *log.Logger
	router chi.Router
}

// New creates a server. It does not listen; use Handler or ListenAndServe.
func New(cfg Config) *Server {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	cfg.Defaults.Logger = nil
	cfg.Defaults.SetDefaults()

	s := &Server{
		cfg:    cfg,
		store:  session.NewStore(cfg.SessionTTL),
		logger: cfg.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Store returns the session store.
func (s *Server) Store() *session.Store { return s.store }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go s.store.RunCleanup(ctx, cleanupInterval, func(n int) {
		s.logger.Debug("expired sessions", "count", n)
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
