package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/log"
)

// Server represents the HTTP server
type Server struct {
	http *http.Server
}

// New creates a server listening on the configured address.
func New(cfg *config.Config, handler http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Start blocks serving requests until the server is shut down. A clean
// shutdown returns nil.
func (s *Server) Start() error {
	log.Info(context.Background(), "starting server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
