package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juruladenbam/bam-sub001/common/logger"
)

// DefaultDrainTimeout bounds how long in-flight requests may run after a
// shutdown signal
const DefaultDrainTimeout = 30 * time.Second

// Server runs an HTTP handler until the process is asked to stop
type Server struct {
	name         string
	httpServer   *http.Server
	drainTimeout time.Duration
	log          *logger.Logger
}

// New creates a server listening on port
func New(name string, port int, handler http.Handler, log *logger.Logger) *Server {
	return &Server{
		name: name,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		drainTimeout: DefaultDrainTimeout,
		log:          log,
	}
}

// WithDrainTimeout overrides DefaultDrainTimeout
func (s *Server) WithDrainTimeout(d time.Duration) *Server {
	s.drainTimeout = d
	return s
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then
// drains outstanding requests
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", "server", s.name, "addr", s.httpServer.Addr)
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s server: %w", s.name, err)
	case <-ctx.Done():
	}

	s.log.Info("shutdown signal received", "server", s.name, "drain_timeout", s.drainTimeout)
	return s.drain()
}

func (s *Server) drain() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Warn("graceful shutdown failed, closing connections", "server", s.name, "error", err)
		if err := s.httpServer.Close(); err != nil {
			return fmt.Errorf("could not stop %s server: %w", s.name, err)
		}
	}

	s.log.Info("shutdown complete", "server", s.name)
	return nil
}
