package host

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/marmos91/appfx/internal/logger"
	"github.com/marmos91/appfx/pkg/config"
)

// Server is the HTTP server of the web topology.
//
// Listen binds the port synchronously so startup fails fast on an address
// in use; Serve then runs in the background until Stop.
type Server struct {
	server       *http.Server
	listener     net.Listener
	errs         chan error
	shutdownOnce sync.Once
}

// NewServer creates a stopped server for handler.
func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		errs: make(chan error, 1),
	}
}

// Start binds the listen address and serves in a background goroutine.
// A serve failure is delivered on Errors.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	s.listener = ln
	logger.Info("HTTP server listening", "addr", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", logger.Err(err))
			s.errs <- err
		}
	}()
	return nil
}

// Errors delivers at most one fatal serve error.
func (s *Server) Errors() <-chan error { return s.errs }

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down. It is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("HTTP server shutdown initiated")
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("HTTP server shutdown error: %w", err)
			logger.Error("HTTP server shutdown error", logger.Err(err))
			return
		}
		logger.Info("HTTP server stopped gracefully")
	})
	return shutdownErr
}
