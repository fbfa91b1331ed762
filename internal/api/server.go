package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/adswafford/redbiom/internal/logger"
	"github.com/adswafford/redbiom/pkg/config"
)

// Server is the redbiom API HTTP server.
type Server struct {
	server *http.Server
	port   int
}

// NewServer builds the API server from its configuration.
func NewServer(cfg config.APIConfig, handler http.Handler) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		port: cfg.Port,
	}
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "port", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("API server shutdown: %w", err)
		}
		logger.Info("API server stopped")
		return nil
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}
