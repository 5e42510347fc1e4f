package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tiendalia/cart-service/internal/platform/logger"
)

type Server struct {
	httpServer *http.Server
	log        logger.Logger
	port       string
}

func NewServer(log logger.Logger, port string, readTimeout, writeTimeout time.Duration, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		log:  log,
		port: port,
	}
}

func (s *Server) Start() error {
	s.log.Infof("HTTP server is starting on port %s", s.port)
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed to serve: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("HTTP server is stopping gracefully")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Warn("graceful shutdown timed out, forcing close")
		_ = s.httpServer.Close()
		return err
	}
	s.log.Info("HTTP server stopped gracefully")
	return nil
}
