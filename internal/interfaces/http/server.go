package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/turtacn/VitaQuote/internal/config"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
)

// Server wraps http.Server with the configured timeouts and a graceful stop.
type Server struct {
	srv *http.Server
	cfg config.ServerConfig
	log logging.Logger
}

// NewServer builds the server around an already-wired handler.
func NewServer(cfg config.ServerConfig, handler http.Handler, log logging.Logger) *Server {
	if cfg.MaxBodySize > 0 {
		handler = limitBody(handler, cfg.MaxBodySize)
	}
	return &Server{
		cfg: cfg,
		log: log,
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

func limitBody(next http.Handler, max int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, max)
		next.ServeHTTP(w, r)
	})
}

// Start blocks serving requests until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.log.Info("http server listening", logging.Int("port", s.cfg.Port))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests within the configured shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	s.log.Info("http server shutting down")
	return s.srv.Shutdown(ctx)
}

// Handler exposes the wired handler for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
