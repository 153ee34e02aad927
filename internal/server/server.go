// Package server exposes log directories and pages over a small JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmurray2011/leaf/internal/logdir"
	"github.com/jmurray2011/leaf/internal/logging"
	"github.com/jmurray2011/leaf/internal/pager"
)

const shutdownTimeout = 5 * time.Second

// Config configures the API server.
type Config struct {
	Addr       string
	Dir        string // log directory every request is confined to
	AppRoot    string // stripped from trace paths
	Lines      int
	BufferSize int
	MaxPages   int
}

// Server serves the JSON API.
type Server struct {
	cfg    Config
	dir    *logdir.Dir
	log    logging.Logger
	server *http.Server
}

// New creates a server. A nil logger uses the default one.
func New(cfg Config, log logging.Logger) *Server {
	if log == nil {
		log = logging.Default()
	}
	s := &Server{
		cfg: cfg,
		dir: logdir.New(cfg.Dir),
		log: log.WithField("component", "server"),
	}
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return setupRoutes(&handler{
		dir:  s.dir,
		opts: s.pagerOptions(),
		log:  s.log,
	}, s.log)
}

func (s *Server) pagerOptions() pager.Options {
	return pager.Options{
		BufferSize: s.cfg.BufferSize,
		Lines:      s.cfg.Lines,
		Root:       s.cfg.AppRoot,
		MaxPages:   s.cfg.MaxPages,
		Logger:     s.log,
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving %s on http://%s", s.dir.Base, s.cfg.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
