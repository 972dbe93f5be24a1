// Package api provides the HTTP REST API for modulocore.
//
// It exposes the command dispatch entry point, derived module
// connectivity status, and notification read operations to the
// dashboard. Historical telemetry browsing stays with the dashboard's
// own database access; this API only covers what the core owns.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modulo-iot/modulocore/internal/control"
	"github.com/modulo-iot/modulocore/internal/infrastructure/config"
	"github.com/modulo-iot/modulocore/internal/infrastructure/logging"
	"github.com/modulo-iot/modulocore/internal/modulo"
	"github.com/modulo-iot/modulocore/internal/notify"
	"github.com/modulo-iot/modulocore/internal/status"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	Logger     *logging.Logger
	Fleet      modulo.Repository
	Notify     notify.Repository
	Dispatcher *control.Dispatcher
	Monitor    *status.Monitor
	Version    string
}

// Server is the HTTP API server for modulocore.
type Server struct {
	cfg        config.APIConfig
	logger     *logging.Logger
	fleet      modulo.Repository
	notify     notify.Repository
	dispatcher *control.Dispatcher
	monitor    *status.Monitor
	version    string
	server     *http.Server
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Fleet == nil {
		return nil, fmt.Errorf("fleet repository is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("command dispatcher is required")
	}
	if deps.Monitor == nil {
		return nil, fmt.Errorf("status monitor is required")
	}

	return &Server{
		cfg:        deps.Config,
		logger:     deps.Logger.With("component", "api"),
		fleet:      deps.Fleet,
		notify:     deps.Notify,
		dispatcher: deps.Dispatcher,
		monitor:    deps.Monitor,
		version:    deps.Version,
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.IdleTimeout) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting up to ten seconds
// for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
