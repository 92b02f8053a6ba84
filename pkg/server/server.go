// Package server runs a web adapter serving a route table until its
// context is canceled.
package server

import (
	"context"
	"log/slog"

	axonerrors "github.com/toyz/axonmvc/internal/errors"
	"github.com/toyz/axonmvc/pkg/adapters"
	"github.com/toyz/axonmvc/pkg/mvc"
	"github.com/toyz/axonmvc/pkg/routing"
)

// Server wraps a web adapter with its configuration and routes
type Server struct {
	config      *Config
	web         adapters.WebServer
	routes      routing.Table
	logger      *slog.Logger
	middlewares []adapters.Middleware
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger, slog.Default by default
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMiddleware adds middlewares running inside the request logger
func WithMiddleware(middlewares ...adapters.Middleware) Option {
	return func(s *Server) {
		s.middlewares = append(s.middlewares, middlewares...)
	}
}

// New creates a server dispatching to dispatcher. Routes loaded from
// config.RoutesFile are registered before routes.
func New(config *Config, dispatcher *mvc.Dispatcher, routes routing.Table, opts ...Option) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Server{config: config, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	if config.RoutesFile != "" {
		loaded, err := routing.LoadRoutes(config.RoutesFile)
		if err != nil {
			return nil, err
		}
		s.routes = append(s.routes, loaded...)
	}
	s.routes = append(s.routes, routes...)
	if len(s.routes) == 0 {
		return nil, axonerrors.WrapConfigurationError("server", "routes",
			axonerrors.New(axonerrors.ConfigurationErrorCode, "no routes to serve"))
	}

	web, err := adapters.New(config.Adapter, dispatcher,
		adapters.WithLogger(s.logger),
		adapters.WithMiddleware(adapters.RequestLogger(s.logger)),
		adapters.WithMiddleware(s.middlewares...))
	if err != nil {
		return nil, err
	}
	for _, route := range s.routes {
		if err := web.RegisterRoute(route); err != nil {
			return nil, err
		}
	}
	s.web = web

	return s, nil
}

// Routes returns the registered routes in registration order
func (s *Server) Routes() routing.Table {
	return append(routing.Table(nil), s.routes...)
}

// WebServer returns the adapter serving requests
func (s *Server) WebServer() adapters.WebServer {
	return s.web
}

// Run serves requests until ctx is canceled, then shuts down gracefully
// within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Addr()
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.web.Start(addr)
	}()
	s.logger.Info("server started", "adapter", s.web.Name(), "addr", addr, "routes", len(s.routes))

	select {
	case err := <-errCh:
		if err != nil {
			return axonerrors.Wrapf(axonerrors.ConfigurationErrorCode, err, "%s server failed on %s", s.web.Name(), addr)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", "timeout", s.config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.web.Stop(shutdownCtx); err != nil {
		return axonerrors.Wrapf(axonerrors.ConfigurationErrorCode, err, "server forced to shutdown")
	}
	select {
	case err := <-errCh:
		if err != nil {
			return axonerrors.Wrapf(axonerrors.ConfigurationErrorCode, err, "%s server failed on %s", s.web.Name(), addr)
		}
	case <-shutdownCtx.Done():
		return axonerrors.Wrapf(axonerrors.ConfigurationErrorCode, shutdownCtx.Err(), "%s server did not stop", s.web.Name())
	}

	s.logger.Info("server shutdown complete")
	return nil
}
