// Package server defines the Server struct that composes the app's main
// dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the database session opener
//   - the optional report archive
//   - Prometheus collectors
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/erp-gateway/internal/config"
	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/deppfellow/erp-gateway/internal/lib/archive"
	"github.com/deppfellow/erp-gateway/internal/metrics"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/erp-gateway/internal/logger"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself. Nothing in it is per-request: database
// sessions are opened by handlers for the duration of one request.
type Server struct {
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	LoggerService *loggerPkg.LoggerService

	// DB opens per-request sessions with the caller's credentials.
	DB database.Opener

	// Archive is nil unless archive.enabled is set.
	Archive *archive.Store

	// Metrics is the registry served on /metrics.
	Metrics *metrics.Registry

	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies.
//
// It does NOT start the HTTP server. That is done in SetupHTTPServer + Start.
// No database connection is made here: the gateway has no credentials of
// its own.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Metrics:       metrics.NewRegistry(),
	}

	if cfg.Archive.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := archive.New(ctx, cfg.Archive)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize report archive: %w", err)
		}
		server.Archive = store

		logger.Info().
			Str("bucket", cfg.Archive.Bucket).
			Str("prefix", cfg.Archive.Prefix).
			Msg("report archive enabled")
	}

	return server, nil
}

// SetupHTTPServer configures the internal net/http server.
// Config stores timeouts as seconds.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests,
// and with them their database sessions, until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.LoggerService != nil {
		s.LoggerService.Shutdown()
	}

	return nil
}
