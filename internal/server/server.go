// Package server holds the application container and the HTTP server
// lifecycle.
//
// Server owns the configuration, the loggers, the database and the
// *http.Server. Repositories, services, handlers and middleware receive
// it explicitly instead of reaching for globals.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/deppfellow/event-api/internal/config"
	"github.com/deppfellow/event-api/internal/database"
	loggerPkg "github.com/deppfellow/event-api/internal/logger"
	"github.com/rs/zerolog"
)

// Server is the application container.
type Server struct {
	Config *config.Config
	Logger *zerolog.Logger

	// LoggerService holds the New Relic application; it may hold none.
	LoggerService *loggerPkg.LoggerService

	DB *database.Database

	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// New connects to the database and returns the container.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
	}, nil
}

// SetupHTTPServer configures the HTTP server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start binds the configured port, logs that the server is up and serves
// until Shutdown. It returns http.ErrServerClosed after a clean shutdown.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.httpServer.Addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("addr", ln.Addr().String()).
		Str("env", s.Config.Primary.Env).
		Msgf("server is running on port %s", s.Config.Server.Port)

	return s.httpServer.Serve(ln)
}

// Addr returns the bound address, or nil before Start has bound.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown drains in-flight requests until ctx expires, then closes the
// database. New Relic is flushed on every return path.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.LoggerService.Shutdown()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
