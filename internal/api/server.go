// Package api is the HTTP front end of the pipeline: world-management
// endpoints, command history inspection, health, and an SSE event stream.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/blockgate/blockgate/internal/events"
	"github.com/blockgate/blockgate/internal/ledger"
	"github.com/blockgate/blockgate/internal/world"
)

// WorldManager is the command-building surface the API exposes.
type WorldManager interface {
	PlaceBlock(blockType string, pos world.Position, dataValue int) (string, error)
	RemoveBlock(pos world.Position) (string, error)
	FillArea(from, to world.Position, blockType, mode string) (string, error)
	CloneArea(from, to, dest world.Position, mode string) (string, error)
	DestroyArea(from, to world.Position) (string, error)
	RunCommand(command string) (string, error)
}

// HistorySource provides read access to the command ledger.
type HistorySource interface {
	History(limit int) []ledger.Record
	Depth() int
}

// ExecutorStatus reports whether an executor session is attached.
type ExecutorStatus interface {
	Connected() bool
}

// Config holds API server configuration.
type Config struct {
	Listen string
	// APIKey is the bearer token required on every /api/v1 request.
	APIKey string
	// ConfigChecksum is surfaced in /healthz for operators.
	ConfigChecksum string
}

// Server represents the HTTP API server.
type Server struct {
	config    Config
	manager   WorldManager
	history   HistorySource
	executor  ExecutorStatus
	hub       *events.Hub
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time
}

// New creates a new API server instance.
func New(config Config, manager WorldManager, history HistorySource, executor ExecutorStatus, hub *events.Hub, logger *slog.Logger) *Server {
	return &Server{
		config:    config,
		manager:   manager,
		history:   history,
		executor:  executor,
		hub:       hub,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// Start starts the HTTP server (blocking) until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // long-lived SSE responses
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("API server starting", "listen", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// Unauthenticated ops endpoint.
	r.Get("/healthz", s.handleHealthz)

	// Protected API.
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/place_block", s.handlePlaceBlock)
			r.Post("/remove_block", s.handleRemoveBlock)
			r.Post("/fill_area", s.handleFillArea)
			r.Post("/clone_area", s.handleCloneArea)
			r.Post("/destroy_area", s.handleDestroyArea)
			r.Post("/execute_command", s.handleExecuteCommand)
			r.Get("/command_history", s.handleCommandHistory)
		})
		r.Get("/events", s.handleEvents)
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
