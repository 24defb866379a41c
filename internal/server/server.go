package server

import (
	"blogforge/internal/authoring"
	"blogforge/internal/config"
	"blogforge/internal/ideation"
	"blogforge/internal/logger"
	"blogforge/internal/persistence"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// requestTimeout bounds a single request. Ideation runs two LLM calls and a
// fan-out of trend lookups, so it is well above the per-call timeouts.
const requestTimeout = 170 * time.Second

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	store      persistence.Store
	pipeline   *ideation.Pipeline
	author     *authoring.Author
	config     config.Server
	apiKeys    map[string]string
	log        *slog.Logger
}

// New creates a new HTTP server instance
func New(store persistence.Store, pipeline *ideation.Pipeline, author *authoring.Author, cfg config.Server) *Server {
	log := logger.Get()

	s := &Server{
		router:   chi.NewRouter(),
		store:    store,
		pipeline: pipeline,
		author:   author,
		config:   cfg,
		apiKeys:  cfg.APIKeyUsers(),
		log:      log,
	}

	if len(s.apiKeys) == 0 {
		log.Warn("No server.api_keys configured, API requests are not authenticated")
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  config.Duration(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(cfg.WriteTimeout, 180*time.Second),
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(requestTimeout))
	s.router.Use(securityHeaders)

	if s.config.CORSEnabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300, // Maximum value not ignored by any major browsers
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAPIKey)

		// Rate limit per caller; the AI endpoints are expensive
		if s.config.RateLimit > 0 {
			r.Use(httprate.Limit(s.config.RateLimit, time.Minute,
				httprate.WithKeyFuncs(rateLimitKey),
				httprate.WithLimitHandler(s.handleRateLimited),
			))
		}

		r.Route("/api/v1/ai", func(r chi.Router) {
			r.Post("/content-ideas", s.handleContentIdeas)
			r.Post("/enhance-project-description", s.handleEnhanceDescription)
			r.Post("/category-suggestions", s.handleCategorySuggestions)
			r.Post("/generate-content", s.handleGenerateContent)
		})

		r.Route("/api/projects/{projectId}", func(r chi.Router) {
			r.Use(s.requireProject)

			r.Route("/research-content-ideas", func(r chi.Router) {
				r.Get("/", s.handleListIdeas)
				r.Post("/", s.handleCreateIdea)
				r.Put("/{ideaId}", s.handleUpdateIdea)
				r.Delete("/{ideaId}", s.handleDeleteIdea)
			})
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout,
		"write_timeout", s.httpServer.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
