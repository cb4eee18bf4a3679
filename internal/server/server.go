// Package server sets up the HTTP server, router, and all route
// definitions. It is the composition root: every dependency in the app is
// wired here, in one place, rather than scattered across packages.
//
// DEPENDENCY CHAIN:
//
//	sqlite.DB → services (snippet, auth) → handlers → routes
//	          ↘ generator.Service (Claude) ↗
//	          ↘ github.Client             ↗
//
// Handlers never touch the database directly; services never touch HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/snipseo/snipseo/internal/analytics"
	"github.com/snipseo/snipseo/internal/auth"
	"github.com/snipseo/snipseo/internal/generator"
	"github.com/snipseo/snipseo/internal/github"
	"github.com/snipseo/snipseo/internal/handler"
	"github.com/snipseo/snipseo/internal/middleware"
	sqliteRepo "github.com/snipseo/snipseo/internal/repository/sqlite"
	"github.com/snipseo/snipseo/internal/service"
)

// Config holds everything the server needs from the environment. Optional
// integrations (Claude, GitHub OAuth, PostHog) degrade gracefully when
// their keys are empty.
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string
	DBPath      string

	JWTSecret string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
	GitHubToken        string // raises the GitHub API rate limit for context fetches

	ClaudeKey   string
	ClaudeModel string

	PostHogKey  string
	PostHogHost string
}

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router    *chi.Mux
	config    Config
	logger    *slog.Logger
	db        *sqliteRepo.DB
	analytics *analytics.Tracker
}

// New creates a Server and wires the full dependency graph.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		db:        db,
		analytics: analytics.New(cfg.PostHogKey, cfg.PostHogHost, logger),
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// ROUTE MAP:
//
//	GET    /                          generator page        (session required)
//	GET    /dashboard                 saved snippets page   (session required)
//	GET    /auth/login, /auth/signup  auth forms            (redirect away when authed)
//	POST   /auth/signup, /auth/login  email/password auth
//	GET    /auth/github/login         start OAuth
//	GET    /auth/github/callback      finish OAuth
//	POST   /auth/logout               clear session
//	POST   /api/generate              strict generation     (optional session)
//	POST   /api/generate-with-context resilient generation  (session required)
//	GET    /api/snippets              list                  (session required)
//	GET    /api/snippets/{id}         fetch one             (session required)
//	POST   /api/snippets              save                  (session required)
//	DELETE /api/snippets/{id}         delete                (session required)
//	GET    /api/me                    current user          (session required)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Auth plumbing ===
	// With no JWT secret every protected route answers 401 and protected
	// pages redirect to login. The app stays up; only sessions are off.
	var tokens *auth.TokenService
	if s.config.JWTSecret != "" {
		var err error
		tokens, err = auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
	} else {
		s.logger.Warn("JWT_SECRET not set, sessions disabled")
	}

	var githubOAuth *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		githubOAuth = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	} else {
		s.logger.Warn("GitHub OAuth not configured, GitHub login disabled")
	}

	// === Generation plumbing ===
	// A nil completer means the strict endpoint reports the missing key
	// and the contextual endpoint serves template fallbacks.
	var completer generator.Completer
	if s.config.ClaudeKey != "" {
		completer = generator.NewClaudeClient(s.config.ClaudeKey, s.config.ClaudeModel)
	} else {
		s.logger.Warn("CLAUDE_KEY not set, model generation disabled")
	}

	genService := generator.NewService(completer, s.logger)
	githubClient := github.New(s.config.GitHubToken, s.logger)

	// === Services and handlers ===
	snippetService := service.NewSnippetService(s.db, s.logger)
	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)

	generateHandler := handler.NewGenerateHandler(genService, githubClient, s.analytics, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.analytics, s.logger)
	authHandler := handler.NewAuthHandler(authService, githubOAuth, s.analytics, s.logger)

	pageHandler, err := handler.NewPageHandler(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}

	// === Static files ===
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// === Pages ===
	s.router.Group(func(r chi.Router) {
		r.Use(auth.PageGate(tokens))
		r.Get("/", pageHandler.HandleHome)
		r.Get("/dashboard", pageHandler.HandleDashboard)
		r.Get("/auth/login", pageHandler.HandleLogin)
		r.Get("/auth/signup", pageHandler.HandleSignup)
	})

	// === Auth flows ===
	s.router.Post("/auth/signup", authHandler.HandleSignup)
	s.router.Post("/auth/login", authHandler.HandleLogin)
	s.router.Post("/auth/logout", authHandler.HandleLogout)
	s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)

	// === API ===
	s.router.Route("/api", func(r chi.Router) {
		// Anonymous visitors may generate; logged-in users get the event
		// attributed to them.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Post("/generate", generateHandler.HandleGenerate)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/generate-with-context", generateHandler.HandleGenerateWithContext)
			r.Get("/snippets", snippetHandler.HandleList)
			r.Get("/snippets/{id}", snippetHandler.HandleGet)
			r.Post("/snippets", snippetHandler.HandleCreate)
			r.Delete("/snippets/{id}", snippetHandler.HandleDelete)
			r.Get("/me", authHandler.HandleMe)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s),
// flush analytics, close the database.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.analytics.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // generation calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
