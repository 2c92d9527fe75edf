// Package server wires the application together: router, middleware,
// routes, and graceful shutdown. It is the composition root — every
// dependency chain (DB → repositories → services → handlers, hub →
// realtime handler) is assembled in New, nowhere else.
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

	"github.com/nencyajudiya/blogstream/internal/auth"
	"github.com/nencyajudiya/blogstream/internal/handler"
	"github.com/nencyajudiya/blogstream/internal/middleware"
	"github.com/nencyajudiya/blogstream/internal/realtime"
	sqliteRepo "github.com/nencyajudiya/blogstream/internal/repository/sqlite"
	"github.com/nencyajudiya/blogstream/internal/service"
	"github.com/nencyajudiya/blogstream/internal/upload"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port          int
	DBPath        string
	UploadDir     string
	PublicBaseURL string // origin prepended to stored upload URLs
	JWTSecret     string

	// GitHub OAuth is optional; the routes are registered only when all
	// three are set.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the resources that need closing on shutdown:
// the database connection and the realtime hub.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	hub    *realtime.Hub
}

// New creates a Server with all dependencies wired.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, err
	}

	uploads, err := upload.New(cfg.UploadDir, cfg.PublicBaseURL, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		hub:    realtime.NewHub(logger),
	}

	s.setupRoutes(tokens, uploads)

	return s, nil
}

func (s *Server) setupRoutes(tokens *auth.TokenService, uploads *upload.Store) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Services.
	passwords := auth.NewPasswordService()
	authSvc := service.NewAuthService(s.db, tokens, passwords, s.logger)
	blogSvc := service.NewBlogService(s.db, uploads, s.logger)
	commentSvc := service.NewCommentService(s.db, s.db, s.hub, s.logger)

	// The GitHub provider exists only when OAuth is configured; the server
	// runs fine with password auth alone.
	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" && s.config.GitHubCallbackURL != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc, github, uploads, s.logger)
	blogHandler := handler.NewBlogHandler(blogSvc, uploads, s.logger)
	commentHandler := handler.NewCommentHandler(commentSvc, uploads, s.logger)
	realtimeHandler := handler.NewRealtimeHandler(s.hub, s.logger)

	requireAuth := auth.RequireAuth(tokens, s.db)

	s.router.Get("/health", s.handleHealth)

	// Stored uploads are served straight off disk, as the original app did.
	fileServer := http.FileServer(http.Dir(uploads.Dir()))
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	s.router.Get("/ws", realtimeHandler.HandleSocket)

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	} else {
		s.logger.Warn("GitHub OAuth not configured — OAuth routes disabled")
	}

	s.router.Route("/api", func(r chi.Router) {
		// Public routes.
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/blogs", blogHandler.HandleList)
		r.Get("/blogs/{id}", blogHandler.HandleGet)
		r.Get("/comments/{blogId}", commentHandler.HandleList)

		// Protected routes — every mutating endpoint sits behind the gate.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/auth/me", authHandler.HandleMe)
			r.Put("/auth/me", authHandler.HandleUpdateMe)
			r.Post("/blogs", blogHandler.HandleCreate)
			r.Get("/blogs/user/me", blogHandler.HandleListMine)
			r.Put("/blogs/{id}", blogHandler.HandleUpdate)
			r.Delete("/blogs/{id}", blogHandler.HandleDelete)
			r.Post("/comments", commentHandler.HandleCreate)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"OK","timestamp":%q}`, time.Now().UTC().Format(time.RFC3339))
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s,
// then close the hub (which ends every websocket session) and the database.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.hub.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.config.UploadDir),
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
