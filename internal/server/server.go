// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the database, services, handlers and
// middleware are created and connected here and nowhere else.
//
//	sqlite.DB → services (repository interfaces) → handlers → routes
//
// Handlers never touch the database; services never touch HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/foodlog/internal/auth"
	"github.com/sakif/foodlog/internal/config"
	"github.com/sakif/foodlog/internal/handler"
	"github.com/sakif/foodlog/internal/middleware"
	sqliteRepo "github.com/sakif/foodlog/internal/repository/sqlite"
	"github.com/sakif/foodlog/internal/service"
)

// shutdownTimeout is how long in-flight requests get after SIGINT/SIGTERM.
const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
// It owns the database connection and closes it when Start returns.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	tokens *auth.TokenService
}

// New opens the database, builds every service and registers the routes.
// A JWT secret is required: every /api route is authenticated.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("configuring auth: %w", err)
	}

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		tokens: tokens,
	}
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on the way out.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures middleware and routes.
//
// Middleware runs in the order added: request id first so every later
// layer (including the logger) can read it.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	catalog := service.NewCatalogService(s.db, s.logger)
	journal := service.NewJournalService(s.db, s.db, s.db, s.logger)
	nutrition := service.NewNutritionService(s.db, s.db, s.logger)
	trends := service.NewTrendService(s.db, s.db, s.config.NutrientSampleCap, s.logger)
	challenges := service.NewChallengeService(s.db, s.logger)

	foods := handler.NewFoodHandler(catalog, s.logger)
	journalHandler := handler.NewJournalHandler(journal, s.logger)
	reports := handler.NewReportHandler(nutrition, trends, s.logger)
	challengeHandler := handler.NewChallengeHandler(challenges, s.logger)
	checkinLimiter := middleware.NewRateLimiter(s.config.CheckinRatePerMinute)

	s.router.Get("/healthz", handler.NewHealthHandler(s.db).HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(s.tokens))
		r.Use(middleware.TagUser)

		r.Get("/foods", foods.HandleSearch)
		r.Post("/foods", foods.HandleCreate)
		r.Get("/foods/{id}", foods.HandleGet)
		r.Put("/foods/{id}", foods.HandleUpdate)

		r.Post("/meals", journalHandler.HandleLogMeal)
		r.Delete("/meals/{id}", journalHandler.HandleDeleteMeal)

		r.Get("/activities", journalHandler.HandleListActivities)
		r.Post("/activities", journalHandler.HandleLogActivity)
		r.Delete("/activities/{id}", journalHandler.HandleDeleteActivity)

		r.Get("/reports/daily", reports.HandleDaily)
		r.Get("/reports/range", reports.HandleRange)

		r.Route("/challenges", func(r chi.Router) {
			r.Get("/", challengeHandler.HandleList)
			r.Post("/", challengeHandler.HandleCreate)
			r.Get("/{id}", challengeHandler.HandleStatus)
			r.Post("/{id}/join", challengeHandler.HandleJoin)
			r.With(checkinLimiter.Handler).Post("/{id}/checkin", challengeHandler.HandleCheckin)
			r.Get("/{id}/checkins", challengeHandler.HandleListCheckins)
		})
	})
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests and
// closes the database.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
