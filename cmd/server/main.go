// @title           Async Tournament API
// @version         1.0
// @description     Read-only access to async tournaments, their pools, permalinks, races and whitelist.
// @BasePath        /
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/async-tournament/config"
	"github.com/Dosada05/async-tournament/db"
	"github.com/Dosada05/async-tournament/feed"
	"github.com/Dosada05/async-tournament/handlers"
	"github.com/Dosada05/async-tournament/middleware"
	"github.com/Dosada05/async-tournament/repositories"
	"github.com/Dosada05/async-tournament/routes"
	"github.com/Dosada05/async-tournament/services"
	"github.com/Dosada05/async-tournament/web"
	"github.com/go-chi/chi/v5"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.CreateSchema(schemaCtx, dbConn)
	cancelSchema()
	if err != nil {
		logger.Error("failed to create schema", slog.Any("error", err))
		os.Exit(1)
	}

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	hub := feed.NewHub(logger)
	go hub.Run(appCtx)
	logger.Info("review feed hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	poolRepo := repositories.NewPostgresPoolRepository(dbConn)
	permalinkRepo := repositories.NewPostgresPermalinkRepository(dbConn)
	raceRepo := repositories.NewPostgresRaceRepository(dbConn)
	whitelistRepo := repositories.NewPostgresWhitelistRepository(dbConn)
	permissionRepo := repositories.NewPostgresPermissionRepository(dbConn)
	apiKeyRepo := repositories.NewPostgresAPIKeyRepository(dbConn)
	logger.Info("repositories initialized")

	loader := services.NewLoader(tournamentRepo, poolRepo, permalinkRepo, userRepo)
	policy := services.NewAccessPolicy(permissionRepo)
	authService := services.NewAuthService(apiKeyRepo, userRepo, services.NewDiscordIdentityProvider(), services.DiscordOAuthConfig{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURL:  cfg.DiscordRedirectURL,
	})
	tournamentService := services.NewTournamentService(tournamentRepo, poolRepo, permalinkRepo, raceRepo, whitelistRepo, loader)
	reviewService := services.NewReviewService(
		tournamentRepo,
		raceRepo,
		policy,
		loader,
		services.QueueFilterParser{Strict: !cfg.LenientFilters},
		hub,
		logger,
	)
	logger.Info("services initialized")

	pages, err := web.NewRenderer()
	if err != nil {
		logger.Error("failed to load templates", slog.Any("error", err))
		os.Exit(1)
	}
	sessions := middleware.NewSessionTokens(cfg.SessionSecret, cfg.SessionTTL)

	apiHandler := handlers.NewAPIHandler(tournamentService)
	reviewHandler := handlers.NewReviewHandler(reviewService, pages, logger)
	authHandler := handlers.NewAuthHandler(authService, sessions, cfg.SecureCookies, logger)
	feedHandler := handlers.NewFeedHandler(hub, policy, cfg.AllowedOrigins, logger)
	healthHandler := handlers.NewHealthHandler(dbConn)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		routes.Security{
			Sessions:       sessions,
			Users:          authService,
			APIKeys:        authService,
			RateLimiter:    middleware.NewRateLimiter(cfg.APIRateLimit, cfg.APIRateBurst),
			AllowedOrigins: cfg.AllowedOrigins,
		},
		apiHandler,
		reviewHandler,
		authHandler,
		feedHandler,
		healthHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		stopApp()
		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
