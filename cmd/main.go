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

	"github.com/dartclub/league-system/config"
	"github.com/dartclub/league-system/db"
	"github.com/dartclub/league-system/handlers"
	"github.com/dartclub/league-system/live"
	"github.com/dartclub/league-system/repositories"
	"github.com/dartclub/league-system/routes"
	"github.com/dartclub/league-system/schedule"
	"github.com/dartclub/league-system/services"
	"github.com/dartclub/league-system/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
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
		}
	}()
	logger.Info("database connection established")

	// Avatar uploads are optional: without R2 credentials the endpoint
	// answers 503 and everything else works.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("Cloudflare R2 not configured, avatar uploads disabled")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	tournamentPlayerRepo := repositories.NewPostgresTournamentPlayerRepository(dbConn)
	fixtureRepo := repositories.NewPostgresFixtureRepository(dbConn)

	authService := services.NewAuthService(cfg.AdminPasswordHash)
	playerService := services.NewPlayerService(playerRepo, uploader)
	standingsService := services.NewStandingsService(tournamentRepo, fixtureRepo)
	tournamentService := services.NewTournamentService(
		tournamentRepo,
		playerRepo,
		tournamentPlayerRepo,
		fixtureRepo,
		schedule.NewRoundRobinGenerator(),
		standingsService,
		wsHub,
		logger,
	)
	autodartsService := services.NewAutodartsService(
		playerRepo,
		tournamentRepo,
		tournamentPlayerRepo,
		fixtureRepo,
		tournamentService,
		logger,
	)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	playerHandler := handlers.NewPlayerHandler(playerService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	fixtureHandler := handlers.NewFixtureHandler(tournamentService)
	autodartsHandler := handlers.NewAutodartsHandler(autodartsService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins, logger)

	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		cfg.CORSAllowedOrigins,
		cfg.JWTSecretKey,
		authHandler,
		playerHandler,
		tournamentHandler,
		fixtureHandler,
		autodartsHandler,
		webSocketHandler,
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
		logger.Info("server stopped")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
