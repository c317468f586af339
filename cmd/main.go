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

	"github.com/football-investment/practice-booking-system-sub013/brackets"
	"github.com/football-investment/practice-booking-system-sub013/config"
	"github.com/football-investment/practice-booking-system-sub013/db"
	"github.com/football-investment/practice-booking-system-sub013/handlers"
	"github.com/football-investment/practice-booking-system-sub013/repositories"
	"github.com/football-investment/practice-booking-system-sub013/routes"
	"github.com/football-investment/practice-booking-system-sub013/services"
	"github.com/football-investment/practice-booking-system-sub013/storage"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

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

	// Snapshot archival is optional: without R2 credentials the finalizer
	// simply skips the upload step.
	var archiver services.SnapshotArchiver
	if cfg.R2AccountID != "" {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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
		archiver = storage.NewSnapshotArchiver(uploader)
		logger.Info("snapshot archiver initialized")
	} else {
		logger.Info("snapshot archiver disabled, R2 credentials not configured")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	transitionRepo := repositories.NewPostgresStatusTransitionRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	enrollmentRepo := repositories.NewPostgresEnrollmentRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	rankingRepo := repositories.NewPostgresRankingRepository(dbConn)
	ledgerRepo := repositories.NewPostgresRewardLedgerRepository(dbConn)
	logger.Info("repositories initialized")

	txRunner := services.NewTxRunner(dbConn)

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, cfg.JWTTokenTTL, logger)
	bracketService := services.NewBracketService(txRunner, matchRepo, enrollmentRepo, logger)
	finalizerService := services.NewFinalizerService(
		txRunner,
		tournamentRepo,
		enrollmentRepo,
		matchRepo,
		bracketService,
		archiver,
		logger,
	)
	tournamentService := services.NewTournamentService(
		txRunner,
		tournamentRepo,
		transitionRepo,
		sessionRepo,
		enrollmentRepo,
		matchRepo,
		rankingRepo,
		bracketService,
		finalizerService,
		logger,
	)
	rewardService := services.NewRewardService(txRunner, tournamentRepo, rankingRepo, ledgerRepo, logger)
	sessionService := services.NewSessionService(sessionRepo, tournamentRepo, logger)
	enrollmentService := services.NewEnrollmentService(enrollmentRepo, tournamentRepo, logger)
	rankingService := services.NewRankingService(txRunner, rankingRepo, tournamentRepo, logger)
	logger.Info("services initialized")

	router := routes.InitRoutes(routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Tournaments: handlers.NewTournamentHandler(tournamentService, finalizerService, wsHub),
		Enrollments: handlers.NewEnrollmentHandler(enrollmentService),
		Sessions:    handlers.NewSessionHandler(sessionService),
		Matches:     handlers.NewMatchHandler(bracketService, rankingService, wsHub),
		Rewards:     handlers.NewRewardHandler(rewardService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, logger),
	}, authService, cfg.AllowedOrigins)
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
