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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/sur-voley/club-system/config"
	"github.com/sur-voley/club-system/db"
	"github.com/sur-voley/club-system/handlers"
	"github.com/sur-voley/club-system/live"
	"github.com/sur-voley/club-system/repositories"
	api "github.com/sur-voley/club-system/routes"
	"github.com/sur-voley/club-system/services"
	"github.com/sur-voley/club-system/storage"
)

const reminderInterval = 1 * time.Hour // частота проверки завтрашних активностей

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("eligibility_policy", string(cfg.EligibilityPolicy)))

	// Подключение к базе данных
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

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	profileRepo := repositories.NewPostgresProfileRepository(dbConn)
	categoryRepo := repositories.NewPostgresCategoryRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	activityRepo := repositories.NewPostgresActivityRepository(dbConn)
	attendanceRepo := repositories.NewPostgresAttendanceRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	emailService := services.NewSMTPEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	authService := services.NewAuthService(profileRepo, playerRepo)
	profileService := services.NewProfileService(profileRepo, cloudflareUploader)
	categoryService := services.NewCategoryService(categoryRepo)
	teamService := services.NewTeamService(teamRepo, profileRepo, cloudflareUploader)
	playerService := services.NewPlayerService(playerRepo, profileRepo, teamRepo, cfg.EligibilityPolicy)
	activityService := services.NewActivityService(
		dbConn, // для транзакций с advisory-блокировкой
		activityRepo,
		profileRepo,
		playerRepo,
		emailService,
		wsHub,
		logger,
	)
	attendanceService := services.NewAttendanceService(attendanceRepo, activityRepo, playerRepo, profileRepo)
	logger.Info("Services initialized")

	// Планировщик напоминаний о завтрашних активностях
	go func() {
		ticker := time.NewTicker(reminderInterval)
		defer ticker.Stop()
		logger.Info("activity reminder scheduler started", slog.Duration("interval", reminderInterval))

		for range ticker.C {
			if err := activityService.SendUpcomingReminders(context.Background()); err != nil {
				logger.Error("scheduler: reminder run failed", slog.Any("error", err))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	profileHandler := handlers.NewProfileHandler(profileService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	teamHandler := handlers.NewTeamHandler(teamService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	activityHandler := handlers.NewActivityHandler(activityService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		profileHandler,
		categoryHandler,
		teamHandler,
		playerHandler,
		activityHandler,
		attendanceHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
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

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
