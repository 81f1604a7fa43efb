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

	"github.com/Dosada05/padel-club/brackets"
	"github.com/Dosada05/padel-club/config"
	"github.com/Dosada05/padel-club/db"
	"github.com/Dosada05/padel-club/handlers"
	"github.com/Dosada05/padel-club/payments"
	"github.com/Dosada05/padel-club/repositories"
	"github.com/Dosada05/padel-club/repositories/memstore"
	api "github.com/Dosada05/padel-club/routes"
	"github.com/Dosada05/padel-club/services"
	"github.com/Dosada05/padel-club/storage"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("db_driver", cfg.DBDriver))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Хранилище: Postgres при заданном DATABASE_URL, иначе память
	var store repositories.Store
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DBDriver, cfg.DatabaseURL, 5*time.Second, logger)
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
		if err := db.Migrate(ctx, dbConn, logger); err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		store = repositories.NewPostgresStore(dbConn, logger)
		logger.Info("database connection established")
	} else {
		store = memstore.New()
		logger.Warn("DATABASE_URL is not set, using in-memory store")
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	var notifier brackets.Notifier = wsHub
	if cfg.RedisURL != "" {
		relay, err := brackets.NewRedisRelay(cfg.RedisURL, wsHub, logger)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer relay.Close()
		go relay.Run(ctx)
		notifier = relay
		logger.Info("Redis realtime relay started")
	}
	logger.Info("WebSocket Hub started")

	// Архив отчётов о выплатах (Cloudflare R2)
	var archiver *storage.ReportArchiver
	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if r2Config.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, r2Config)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = storage.NewReportArchiver(uploader)
		logger.Info("Cloudflare R2 uploader initialized")
	}

	// Платёжный провайдер
	var provider payments.Provider = payments.NewDisabledProvider()
	var webhookParser payments.WebhookParser
	if cfg.StripeSecretKey != "" {
		stripeProvider := payments.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		provider = stripeProvider
		if cfg.StripeWebhookSecret != "" {
			webhookParser = stripeProvider
		}
		logger.Info("Stripe provider initialized")
	} else {
		logger.Warn("STRIPE_SECRET_KEY is not set, club transfers are disabled")
	}

	// Инициализация сервисов
	authService := services.NewAuthService(store.Users(), logger)
	adminService := services.NewAdminService(store, logger)
	tournamentService := services.NewTournamentService(store, notifier, logger)
	bookingService := services.NewBookingService(store, notifier, logger)
	transferService := services.NewTransferService(store, provider, archiver, services.TransferConfig{
		Currency:    cfg.PayoutCurrency,
		Concurrency: cfg.TransferConcurrency,
	}, logger)
	logger.Info("Services initialized")

	if cfg.AdminEmail != "" {
		if _, err := authService.BootstrapAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error("failed to bootstrap admin", slog.Any("error", err))
			os.Exit(1)
		}
	}

	var webhookHandler *handlers.WebhookHandler
	if webhookParser != nil {
		webhookHandler = handlers.NewWebhookHandler(webhookParser, bookingService, logger)
	}

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Admin:      handlers.NewAdminHandler(adminService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Booking:    handlers.NewBookingHandler(bookingService),
		Transfer:   handlers.NewTransferHandler(transferService),
		Webhook:    webhookHandler,
		WebSocket:  handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
	}, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})
	logger.Info("Routes configured")

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		logger.Info("starting in Lambda mode")
		adapter := httpadapter.New(router)
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
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
		}
		logger.Info("server stopped gracefully")
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
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
