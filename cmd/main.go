package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"mandirdaan/docs"
	"mandirdaan/internal/analytics"
	"mandirdaan/internal/caching"
	"mandirdaan/internal/config"
	"mandirdaan/internal/handlers"
	"mandirdaan/internal/jobs"
	"mandirdaan/internal/jobs/background"
	"mandirdaan/internal/middleware"
	"mandirdaan/internal/repositories"
	"mandirdaan/internal/services"
	"mandirdaan/pkg/database"
	"mandirdaan/pkg/logger"
)

const version = "1.0.0"

// @title       Mandir Daan API
// @version     1.0
// @description Donation tracking for mandirs: pledges, receipts and reminders.
// @BasePath    /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, envFileLoaded, err := config.Load()
	if err != nil {
		logger.NewLogger(os.Getenv("APP_ENV")).Fatal("Failed to load config", err)
	}

	appLogger := logger.NewLogger(cfg.AppEnv)
	defer func() { _ = appLogger.Sync() }()

	if !envFileLoaded {
		appLogger.Warn(".env file not found, using process environment")
	}
	if cfg.JWTSecretGenerated {
		appLogger.Warn("JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}

	ctx := context.Background()

	if err := database.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		appLogger.Fatal("Failed to run migrations", err)
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer pool.Close()
	appLogger.Info("Database connected")

	// Cache service
	var cacheSvc caching.CacheService
	if cfg.Redis.Addr != "" {
		cacheSvc = caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := cacheSvc.Ping(ctx); err != nil {
			appLogger.Warn("Redis unreachable, caching and login limits will fail open", zap.Error(err))
		}
	} else {
		cacheSvc = caching.NewNoopCacheService()
		appLogger.Warn("REDIS_ADDR not set, caching disabled")
	}

	// Receipt storage is optional; without it receipts can still be downloaded.
	var receiptStorage services.ObjectStorage
	if minioSvc, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL); err != nil {
		appLogger.Warn("Failed to initialize MinIO client", zap.Error(err))
	} else {
		bucketCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := minioSvc.EnsureBucketExists(bucketCtx, cfg.Minio.ReceiptBucket)
		cancel()
		if err != nil {
			appLogger.Warn("Receipt bucket unavailable, publishing receipts is disabled", zap.Error(err), zap.String("bucket", cfg.Minio.ReceiptBucket))
		} else {
			receiptStorage = minioSvc
		}
	}

	// Create repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	donationRepo := repositories.NewDonationRepo(pool, cfg.ReceiptPrefix)

	// Create services
	authSvc := services.NewAuthService(userRepo, cacheSvc, cfg.JWTSecret, appLogger)
	userSvc := services.NewUserService(userRepo)
	tenantSvc := services.NewTenantService(tenantRepo)
	donationSvc := services.NewDonationService(donationRepo, cacheSvc, appLogger)
	receiptSvc := services.NewReceiptService(donationRepo, tenantRepo, receiptStorage, cfg.Minio.ReceiptBucket)
	analyticsSvc := analytics.NewAnalyticsService(donationRepo, cacheSvc, appLogger)
	smsChannel := services.NewNotificationChannel(cfg.Twilio, appLogger)
	appLogger.Info("SMS channel ready", zap.String("mode", smsChannel.Mode()))

	// Background jobs
	reminderJob := jobs.NewReminderJob(donationRepo, smsChannel, cfg.Reminder.AfterDays, appLogger)
	analyticsRefresh := jobs.NewAnalyticsRefreshService(tenantRepo, analyticsSvc, appLogger)
	scheduler, err := background.NewJobScheduler(cfg.Reminder, reminderJob, analyticsRefresh, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create job scheduler", err)
	}
	scheduler.Start()

	// Create handlers
	gate := middleware.NewGate(authSvc)
	routes := handlers.Handlers{
		Auth:      handlers.NewAuthHandlers(authSvc, userSvc, gate),
		Tenants:   handlers.NewTenantHandlers(tenantSvc),
		Donations: handlers.NewDonationHandlers(donationSvc, receiptSvc, analyticsSvc, gate),
		Health:    handlers.NewHealthHandlers(pool, cacheSvc, smsChannel.Mode(), receiptStorage != nil),
		Jobs:      handlers.NewJobHandlers(scheduler, gate),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(appLogger))

	docs.SwaggerInfo.Version = version
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", middleware.VersionHeader(middleware.APIVersion))
	handlers.RegisterRoutes(api, routes)

	go func() {
		appLogger.Info("Mandir Daan server starting", zap.String("version", version), zap.Int("port", cfg.Port))
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	if err := scheduler.Stop(); err != nil {
		appLogger.Error("Failed to stop job scheduler", err)
	}

	appLogger.Info("Server exiting")
}
