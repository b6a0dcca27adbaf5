package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/pdinteriors/catalog-service/config"
	"github.com/pdinteriors/catalog-service/internal/auth"
	authH "github.com/pdinteriors/catalog-service/internal/auth/handler"
	"github.com/pdinteriors/catalog-service/internal/pkg/blob"
	"github.com/pdinteriors/catalog-service/internal/pkg/cache"
	"github.com/pdinteriors/catalog-service/internal/pkg/database/postgres"
	"github.com/pdinteriors/catalog-service/internal/pkg/logger"
	"github.com/pdinteriors/catalog-service/internal/pkg/search"
	prodH "github.com/pdinteriors/catalog-service/internal/product/handler"
	prodRepoPkg "github.com/pdinteriors/catalog-service/internal/product/repository"
	prodUCPkg "github.com/pdinteriors/catalog-service/internal/product/usecase"
	"github.com/pdinteriors/catalog-service/internal/schedule"
	schedH "github.com/pdinteriors/catalog-service/internal/schedule/handler"
	schedUCPkg "github.com/pdinteriors/catalog-service/internal/schedule/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		File:              cfg.Logger.File,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Redis (search caching disabled)", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 5. Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (search falls back to the database)", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 6. Blob storage
	blobStore, err := blob.NewLocal(cfg.Blob.Dir, cfg.Blob.BaseURL)
	if err != nil {
		appLogger.Fatal("Could not initialize blob storage", zap.Error(err))
	}

	// 7. Repositories, usecases, handlers
	prodRepo := prodRepoPkg.NewPGRepository(db)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, redisClient, esClient, appLogger)

	schedUC := schedUCPkg.NewScheduleUseCase(
		prodRepo,
		schedule.NewHTTPImageFetcher(),
		&schedule.FileTemplateSource{Path: cfg.Template.Path},
		appLogger,
	)

	sessions := auth.NewSessions(sessionSecret(cfg), time.Duration(cfg.Admin.SessionTTL)*time.Hour)

	productHandler := prodH.NewProductHandler(prodUC, blobStore, appLogger)
	scheduleHandler := schedH.NewScheduleHandler(schedUC, appLogger)
	authHandler := authH.NewAuthHandler(sessions, authH.Credentials{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	}, cfg.Server.AppEnv == "production", appLogger)

	// 8. HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.Static("/blobs", cfg.Blob.Dir)

	api := e.Group("/api/admin")
	authHandler.Register(api)

	protected := api.Group("", auth.Middleware(sessions))
	protected.GET("/session", authHandler.Session)
	productHandler.Register(protected)
	scheduleHandler.Register(protected)

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	go func() {
		if err := e.Start(port); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()
	appLogger.Info("Starting HTTP server", zap.String("port", port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func sessionSecret(cfg *config.Config) string {
	if cfg.Admin.SessionSecret != "" {
		return cfg.Admin.SessionSecret
	}
	if cfg.Admin.Password != "" {
		return cfg.Admin.Password
	}
	return cfg.Admin.Username
}
