package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/quiz-assessment-service/internal/auth"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/cache"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/config"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/handlers"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/services"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/utils"
	"github.com/SAP-F-2025/quiz-assessment-service/internal/validator"
	"github.com/SAP-F-2025/quiz-assessment-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := pkg.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Redis only backs the class membership cache; run without it when down
	var cacheService cache.CacheService
	redisClient, err := pkg.NewRedisClient(context.Background(), cfg)
	if err != nil {
		logger.Warn("Redis unavailable, class membership cache disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, "quiz-assessment:", logger)
	}

	dispatcher, err := cfg.Events.CreateDispatcher(logger)
	if err != nil {
		logger.Error("Failed to create event dispatcher", "error", err)
		os.Exit(1)
	}

	serviceManager := services.NewServiceManager(services.ManagerConfig{
		Repository:    postgres.NewRepository(db),
		Cache:         cacheService,
		ClassCacheTTL: cfg.ClassCacheTTL,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Validator:     validator.New(),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	resolver := auth.NewCasdoorResolver(cfg.Casdoor, logger)
	handlers.NewHandlerManager(serviceManager, utils.NewSlogLogger(logger)).
		SetupRoutes(router, auth.Middleware(resolver))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		logger.Info("Quiz assessment service listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	// Flush queued notification events before the publisher closes
	if err := dispatcher.Close(ctx); err != nil {
		logger.Error("Event dispatcher shutdown failed", "error", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
