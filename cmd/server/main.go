package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"merithub/internal/cache"
	"merithub/internal/config"
	"merithub/internal/database"
	"merithub/internal/events"
	"merithub/internal/router"
	"merithub/internal/scheduler"
	"merithub/internal/services"

	"go.uber.org/zap"
)

func main() {
	logger, err := initLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger.Info("Starting merithub badge engine")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Database
	dbManager, err := database.NewManager(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	health := dbManager.Health(ctx)
	cancel()
	if health.Status == database.StatusUnhealthy {
		logger.Fatal("Database is not healthy",
			zap.String("status", health.Status),
			zap.Strings("errors", health.Errors),
		)
	}
	logger.Info("Database health check passed", zap.String("status", health.Status))

	// Cache
	appCache, err := cache.NewCache(&cfg.Cache, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer appCache.Close()

	// Event bus
	bus := events.NewEventBus(events.DefaultEventBusConfig(), logger)
	busCtx := context.Background()
	if err := bus.Start(busCtx); err != nil {
		logger.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Service graph; registers the badge catalog into the ledger.
	serviceCollection, err := services.NewServiceCollection(dbManager, appCache, bus, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	// Sweep scheduler
	sched := scheduler.New(
		serviceCollection.Badge,
		serviceCollection.Content,
		bus,
		&cfg.Badges,
		logger,
	)
	if err := sched.Start(busCtx); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Ops HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(serviceCollection, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Ops server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	sched.Stop()
	if err := bus.Stop(shutdownCtx); err != nil {
		logger.Error("Event bus shutdown failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

// initLogger initializes the structured logger based on environment
func initLogger() (*zap.Logger, error) {
	env := os.Getenv("GO_ENV")
	var config zap.Config

	switch env {
	case "production":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "staging":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
