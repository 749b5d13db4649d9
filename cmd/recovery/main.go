package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vidarx/recovery/internal/config"
	"github.com/vidarx/recovery/internal/db"
	"github.com/vidarx/recovery/internal/handlers"
	"github.com/vidarx/recovery/internal/metrics"
	"github.com/vidarx/recovery/internal/processor"
	"github.com/vidarx/recovery/internal/repository"
	"github.com/vidarx/recovery/internal/seed"
	"github.com/vidarx/recovery/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting recovery api",
		"port", cfg.Server.Port,
		"storage", cfg.Recovery.Storage,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()

	var store repository.TransactionStore
	if cfg.Recovery.Storage == config.StoragePostgres {
		database, err := db.Connect(ctx, &cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}

		store = repository.NewPostgresStore(database)
	} else {
		store = repository.NewMemoryStore()
	}

	if cfg.Recovery.SeedOnEmpty {
		if err := seed.Run(ctx, store, logger); err != nil {
			logger.Error("failed to seed store", "error", err)
			os.Exit(1)
		}
	}

	metrics.Init()

	registry := processor.NewRegistry(cfg.Simulator)
	pool := worker.NewPool(cfg.Recovery.BulkWorkers)
	defer pool.Stop()

	router := handlers.NewRouter(store, registry, pool, cfg, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}
