package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vidarx/recovery/internal/config"
	"github.com/vidarx/recovery/internal/metrics"
	"github.com/vidarx/recovery/internal/processor"
	"github.com/vidarx/recovery/internal/repository"
	"github.com/vidarx/recovery/internal/service"
	"github.com/vidarx/recovery/internal/worker"
)

// NewRouter creates and configures the HTTP router with all routes and
// middleware.
func NewRouter(
	store repository.TransactionStore,
	registry processor.Registry,
	pool *worker.Pool,
	cfg *config.Config,
	logger *slog.Logger,
) http.Handler {
	recoveryService := service.NewRecoveryService(store, registry, cfg.Recovery, logger)
	duplicateService := service.NewDuplicateService(store, logger)
	bulkService := service.NewBulkService(recoveryService, duplicateService, store, pool, logger)

	handler := NewHandler(recoveryService, duplicateService, bulkService, store, store, logger)

	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(httpMetrics)

	r.Get("/health", handler.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1/transactions", func(r chi.Router) {
		r.Post("/bulk-recover", handler.BulkRecover)
		r.Get("/{transactionID}", handler.GetTransaction)
		r.Post("/{transactionID}/recover", handler.Recover)
		r.Get("/{transactionID}/duplicates", handler.Duplicates)
	})

	return r
}
