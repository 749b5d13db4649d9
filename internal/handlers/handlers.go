// Package handlers implements HTTP handlers for the recovery API.
package handlers

import (
	"context"
	"log/slog"

	"github.com/vidarx/recovery/internal/repository"
	"github.com/vidarx/recovery/internal/service"
)

// HealthChecker validates system health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler holds the service dependencies for all endpoints
type Handler struct {
	recoveryService  service.Recoverer
	duplicateService service.DuplicateFinder
	bulkService      service.BulkRecoverer
	store            repository.TransactionStore
	healthChecker    HealthChecker
	logger           *slog.Logger
}

// NewHandler creates a new Handler with injected service dependencies.
func NewHandler(
	recoveryService service.Recoverer,
	duplicateService service.DuplicateFinder,
	bulkService service.BulkRecoverer,
	store repository.TransactionStore,
	healthChecker HealthChecker,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		recoveryService:  recoveryService,
		duplicateService: duplicateService,
		bulkService:      bulkService,
		store:            store,
		healthChecker:    healthChecker,
		logger:           logger,
	}
}
