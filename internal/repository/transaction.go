// Package repository provides data access layer implementations for the
// recovery API.
package repository

import (
	"context"
	"time"

	"github.com/vidarx/recovery/internal/models"
)

// TransactionStore defines the interface for transaction data access
type TransactionStore interface {
	// GetByID retrieves a transaction by id, models.ErrNotFound on miss.
	GetByID(ctx context.Context, id string) (*models.Transaction, error)

	// FindDuplicateCandidates returns all transactions other than excludeID
	// belonging to customerID whose amount and creation time fall within the
	// given inclusive bounds.
	FindDuplicateCandidates(ctx context.Context, customerID string,
		amountLow, amountHigh float64, timeLow, timeHigh time.Time,
		excludeID string) ([]*models.Transaction, error)

	// PersistRecovery atomically writes the recovery outcome onto the
	// transaction row. The status column is not touched.
	PersistRecovery(ctx context.Context, id string, state models.CanonicalState,
		recoveredAt time.Time, processorTimestamp *string) error

	// Create inserts a new transaction.
	Create(ctx context.Context, txn *models.Transaction) error

	// Count returns the number of stored transactions.
	Count(ctx context.Context) (int, error)

	// Ping validates connectivity to the underlying storage.
	Ping(ctx context.Context) error
}
