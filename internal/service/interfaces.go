package service

import (
	"context"

	"github.com/vidarx/recovery/internal/models"
)

// Recoverer recovers the outcome of a single timed-out transaction
type Recoverer interface {
	Recover(ctx context.Context, transactionID string) (*models.RecoveryResult, error)
}

// DuplicateFinder locates likely duplicate charges for a transaction
type DuplicateFinder interface {
	FindDuplicates(ctx context.Context, transactionID string) ([]models.DuplicateEntry, error)
}

// BulkRecoverer fans recovery out over many transactions
type BulkRecoverer interface {
	BulkRecover(ctx context.Context, transactionIDs []string) (*BulkSummary, error)
}

// Ensure concrete types implement interfaces
var (
	_ Recoverer       = (*RecoveryService)(nil)
	_ DuplicateFinder = (*DuplicateService)(nil)
	_ BulkRecoverer   = (*BulkService)(nil)
)
