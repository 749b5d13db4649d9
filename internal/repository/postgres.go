package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vidarx/recovery/internal/db"
	"github.com/vidarx/recovery/internal/models"
)

const transactionColumns = `
	id, customer_id, amount, currency, processor, status,
	ground_truth_state, created_at, recovered_state, recovered_at,
	processor_timestamp, notes
`

// postgresStore implements TransactionStore on Postgres
type postgresStore struct {
	db *db.DB
}

// NewPostgresStore creates a TransactionStore backed by Postgres
func NewPostgresStore(database *db.DB) TransactionStore {
	return &postgresStore{db: database}
}

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	var txn models.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.CustomerID,
		&txn.Amount,
		&txn.Currency,
		&txn.Processor,
		&txn.Status,
		&txn.GroundTruthState,
		&txn.CreatedAt,
		&txn.RecoveredState,
		&txn.RecoveredAt,
		&txn.ProcessorTimestamp,
		&txn.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// GetByID retrieves a transaction by its id
func (r *postgresStore) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`

	txn, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction by id: %w", err)
	}

	return txn, nil
}

// FindDuplicateCandidates returns same-customer transactions inside the
// amount and time window, excluding the target itself
func (r *postgresStore) FindDuplicateCandidates(ctx context.Context, customerID string,
	amountLow, amountHigh float64, timeLow, timeHigh time.Time,
	excludeID string) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE customer_id = $1
		  AND amount BETWEEN $2 AND $3
		  AND created_at BETWEEN $4 AND $5
		  AND id <> $6
	`

	rows, err := r.db.QueryContext(ctx, query,
		customerID, amountLow, amountHigh, timeLow, timeHigh, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query duplicate candidates: %w", err)
	}
	defer rows.Close() //nolint:errcheck // close error is not actionable

	var candidates []*models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan duplicate candidate: %w", err)
		}
		candidates = append(candidates, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate duplicate candidates: %w", err)
	}

	return candidates, nil
}

// PersistRecovery writes the recovered state onto the transaction row.
// The status column is deliberately left untouched.
func (r *postgresStore) PersistRecovery(ctx context.Context, id string,
	state models.CanonicalState, recoveredAt time.Time, processorTimestamp *string) error {
	query := `
		UPDATE transactions
		SET recovered_state = $2,
		    recovered_at = $3,
		    processor_timestamp = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, state, recoveredAt, processorTimestamp)
	if err != nil {
		return fmt.Errorf("failed to persist recovery: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Create inserts a new transaction
func (r *postgresStore) Create(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		txn.ID,
		txn.CustomerID,
		txn.Amount,
		txn.Currency,
		txn.Processor,
		txn.Status,
		txn.GroundTruthState,
		txn.CreatedAt,
		txn.RecoveredState,
		txn.RecoveredAt,
		txn.ProcessorTimestamp,
		txn.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// Count returns the number of stored transactions
func (r *postgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// Ping validates database connectivity
func (r *postgresStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
