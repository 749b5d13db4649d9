package db

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id                  TEXT PRIMARY KEY,
	customer_id         TEXT,
	amount              DOUBLE PRECISION NOT NULL CHECK (amount > 0),
	currency            CHAR(3) NOT NULL,
	processor           TEXT NOT NULL,
	status              TEXT NOT NULL DEFAULT 'unknown',
	ground_truth_state  TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL,
	recovered_state     TEXT,
	recovered_at        TIMESTAMPTZ,
	processor_timestamp TEXT,
	notes               TEXT
);

CREATE INDEX IF NOT EXISTS idx_transactions_customer_created
	ON transactions (customer_id, created_at);
`

// Migrate creates the transactions schema if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	db.logger.Info("running schema migration")
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run schema migration: %w", err)
	}
	return nil
}
