package service

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vidarx/recovery/internal/config"
	"github.com/vidarx/recovery/internal/models"
	"github.com/vidarx/recovery/internal/processor"
	"github.com/vidarx/recovery/internal/repository"
)

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecoveryConfig() config.RecoveryConfig {
	return config.RecoveryConfig{
		Storage:            config.StorageMemory,
		StaleThresholdDays: 30,
		BulkWorkers:        4,
	}
}

// quietRegistry returns all four simulators with latency and synthetic
// failures turned off.
func quietRegistry() processor.Registry {
	return processor.NewRegistry(config.SimulatorConfig{})
}

// stubAdapter counts calls and returns a fixed response or error
type stubAdapter struct {
	raw   map[string]any
	err   error
	name  string
	calls atomic.Int32
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) QueryTransaction(_ context.Context, _ string,
	_ models.CanonicalState) (map[string]any, error) {
	a.calls.Add(1)
	if a.err != nil {
		return nil, a.err
	}
	return a.raw, nil
}

type txnOptions struct {
	customerID *string
	created    time.Time
	status     string
	processor  string
	truth      models.CanonicalState
	amount     float64
	currency   string
}

func defaultTxnOptions() txnOptions {
	customer := "cust_1"
	return txnOptions{
		customerID: &customer,
		created:    baseTime,
		status:     models.StatusUnknown,
		processor:  processor.BancoSur,
		truth:      models.StateApproved,
		amount:     1000,
		currency:   "MXN",
	}
}

func seedTxn(t *testing.T, store repository.TransactionStore, id string,
	modify ...func(*txnOptions)) *models.Transaction {
	t.Helper()

	opts := defaultTxnOptions()
	for _, m := range modify {
		m(&opts)
	}

	txn := &models.Transaction{
		ID:               id,
		CustomerID:       opts.customerID,
		Amount:           opts.amount,
		Currency:         opts.currency,
		Processor:        opts.processor,
		Status:           opts.status,
		GroundTruthState: opts.truth,
		CreatedAt:        opts.created,
	}
	require.NoError(t, store.Create(context.Background(), txn))
	return txn
}

func strPtr(s string) *string { return &s }
