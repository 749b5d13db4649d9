// Package seed generates a realistic transaction dataset for development
// and demos: a base population across all processors and currencies, a
// handful of duplicate clusters, and edge cases (stale rows, null customer
// ids, odd currencies).
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vidarx/recovery/internal/models"
	"github.com/vidarx/recovery/internal/processor"
	"github.com/vidarx/recovery/internal/repository"
)

var processors = []string{
	processor.BancoSur,
	processor.MexPay,
	processor.AndesPSP,
	processor.CashVoucher,
}

var currencies = []string{"MXN", "COP", "CLP"}

// Ground-truth distribution: 60% approved, 25% declined, 10% pending,
// 5% unknown.
var groundTruthStates = buildStateDistribution()

func buildStateDistribution() []models.CanonicalState {
	var states []models.CanonicalState
	add := func(state models.CanonicalState, n int) {
		for i := 0; i < n; i++ {
			states = append(states, state)
		}
	}
	add(models.StateApproved, 60)
	add(models.StateDeclined, 25)
	add(models.StatePending, 10)
	add(models.StateUnknown, 5)
	return states
}

// NewTransactionID returns an id in the txn_<8 hex> form
func NewTransactionID() string {
	return "txn_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Generate builds the seed dataset. The rng seed makes the dataset
// reproducible per run.
func Generate(rngSeed int64, now time.Time) []*models.Transaction {
	rng := rand.New(rand.NewSource(rngSeed))
	baseTime := now.Add(-96 * time.Hour)

	var txns []*models.Transaction

	make_ := func(customerID *string, amount float64, currency, proc string,
		state models.CanonicalState, createdAt time.Time, notes string) *models.Transaction {
		var notesPtr *string
		if notes != "" {
			notesPtr = &notes
		}
		return &models.Transaction{
			ID:               NewTransactionID(),
			CustomerID:       customerID,
			Amount:           round2(amount),
			Currency:         currency,
			Processor:        proc,
			Status:           models.StatusUnknown,
			GroundTruthState: state,
			CreatedAt:        createdAt,
			Notes:            notesPtr,
		}
	}

	strPtr := func(s string) *string { return &s }

	// Base population
	for i := 0; i < 120; i++ {
		customer := fmt.Sprintf("cust_%04d", rng.Intn(60)+1)
		txns = append(txns, make_(
			&customer,
			100+rng.Float64()*49900,
			currencies[rng.Intn(len(currencies))],
			processors[rng.Intn(len(processors))],
			groundTruthStates[rng.Intn(len(groundTruthStates))],
			baseTime.Add(time.Duration(rng.Float64()*72*float64(time.Hour))),
			"",
		))
	}

	// Accidental retry clusters: identical context, same processor,
	// duplicates within five minutes
	for i := 0; i < 10; i++ {
		customer := fmt.Sprintf("cust_dup_%03d", i)
		amount := 500 + rng.Float64()*19500
		currency := currencies[rng.Intn(len(currencies))]
		proc := processors[rng.Intn(len(processors))]
		clusterTime := baseTime.Add(time.Duration(rng.Float64() * 48 * float64(time.Hour)))

		n := 2 + rng.Intn(2)
		for j := 0; j < n; j++ {
			state := models.StateApproved
			if j > 0 && rng.Intn(2) == 0 {
				state = models.StateUnknown
			}
			createdAt := clusterTime.Add(time.Duration(rng.Intn(280)*j) * time.Second)
			txns = append(txns, make_(
				&customer, amount, currency, proc, state, createdAt,
				fmt.Sprintf("accidental_retry_cluster_%d", i),
			))
		}
	}

	// Legitimate same-price clusters: same amount, different processors
	for i := 0; i < 5; i++ {
		customer := fmt.Sprintf("cust_legit_%03d", i)
		amount := 1000 + rng.Float64()*4000
		currency := currencies[rng.Intn(len(currencies))]
		clusterTime := baseTime.Add(time.Duration(rng.Float64() * 48 * float64(time.Hour)))

		for j := 0; j < 2; j++ {
			createdAt := clusterTime.Add(time.Duration((60+rng.Intn(180))*j) * time.Second)
			txns = append(txns, make_(
				&customer, amount, currency,
				processors[rng.Intn(len(processors))],
				models.StateApproved, createdAt,
				fmt.Sprintf("legit_same_price_cluster_%d", i),
			))
		}
	}

	// Stale transactions, older than the recovery threshold
	for i := 0; i < 5; i++ {
		txns = append(txns, make_(
			strPtr(fmt.Sprintf("cust_%04d", rng.Intn(60)+1)),
			100+rng.Float64()*9900,
			currencies[rng.Intn(len(currencies))],
			processors[rng.Intn(len(processors))],
			groundTruthStates[rng.Intn(len(groundTruthStates))],
			now.AddDate(0, 0, -(31+rng.Intn(60))),
			"stale_transaction",
		))
	}

	// Unusual currency for this system
	for i := 0; i < 3; i++ {
		txns = append(txns, make_(
			strPtr(fmt.Sprintf("cust_%04d", rng.Intn(60)+1)),
			100+rng.Float64()*9900,
			"USD",
			processors[rng.Intn(len(processors))],
			groundTruthStates[rng.Intn(len(groundTruthStates))],
			baseTime.Add(time.Duration(rng.Float64()*24*float64(time.Hour))),
			"mismatched_currency",
		))
	}

	// No customer identity: duplicate detection has nothing to go on
	for i := 0; i < 4; i++ {
		txns = append(txns, make_(
			nil,
			100+rng.Float64()*9900,
			currencies[rng.Intn(len(currencies))],
			processors[rng.Intn(len(processors))],
			groundTruthStates[rng.Intn(len(groundTruthStates))],
			baseTime.Add(time.Duration(rng.Float64()*24*float64(time.Hour))),
			"null_customer_id",
		))
	}

	return txns
}

// Run seeds the store if it is empty
func Run(ctx context.Context, store repository.TransactionStore, logger *slog.Logger) error {
	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count transactions: %w", err)
	}
	if count > 0 {
		logger.Info("store already populated, skipping seed", "count", count)
		return nil
	}

	txns := Generate(42, time.Now().UTC())
	for _, txn := range txns {
		if err := store.Create(ctx, txn); err != nil {
			return fmt.Errorf("failed to seed transaction %s: %w", txn.ID, err)
		}
	}

	logger.Info("seeded transactions", "count", len(txns))
	return nil
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}
