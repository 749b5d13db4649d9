package service

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/vidarx/recovery/internal/metrics"
	"github.com/vidarx/recovery/internal/models"
	"github.com/vidarx/recovery/internal/repository"
	"github.com/vidarx/recovery/internal/worker"
)

// MaxBulkTransactions bounds one bulk-recover request
const MaxBulkTransactions = 500

// BulkCounts tallies recovery outcomes by canonical state
type BulkCounts struct {
	Approved     int
	Declined     int
	Pending      int
	StillUnknown int
	Errors       int
}

// FailedTransaction records one isolated per-item failure
type FailedTransaction struct {
	TransactionID string
	Error         string
}

// BulkSummary aggregates a bulk recovery batch
type BulkSummary struct {
	RefundCurrencyBreakdown map[string]float64
	Results                 []*models.RecoveryResult
	Failed                  []FailedTransaction
	Counts                  BulkCounts
	TotalProcessed          int
	DuplicatesDetected      int
	TotalRecommendedRefund  float64
	ProcessingTime          time.Duration
}

// BulkService fans recovery out across many transactions concurrently,
// isolating per-item failures, then aggregates counts and refund totals.
type BulkService struct {
	recovery   Recoverer
	duplicates DuplicateFinder
	store      repository.TransactionStore
	pool       *worker.Pool
	logger     *slog.Logger
}

// NewBulkService creates a BulkService running on the given worker pool
func NewBulkService(
	recovery Recoverer,
	duplicates DuplicateFinder,
	store repository.TransactionStore,
	pool *worker.Pool,
	logger *slog.Logger,
) *BulkService {
	return &BulkService{
		recovery:   recovery,
		duplicates: duplicates,
		store:      store,
		pool:       pool,
		logger:     logger,
	}
}

type bulkOutcome struct {
	result *models.RecoveryResult
	err    error
}

// BulkRecover recovers every transaction in the list. One failure never
// aborts the batch; results keep the order of the input ids.
func (s *BulkService) BulkRecover(ctx context.Context, transactionIDs []string) (*BulkSummary, error) {
	start := time.Now()

	// Fan out: one outcome slot per input position, filled regardless of
	// completion order.
	outcomes := make([]bulkOutcome, len(transactionIDs))
	var wg sync.WaitGroup
	for i, id := range transactionIDs {
		i, id := i, id // per-iteration copies: go directive is below 1.22
		wg.Add(1)
		s.pool.Submit(func() {
			defer wg.Done()
			result, err := s.recovery.Recover(ctx, id)
			outcomes[i] = bulkOutcome{result: result, err: err}
		})
	}
	wg.Wait()

	summary := &BulkSummary{
		TotalProcessed:          len(transactionIDs),
		RefundCurrencyBreakdown: make(map[string]float64),
		Results:                 make([]*models.RecoveryResult, 0, len(transactionIDs)),
		Failed:                  []FailedTransaction{},
	}

	seenPairs := make(map[[2]string]struct{})

	for i, id := range transactionIDs {
		outcome := outcomes[i]
		if outcome.err != nil {
			summary.Counts.Errors++
			summary.Failed = append(summary.Failed, FailedTransaction{
				TransactionID: id,
				Error:         outcome.err.Error(),
			})
			continue
		}

		switch outcome.result.RecoveredState {
		case models.StateApproved:
			summary.Counts.Approved++
		case models.StateDeclined:
			summary.Counts.Declined++
		case models.StatePending:
			summary.Counts.Pending++
		default:
			summary.Counts.StillUnknown++
		}

		summary.Results = append(summary.Results, outcome.result)

		s.tallyDuplicates(ctx, outcome.result.TransactionID, seenPairs, summary)
	}

	summary.TotalRecommendedRefund = round2(summary.TotalRecommendedRefund)
	for currency, amount := range summary.RefundCurrencyBreakdown {
		summary.RefundCurrencyBreakdown[currency] = round2(amount)
	}

	summary.ProcessingTime = time.Since(start)
	s.logger.Info("bulk recovery finished",
		"total", summary.TotalProcessed,
		"errors", summary.Counts.Errors,
		"duplicates", summary.DuplicatesDetected,
		"elapsed_ms", summary.ProcessingTime.Milliseconds(),
	)

	return summary, nil
}

// tallyDuplicates runs duplicate detection for one recovered transaction
// and folds the findings into the summary. Each unordered pair counts once
// across the whole batch, no matter from which side it is seen first.
// Detection failures are logged and skipped, never a batch error.
func (s *BulkService) tallyDuplicates(ctx context.Context, transactionID string,
	seenPairs map[[2]string]struct{}, summary *BulkSummary) {
	entries, err := s.duplicates.FindDuplicates(ctx, transactionID)
	if err != nil {
		s.logger.Warn("duplicate detection failed during bulk recovery",
			"transaction_id", transactionID,
			"error", err,
		)
		return
	}
	if len(entries) == 0 {
		return
	}

	txn, err := s.store.GetByID(ctx, transactionID)
	if err != nil {
		s.logger.Warn("failed to reload transaction for refund tallying",
			"transaction_id", transactionID,
			"error", err,
		)
		return
	}

	for _, entry := range entries {
		pair := pairKey(transactionID, entry.TransactionID)
		if _, seen := seenPairs[pair]; seen {
			continue
		}
		seenPairs[pair] = struct{}{}
		summary.DuplicatesDetected++
		metrics.DuplicatePairsTotal.Inc()

		if entry.Recommendation == models.RecommendRefundDuplicate {
			summary.TotalRecommendedRefund += txn.Amount
			summary.RefundCurrencyBreakdown[txn.Currency] += txn.Amount
		}
	}
}

func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
