package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vidarx/recovery/internal/config"
	"github.com/vidarx/recovery/internal/metrics"
	"github.com/vidarx/recovery/internal/models"
	"github.com/vidarx/recovery/internal/normalizer"
	"github.com/vidarx/recovery/internal/processor"
	"github.com/vidarx/recovery/internal/repository"
)

// RecoveryService orchestrates recovery of a single timed-out transaction:
// lookup, idempotency check, staleness check, processor query,
// normalization, recommendation, persistence.
type RecoveryService struct {
	store          repository.TransactionStore
	registry       processor.Registry
	logger         *slog.Logger
	now            func() time.Time
	locks          *keyedMutex
	staleThreshold time.Duration
}

// NewRecoveryService creates a RecoveryService
func NewRecoveryService(
	store repository.TransactionStore,
	registry processor.Registry,
	cfg config.RecoveryConfig,
	logger *slog.Logger,
) *RecoveryService {
	return &RecoveryService{
		store:          store,
		registry:       registry,
		logger:         logger,
		now:            time.Now,
		locks:          newKeyedMutex(),
		staleThreshold: cfg.StaleThreshold(),
	}
}

// Recover re-queries the transaction's processor and persists the recovered
// state. Transactions already resolved return a cached result without any
// processor call.
func (s *RecoveryService) Recover(ctx context.Context, transactionID string) (*models.RecoveryResult, error) {
	unlock := s.locks.lock(transactionID)
	defer unlock()

	txn, err := s.store.GetByID(ctx, transactionID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &ServiceError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("transaction %s not found", transactionID),
		}
	}
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to load transaction",
			Err:     err,
		}
	}

	if !txn.NeedsRecovery() {
		return cachedResult(txn), nil
	}

	adapter, ok := s.registry.Lookup(txn.Processor)
	if !ok {
		return nil, &ServiceError{
			Code:    ErrCodeUnknownProcessor,
			Message: fmt.Sprintf("unknown processor: %s", txn.Processor),
		}
	}

	// Staleness is decided before the processor call but never skips it:
	// the raw response is still wanted for audit, only the recommendation
	// is overridden.
	staleWarning := s.staleWarning(txn)

	raw, err := adapter.QueryTransaction(ctx, txn.ID, txn.GroundTruthState)
	if err != nil {
		metrics.ProcessorErrorsTotal.WithLabelValues(txn.Processor).Inc()
		s.logger.Warn("processor query failed",
			"transaction_id", txn.ID,
			"processor", txn.Processor,
			"error", err,
		)
		return nil, &ServiceError{
			Code:    ErrCodeProcessorError,
			Message: fmt.Sprintf("processor %s query failed", txn.Processor),
			Err:     err,
		}
	}

	normalized, err := normalizer.Normalize(txn.Processor, raw)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeUnknownProcessor,
			Message: err.Error(),
		}
	}

	recoveredAt := s.now().UTC()

	var recommendedAction models.RecommendedAction
	var nextRetryAt *time.Time
	if staleWarning != "" {
		recommendedAction = models.ActionManualReview
	} else {
		recommendedAction = normalizer.RecommendedAction(normalized.State)
		nextRetryAt = normalizer.NextRetryAt(txn.Processor, normalized.State, recoveredAt)
	}

	// Status stays "unknown": it records that the transaction originally
	// timed out, while recovered_state carries the resolved outcome.
	if err := s.store.PersistRecovery(ctx, txn.ID, normalized.State, recoveredAt, normalized.ProcessorTimestamp); err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to persist recovery",
			Err:     err,
		}
	}

	metrics.RecoveriesTotal.WithLabelValues(string(normalized.State)).Inc()
	s.logger.Info("transaction recovered",
		"transaction_id", txn.ID,
		"processor", txn.Processor,
		"recovered_state", normalized.State,
		"stale", staleWarning != "",
	)

	return &models.RecoveryResult{
		TransactionID:      txn.ID,
		OriginalStatus:     models.StatusUnknown,
		RecoveredState:     normalized.State,
		ProcessorTimestamp: normalized.ProcessorTimestamp,
		RecommendedAction:  recommendedAction,
		NextRetryAt:        nextRetryAt,
		StaleWarning:       staleWarning,
		RawResponse:        raw,
		RecoveredAt:        recoveredAt,
	}, nil
}

// staleWarning returns the warning text for transactions older than the
// threshold, or "". The boundary is exclusive: a transaction exactly at the
// threshold is still fresh.
func (s *RecoveryService) staleWarning(txn *models.Transaction) string {
	age := s.now().Sub(txn.CreatedAt)
	if age <= s.staleThreshold {
		return ""
	}
	ageDays := int(age.Hours() / 24)
	thresholdDays := int(s.staleThreshold.Hours() / 24)
	return fmt.Sprintf(
		"Transaction is %d days old (threshold: %d days). "+
			"Processor response may not reflect the original payment state. "+
			"Manual verification with the processor is strongly recommended.",
		ageDays, thresholdDays,
	)
}

// cachedResult rebuilds a RecoveryResult from the persisted fields of an
// already-resolved transaction.
func cachedResult(txn *models.Transaction) *models.RecoveryResult {
	state := models.CanonicalState(txn.Status)
	if txn.RecoveredState != nil {
		state = *txn.RecoveredState
	}

	recoveredAt := txn.CreatedAt
	if txn.RecoveredAt != nil {
		recoveredAt = *txn.RecoveredAt
	}

	return &models.RecoveryResult{
		TransactionID:      txn.ID,
		OriginalStatus:     txn.Status,
		RecoveredState:     state,
		ProcessorTimestamp: txn.ProcessorTimestamp,
		RecommendedAction:  normalizer.RecommendedAction(state),
		RawResponse:        map[string]any{"cached": true, "status": string(state)},
		RecoveredAt:        recoveredAt,
	}
}
