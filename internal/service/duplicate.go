package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/vidarx/recovery/internal/models"
	"github.com/vidarx/recovery/internal/repository"
)

// Detection window and scoring calibration. The classification cutoffs are
// tunable constants, kept together so recalibration happens in one place.
const (
	duplicateWindow    = 10 * time.Minute
	amountTolerance    = 0.05 // ±5%, inclusive
	exactAmountEpsilon = 0.01 // differences below this count as exact

	scoreExactAmount   = 40
	scoreNearAmount    = 20
	scoreSameProcessor = 20
	scoreFastGap       = 30
	scoreMediumGap     = 20
	scoreSlowGap       = 10
	maxScore           = 100

	fastGapSeconds   = 120
	mediumGapSeconds = 300

	accidentalRetryMinScore = 80
	suspectedRetryMinScore  = 60
)

// DuplicateService finds likely duplicate charges among transactions close
// to a target in customer, amount, and time.
type DuplicateService struct {
	store  repository.TransactionStore
	logger *slog.Logger
}

// NewDuplicateService creates a DuplicateService
func NewDuplicateService(store repository.TransactionStore, logger *slog.Logger) *DuplicateService {
	return &DuplicateService{store: store, logger: logger}
}

// FindDuplicates returns suspected duplicates of the target transaction,
// sorted by confidence score descending. A target without a customer id
// has no detection basis and yields an empty list.
func (s *DuplicateService) FindDuplicates(ctx context.Context, transactionID string) ([]models.DuplicateEntry, error) {
	target, err := s.store.GetByID(ctx, transactionID)
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

	if target.CustomerID == nil {
		return []models.DuplicateEntry{}, nil
	}

	candidates, err := s.store.FindDuplicateCandidates(ctx,
		*target.CustomerID,
		target.Amount*(1-amountTolerance),
		target.Amount*(1+amountTolerance),
		target.CreatedAt.Add(-duplicateWindow),
		target.CreatedAt.Add(duplicateWindow),
		target.ID,
	)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to query duplicate candidates",
			Err:     err,
		}
	}

	entries := make([]models.DuplicateEntry, 0, len(candidates))
	for _, candidate := range candidates {
		gapSeconds := math.Abs(target.CreatedAt.Sub(candidate.CreatedAt).Seconds())
		sameProcessor := target.Processor == candidate.Processor
		score := confidenceScore(target, candidate, gapSeconds, sameProcessor)
		recommendation, reasoning := recommend(target, candidate)

		entries = append(entries, models.DuplicateEntry{
			TransactionID:   candidate.ID,
			ConfidenceScore: score,
			Type:            classify(score, gapSeconds, sameProcessor),
			TimeGapSeconds:  gapSeconds,
			Recommendation:  recommendation,
			Reasoning:       reasoning,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ConfidenceScore > entries[j].ConfidenceScore
	})

	return entries, nil
}

// confidenceScore is additive over amount closeness, processor match, and
// time gap, capped at 100. The candidate query already guarantees the
// amount is within tolerance.
func confidenceScore(target, candidate *models.Transaction, gapSeconds float64, sameProcessor bool) int {
	score := scoreNearAmount
	if math.Abs(target.Amount-candidate.Amount) < exactAmountEpsilon {
		score = scoreExactAmount
	}

	if sameProcessor {
		score += scoreSameProcessor
	}

	switch {
	case gapSeconds < fastGapSeconds:
		score += scoreFastGap
	case gapSeconds < mediumGapSeconds:
		score += scoreMediumGap
	default:
		score += scoreSlowGap
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

// classify types a pair. Accidental retries require all three signals:
// high confidence, a sub-2-minute gap, and the same processor.
func classify(score int, gapSeconds float64, sameProcessor bool) models.DuplicateType {
	if score >= accidentalRetryMinScore && gapSeconds < fastGapSeconds && sameProcessor {
		return models.DuplicateAccidentalRetry
	}
	if score >= suspectedRetryMinScore {
		return models.DuplicateSuspectedRetry
	}
	return models.DuplicateLikelyLegitimate
}

// recommend derives the disposition from the pair's effective states
// (recovered state when set, ground truth as proxy otherwise).
func recommend(target, candidate *models.Transaction) (models.DuplicateRecommendation, string) {
	tState := target.EffectiveState()
	cState := candidate.EffectiveState()

	switch {
	case tState == models.StateApproved && cState == models.StateApproved:
		// Keep the earlier transaction, refund the later; ties keep the target.
		if !candidate.CreatedAt.Before(target.CreatedAt) {
			return models.RecommendRefundDuplicate,
				fmt.Sprintf("Both approved. Keep %s (earlier). Refund %s.", target.ID, candidate.ID)
		}
		return models.RecommendRefundDuplicate,
			fmt.Sprintf("Both approved. Keep %s (earlier). Refund %s.", candidate.ID, target.ID)

	case tState == models.StateApproved && cState == models.StateUnknown:
		return models.RecommendMarkAsDuplicate,
			fmt.Sprintf("%s approved. %s is an unresolved duplicate.", target.ID, candidate.ID)

	case tState == models.StateUnknown && cState == models.StateApproved:
		return models.RecommendMarkAsDuplicate,
			fmt.Sprintf("%s approved. %s is an unresolved duplicate.", candidate.ID, target.ID)

	case tState == models.StateDeclined && cState == models.StateDeclined:
		return models.RecommendNoAction,
			"Both transactions declined. No duplicate charge occurred."

	case (tState == models.StateApproved && cState == models.StateDeclined) ||
		(tState == models.StateDeclined && cState == models.StateApproved):
		return models.RecommendNoAction,
			"Transactions have different outcomes. Not a duplicate charge."

	default:
		return models.RecommendManualReview,
			fmt.Sprintf("States: %s/%s. Manual review recommended.", tState, cState)
	}
}
