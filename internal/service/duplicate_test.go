package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidarx/recovery/internal/models"
	"github.com/vidarx/recovery/internal/processor"
	"github.com/vidarx/recovery/internal/repository"
)

func TestFindDuplicates_DetectionCriteria(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*txnOptions)
		expected bool
	}{
		{
			name:     "same amount 30s later is detected",
			modify:   func(o *txnOptions) { o.created = baseTime.Add(30 * time.Second) },
			expected: true,
		},
		{
			name:     "4 percent higher amount is detected",
			modify:   func(o *txnOptions) { o.amount = 1040 },
			expected: true,
		},
		{
			name:     "6 percent higher amount is outside tolerance",
			modify:   func(o *txnOptions) { o.amount = 1060 },
			expected: false,
		},
		{
			name:     "11 minutes later is outside the window",
			modify:   func(o *txnOptions) { o.created = baseTime.Add(11 * time.Minute) },
			expected: false,
		},
		{
			name:     "exactly 10 minutes later is inside the window",
			modify:   func(o *txnOptions) { o.created = baseTime.Add(10 * time.Minute) },
			expected: true,
		},
		{
			name:     "different customer is never a duplicate",
			modify:   func(o *txnOptions) { o.customerID = strPtr("cust_2") },
			expected: false,
		},
		{
			name: "different processor still matches",
			modify: func(o *txnOptions) {
				o.processor = processor.MexPay
				o.created = baseTime.Add(time.Minute)
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repository.NewMemoryStore()
			seedTxn(t, store, "txn_a")
			seedTxn(t, store, "txn_b", tt.modify)
			svc := NewDuplicateService(store, testLogger())

			entries, err := svc.FindDuplicates(context.Background(), "txn_a")
			require.NoError(t, err)

			if tt.expected {
				require.Len(t, entries, 1)
				assert.Equal(t, "txn_b", entries[0].TransactionID)
			} else {
				assert.Empty(t, entries)
			}
		})
	}
}

func TestFindDuplicates_ExcludesTarget(t *testing.T) {
	store := repository.NewMemoryStore()
	seedTxn(t, store, "txn_a")
	svc := NewDuplicateService(store, testLogger())

	entries, err := svc.FindDuplicates(context.Background(), "txn_a")
	require.NoError(t, err)
	assert.Empty(t, entries, "a transaction is not its own duplicate")
}

func TestFindDuplicates_NoCustomerID(t *testing.T) {
	store := repository.NewMemoryStore()
	seedTxn(t, store, "txn_a", func(o *txnOptions) { o.customerID = nil })
	svc := NewDuplicateService(store, testLogger())

	entries, err := svc.FindDuplicates(context.Background(), "txn_a")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFindDuplicates_NotFound(t *testing.T) {
	svc := NewDuplicateService(repository.NewMemoryStore(), testLogger())

	_, err := svc.FindDuplicates(context.Background(), "txn_missing")
	require.Error(t, err)

	svcErr := &ServiceError{}
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, ErrCodeNotFound, svcErr.Code)
}

func TestFindDuplicates_EntryFields(t *testing.T) {
	store := repository.NewMemoryStore()
	seedTxn(t, store, "txn_a")
	seedTxn(t, store, "txn_b", func(o *txnOptions) {
		o.created = baseTime.Add(30 * time.Second)
	})
	svc := NewDuplicateService(store, testLogger())

	entries, err := svc.FindDuplicates(context.Background(), "txn_a")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	// exact amount (40) + same processor (20) + 30s gap (30)
	assert.Equal(t, 90, entry.ConfidenceScore)
	assert.Equal(t, models.DuplicateAccidentalRetry, entry.Type)
	assert.Equal(t, float64(30), entry.TimeGapSeconds)
	assert.Equal(t, models.RecommendRefundDuplicate, entry.Recommendation)
	assert.Equal(t, "Both approved. Keep txn_a (earlier). Refund txn_b.", entry.Reasoning)
}

func TestFindDuplicates_SortedByScoreDescending(t *testing.T) {
	store := repository.NewMemoryStore()
	seedTxn(t, store, "txn_a")
	// weaker match: near amount, different processor, slow gap
	seedTxn(t, store, "txn_weak", func(o *txnOptions) {
		o.amount = 1030
		o.processor = processor.MexPay
		o.created = baseTime.Add(8 * time.Minute)
	})
	// stronger match: exact amount, same processor, fast gap
	seedTxn(t, store, "txn_strong", func(o *txnOptions) {
		o.created = baseTime.Add(45 * time.Second)
	})
	svc := NewDuplicateService(store, testLogger())

	entries, err := svc.FindDuplicates(context.Background(), "txn_a")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "txn_strong", entries[0].TransactionID)
	assert.Equal(t, 90, entries[0].ConfidenceScore)
	assert.Equal(t, "txn_weak", entries[1].TransactionID)
	assert.Equal(t, 30, entries[1].ConfidenceScore)
	assert.Equal(t, models.DuplicateLikelyLegitimate, entries[1].Type)
}

func TestConfidenceScore(t *testing.T) {
	base := func(amount float64) *models.Transaction {
		return &models.Transaction{Amount: amount}
	}

	tests := []struct {
		name          string
		target        float64
		candidate     float64
		gapSeconds    float64
		sameProcessor bool
		want          int
	}{
		{name: "exact amount same processor fast gap", target: 1000, candidate: 1000, gapSeconds: 30, sameProcessor: true, want: 90},
		{name: "exact amount different processor fast gap", target: 1000, candidate: 1000, gapSeconds: 30, sameProcessor: false, want: 70},
		{name: "near amount same processor medium gap", target: 1000, candidate: 1030, gapSeconds: 150, sameProcessor: true, want: 60},
		{name: "near amount different processor slow gap", target: 1000, candidate: 1030, gapSeconds: 500, sameProcessor: false, want: 30},
		{name: "sub-cent difference counts as exact", target: 1000, candidate: 1000.005, gapSeconds: 30, sameProcessor: true, want: 90},
		{name: "gap boundary 120s is medium", target: 1000, candidate: 1000, gapSeconds: 120, sameProcessor: true, want: 80},
		{name: "gap boundary 300s is slow", target: 1000, candidate: 1000, gapSeconds: 300, sameProcessor: true, want: 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := confidenceScore(base(tt.target), base(tt.candidate), tt.gapSeconds, tt.sameProcessor)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score         int
		gapSeconds    float64
		sameProcessor bool
		want          models.DuplicateType
	}{
		{score: 90, gapSeconds: 30, sameProcessor: true, want: models.DuplicateAccidentalRetry},
		{score: 90, gapSeconds: 30, sameProcessor: false, want: models.DuplicateSuspectedRetry},
		{score: 90, gapSeconds: 150, sameProcessor: true, want: models.DuplicateSuspectedRetry},
		{score: 80, gapSeconds: 119, sameProcessor: true, want: models.DuplicateAccidentalRetry},
		{score: 79, gapSeconds: 30, sameProcessor: true, want: models.DuplicateSuspectedRetry},
		{score: 70, gapSeconds: 200, sameProcessor: false, want: models.DuplicateSuspectedRetry},
		{score: 60, gapSeconds: 500, sameProcessor: false, want: models.DuplicateSuspectedRetry},
		{score: 59, gapSeconds: 500, sameProcessor: false, want: models.DuplicateLikelyLegitimate},
		{score: 30, gapSeconds: 500, sameProcessor: false, want: models.DuplicateLikelyLegitimate},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("score=%d gap=%.0f same=%t", tt.score, tt.gapSeconds, tt.sameProcessor)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.score, tt.gapSeconds, tt.sameProcessor))
		})
	}
}

func TestRecommend(t *testing.T) {
	txn := func(id string, state models.CanonicalState, created time.Time) *models.Transaction {
		return &models.Transaction{
			ID:               id,
			Status:           models.StatusUnknown,
			GroundTruthState: state,
			CreatedAt:        created,
		}
	}

	t.Run("both approved refunds the later one", func(t *testing.T) {
		target := txn("txn_a", models.StateApproved, baseTime)
		candidate := txn("txn_b", models.StateApproved, baseTime.Add(time.Minute))

		rec, reasoning := recommend(target, candidate)
		assert.Equal(t, models.RecommendRefundDuplicate, rec)
		assert.Equal(t, "Both approved. Keep txn_a (earlier). Refund txn_b.", reasoning)
	})

	t.Run("both approved candidate earlier refunds the target", func(t *testing.T) {
		target := txn("txn_a", models.StateApproved, baseTime)
		candidate := txn("txn_b", models.StateApproved, baseTime.Add(-time.Minute))

		rec, reasoning := recommend(target, candidate)
		assert.Equal(t, models.RecommendRefundDuplicate, rec)
		assert.Equal(t, "Both approved. Keep txn_b (earlier). Refund txn_a.", reasoning)
	})

	t.Run("tie keeps the target", func(t *testing.T) {
		target := txn("txn_a", models.StateApproved, baseTime)
		candidate := txn("txn_b", models.StateApproved, baseTime)

		_, reasoning := recommend(target, candidate)
		assert.Equal(t, "Both approved. Keep txn_a (earlier). Refund txn_b.", reasoning)
	})

	t.Run("approved vs unknown marks the unknown side", func(t *testing.T) {
		target := txn("txn_a", models.StateApproved, baseTime)
		candidate := txn("txn_b", models.StateUnknown, baseTime.Add(time.Minute))

		rec, reasoning := recommend(target, candidate)
		assert.Equal(t, models.RecommendMarkAsDuplicate, rec)
		assert.Equal(t, "txn_a approved. txn_b is an unresolved duplicate.", reasoning)
	})

	t.Run("unknown vs approved marks the unknown side", func(t *testing.T) {
		target := txn("txn_a", models.StateUnknown, baseTime)
		candidate := txn("txn_b", models.StateApproved, baseTime.Add(time.Minute))

		rec, reasoning := recommend(target, candidate)
		assert.Equal(t, models.RecommendMarkAsDuplicate, rec)
		assert.Equal(t, "txn_b approved. txn_a is an unresolved duplicate.", reasoning)
	})

	t.Run("both declined means no charge happened", func(t *testing.T) {
		target := txn("txn_a", models.StateDeclined, baseTime)
		candidate := txn("txn_b", models.StateDeclined, baseTime)

		rec, _ := recommend(target, candidate)
		assert.Equal(t, models.RecommendNoAction, rec)
	})

	t.Run("approved vs declined is not a duplicate charge", func(t *testing.T) {
		target := txn("txn_a", models.StateApproved, baseTime)
		candidate := txn("txn_b", models.StateDeclined, baseTime)

		rec, reasoning := recommend(target, candidate)
		assert.Equal(t, models.RecommendNoAction, rec)
		assert.Equal(t, "Transactions have different outcomes. Not a duplicate charge.", reasoning)
	})

	t.Run("pending falls through to manual review", func(t *testing.T) {
		target := txn("txn_a", models.StateApproved, baseTime)
		candidate := txn("txn_b", models.StatePending, baseTime)

		rec, reasoning := recommend(target, candidate)
		assert.Equal(t, models.RecommendManualReview, rec)
		assert.Contains(t, reasoning, "Manual review")
	})

	t.Run("recovered state overrides ground truth", func(t *testing.T) {
		declined := models.StateDeclined
		target := txn("txn_a", models.StateApproved, baseTime)
		candidate := txn("txn_b", models.StateApproved, baseTime)
		candidate.RecoveredState = &declined

		rec, _ := recommend(target, candidate)
		assert.Equal(t, models.RecommendNoAction, rec)
	})
}
