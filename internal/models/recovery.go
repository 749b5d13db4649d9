package models

import (
	"time"
)

// RecoveryResult is the transient outcome of a single recovery attempt.
// Only RecoveredState, RecoveredAt and ProcessorTimestamp are written back
// onto the transaction; everything else is derived per call.
type RecoveryResult struct {
	RecoveredAt        time.Time
	NextRetryAt        *time.Time
	ProcessorTimestamp *string
	RawResponse        map[string]any
	TransactionID      string
	OriginalStatus     string
	StaleWarning       string
	RecoveredState     CanonicalState
	RecommendedAction  RecommendedAction
}

// DuplicateType classifies how a candidate pair most likely came to exist.
type DuplicateType string

const (
	DuplicateAccidentalRetry  DuplicateType = "accidental_retry"
	DuplicateSuspectedRetry   DuplicateType = "suspected_retry"
	DuplicateLikelyLegitimate DuplicateType = "likely_legitimate"
)

// DuplicateRecommendation is the disposition for a suspected duplicate pair.
type DuplicateRecommendation string

const (
	RecommendRefundDuplicate DuplicateRecommendation = "refund_duplicate"
	RecommendMarkAsDuplicate DuplicateRecommendation = "mark_as_duplicate"
	RecommendNoAction        DuplicateRecommendation = "no_action"
	RecommendManualReview    DuplicateRecommendation = "manual_review"
)

// DuplicateEntry describes one candidate transaction suspected of
// duplicating the target, with a confidence score between 0 and 100.
type DuplicateEntry struct {
	TransactionID   string
	Reasoning       string
	Type            DuplicateType
	Recommendation  DuplicateRecommendation
	ConfidenceScore int
	TimeGapSeconds  float64
}
