package models

import (
	"time"
)

// CanonicalState is the normalized outcome vocabulary that every
// processor-specific status folds into.
type CanonicalState string

const (
	StateApproved CanonicalState = "approved"
	StateDeclined CanonicalState = "declined"
	StatePending  CanonicalState = "pending"
	StateUnknown  CanonicalState = "unknown"
)

// RecommendedAction represents the remediation a caller should take after
// a transaction's state has been recovered.
type RecommendedAction string

const (
	ActionFulfillOrder      RecommendedAction = "fulfill_order"
	ActionRefundCustomer    RecommendedAction = "refund_customer"
	ActionWaitForSettlement RecommendedAction = "wait_for_settlement"
	ActionManualReview      RecommendedAction = "escalate_to_manual_review"
)

// StatusUnknown marks a transaction whose original payment attempt timed
// out and whose outcome still needs recovery. Recovery deliberately leaves
// this field untouched: it is the audit marker of "was originally
// unresolved", while RecoveredState carries the resolved outcome.
const StatusUnknown = "unknown"

// Transaction represents a payment attempt whose outcome may need to be
// recovered from its processor.
type Transaction struct {
	CreatedAt          time.Time       `db:"created_at"`
	CustomerID         *string         `db:"customer_id"`
	RecoveredState     *CanonicalState `db:"recovered_state"`
	RecoveredAt        *time.Time      `db:"recovered_at"`
	ProcessorTimestamp *string         `db:"processor_timestamp"`
	Notes              *string         `db:"notes"`
	ID                 string          `db:"id"`
	Currency           string          `db:"currency"`
	Processor          string          `db:"processor"`
	Status             string          `db:"status"`
	GroundTruthState   CanonicalState  `db:"ground_truth_state"`
	Amount             float64         `db:"amount"`
}

// NeedsRecovery reports whether the transaction is still awaiting recovery.
func (t *Transaction) NeedsRecovery() bool {
	return t.Status == StatusUnknown
}

// EffectiveState returns the recovered state when recovery has run,
// otherwise the ground-truth state as a proxy for duplicate analysis.
func (t *Transaction) EffectiveState() CanonicalState {
	if t.RecoveredState != nil {
		return *t.RecoveredState
	}
	return t.GroundTruthState
}
