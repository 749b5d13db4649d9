package normalizer

import (
	"time"

	"github.com/vidarx/recovery/internal/models"
	"github.com/vidarx/recovery/internal/processor"
)

var recommendedActions = map[models.CanonicalState]models.RecommendedAction{
	models.StateApproved: models.ActionFulfillOrder,
	models.StateDeclined: models.ActionRefundCustomer,
	models.StatePending:  models.ActionWaitForSettlement,
	models.StateUnknown:  models.ActionManualReview,
}

// RecommendedAction maps a canonical state to its remediation action.
// Unmapped states escalate to manual review.
func RecommendedAction(state models.CanonicalState) models.RecommendedAction {
	if action, ok := recommendedActions[state]; ok {
		return action
	}
	return models.ActionManualReview
}

// Per-processor retry delays for transactions that are still pending or
// unknown after recovery.
var retryDelays = map[string]time.Duration{
	processor.BancoSur:    5 * time.Minute,
	processor.MexPay:      time.Hour,
	processor.AndesPSP:    24 * time.Hour,
	processor.CashVoucher: 24 * time.Hour,
}

// Fallback for an unregistered processor name. The registry gates recovery
// before this matters.
const defaultRetryDelay = time.Hour

// NextRetryAt returns when the caller should re-check a pending or unknown
// transaction. Resolved states (approved/declined) never get a retry time.
func NextRetryAt(processorName string, state models.CanonicalState, now time.Time) *time.Time {
	if state != models.StatePending && state != models.StateUnknown {
		return nil
	}
	delay, ok := retryDelays[processorName]
	if !ok {
		delay = defaultRetryDelay
	}
	at := now.Add(delay)
	return &at
}
