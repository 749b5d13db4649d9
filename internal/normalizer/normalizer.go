// Package normalizer maps heterogeneous processor responses onto the
// canonical state schema.
//
// Each processor uses its own field names, status vocabulary, and timestamp
// encoding. A status word outside a processor's vocabulary is data, not a
// fault: it folds to the unknown state. Malformed timestamps degrade to nil
// instead of failing the normalization.
package normalizer

import (
	"fmt"

	"github.com/vidarx/recovery/internal/models"
	"github.com/vidarx/recovery/internal/processor"
)

// Normalized is a processor response folded into the canonical schema
type Normalized struct {
	ProcessorTimestamp *string
	State              models.CanonicalState
}

type wireFormat struct {
	parseTimestamp func(raw map[string]any) *string
	states         map[string]models.CanonicalState
	statusField    string
}

var wireFormats = map[string]wireFormat{
	processor.BancoSur: {
		statusField: "status",
		states: map[string]models.CanonicalState{
			"APPROVED": models.StateApproved,
			"DECLINED": models.StateDeclined,
			"PENDING":  models.StatePending,
			"UNKNOWN":  models.StateUnknown,
		},
		parseTimestamp: parseISO8601("timestamp"),
	},
	processor.MexPay: {
		statusField: "payment_status",
		states: map[string]models.CanonicalState{
			"success":       models.StateApproved,
			"failed":        models.StateDeclined,
			"processing":    models.StatePending,
			"indeterminate": models.StateUnknown,
		},
		parseTimestamp: parseEpoch("processed_at"),
	},
	processor.AndesPSP: {
		statusField: "transaction_state",
		states: map[string]models.CanonicalState{
			"aprobada":    models.StateApproved,
			"rechazada":   models.StateDeclined,
			"pendiente":   models.StatePending,
			"desconocido": models.StateUnknown,
		},
		parseTimestamp: parseDayFirst("fecha_hora"),
	},
	processor.CashVoucher: {
		statusField: "state",
		states: map[string]models.CanonicalState{
			"PAID":     models.StateApproved,
			"REJECTED": models.StateDeclined,
			"WAITING":  models.StatePending,
			"ERROR":    models.StateUnknown,
		},
		parseTimestamp: parseRFC2822("issued_at"),
	},
}

// Normalize folds a processor's raw response into the canonical schema.
// It fails only for an unregistered processor name; a missing or
// unrecognized status resolves to the unknown state.
func Normalize(processorName string, raw map[string]any) (Normalized, error) {
	format, ok := wireFormats[processorName]
	if !ok {
		return Normalized{}, fmt.Errorf("unknown processor: %s", processorName)
	}

	state := models.StateUnknown
	if rawStatus, ok := raw[format.statusField].(string); ok {
		if mapped, ok := format.states[rawStatus]; ok {
			state = mapped
		}
	}

	return Normalized{
		State:              state,
		ProcessorTimestamp: format.parseTimestamp(raw),
	}, nil
}
