package processor

import (
	"fmt"
	"time"

	"github.com/vidarx/recovery/internal/config"
	"github.com/vidarx/recovery/internal/models"
)

// Registered processor names
const (
	BancoSur    = "bancosur"
	MexPay      = "mexpay"
	AndesPSP    = "andespsp"
	CashVoucher = "cashvoucher"
)

// BancoSurDescriptor describes the BancoSur gateway wire format:
// status field `status`, vocabulary APPROVED/DECLINED/PENDING/UNKNOWN,
// ISO-8601 timestamps.
var BancoSurDescriptor = Descriptor{
	Name:           BancoSur,
	IDField:        "transaction_id",
	StatusField:    "status",
	TimestampField: "timestamp",
	FailureMessage: "503 Service Unavailable",
	Vocabulary: map[models.CanonicalState]string{
		models.StateApproved: "APPROVED",
		models.StateDeclined: "DECLINED",
		models.StatePending:  "PENDING",
		models.StateUnknown:  "UNKNOWN",
	},
	FormatTimestamp: func(now time.Time) any {
		return now.UTC().Format(time.RFC3339)
	},
	Decorate: func(raw map[string]any, rawStatus string) {
		raw["processor"] = "BancoSur"
		if rawStatus == "APPROVED" {
			raw["authorization_code"] = fmt.Sprintf("BS%06d", randomInt(100000, 999999))
			raw["response_code"] = "00"
		} else {
			raw["authorization_code"] = nil
			raw["response_code"] = "05"
		}
	},
}

// MexPayDescriptor describes the MexPay wire format: status field
// `payment_status`, vocabulary success/failed/processing/indeterminate,
// Unix epoch timestamps.
var MexPayDescriptor = Descriptor{
	Name:           MexPay,
	IDField:        "id",
	StatusField:    "payment_status",
	TimestampField: "processed_at",
	FailureMessage: "connection timeout",
	Vocabulary: map[models.CanonicalState]string{
		models.StateApproved: "success",
		models.StateDeclined: "failed",
		models.StatePending:  "processing",
		models.StateUnknown:  "indeterminate",
	},
	FormatTimestamp: func(now time.Time) any {
		return now.Unix()
	},
	Decorate: func(raw map[string]any, rawStatus string) {
		raw["gateway"] = "MexPay"
		raw["mx_code"] = randomInt(1000, 9999)
		raw["approved"] = rawStatus == "success"
	},
}

// AndesPSPDescriptor describes the AndesPSP wire format: status field
// `transaction_state`, Spanish vocabulary, DD/MM/YYYY HH:MM:SS timestamps.
var AndesPSPDescriptor = Descriptor{
	Name:           AndesPSP,
	IDField:        "transaccion_id",
	StatusField:    "transaction_state",
	TimestampField: "fecha_hora",
	FailureMessage: "error de conexion",
	Vocabulary: map[models.CanonicalState]string{
		models.StateApproved: "aprobada",
		models.StateDeclined: "rechazada",
		models.StatePending:  "pendiente",
		models.StateUnknown:  "desconocido",
	},
	FormatTimestamp: func(now time.Time) any {
		return now.UTC().Format("02/01/2006 15:04:05")
	},
	Decorate: func(raw map[string]any, rawStatus string) {
		raw["procesador"] = "AndesPSP"
		if rawStatus == "aprobada" {
			raw["codigo_respuesta"] = "00"
			raw["mensaje"] = "Aprobado"
		} else {
			raw["codigo_respuesta"] = "99"
			raw["mensaje"] = "Ver codigo"
		}
	},
}

// CashVoucherDescriptor describes the CashVoucher wire format: status field
// `state`, vocabulary PAID/REJECTED/WAITING/ERROR, RFC-2822 timestamps.
var CashVoucherDescriptor = Descriptor{
	Name:           CashVoucher,
	IDField:        "voucher_ref",
	StatusField:    "state",
	TimestampField: "issued_at",
	FailureMessage: "service error 503",
	Vocabulary: map[models.CanonicalState]string{
		models.StateApproved: "PAID",
		models.StateDeclined: "REJECTED",
		models.StatePending:  "WAITING",
		models.StateUnknown:  "ERROR",
	},
	FormatTimestamp: func(now time.Time) any {
		return now.UTC().Format(time.RFC1123Z)
	},
	Decorate: func(raw map[string]any, rawStatus string) {
		raw["issuer"] = "CashVoucher"
		raw["voucher_number"] = fmt.Sprintf("CV%05d", randomInt(10000, 99999))
		raw["valid"] = rawStatus == "PAID"
	},
}

// NewRegistry builds the registry of all four processor simulators
func NewRegistry(cfg config.SimulatorConfig) Registry {
	registry := Registry{}
	for _, desc := range []Descriptor{
		BancoSurDescriptor,
		MexPayDescriptor,
		AndesPSPDescriptor,
		CashVoucherDescriptor,
	} {
		registry[desc.Name] = NewSimulator(desc, cfg)
	}
	return registry
}
