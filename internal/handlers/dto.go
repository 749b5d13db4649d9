package handlers

import (
	"time"

	"github.com/vidarx/recovery/internal/models"
	"github.com/vidarx/recovery/internal/service"
)

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// TransactionResponse is the read view of a stored transaction
type TransactionResponse struct {
	ID                 string     `json:"id"`
	CustomerID         *string    `json:"customer_id"`
	Amount             float64    `json:"amount"`
	Currency           string     `json:"currency"`
	Processor          string     `json:"processor"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	RecoveredState     *string    `json:"recovered_state"`
	RecoveredAt        *time.Time `json:"recovered_at"`
	ProcessorTimestamp *string    `json:"processor_timestamp"`
}

// RecoverResponse is the outcome of one recovery call
type RecoverResponse struct {
	TransactionID        string         `json:"transaction_id"`
	OriginalStatus       string         `json:"original_status"`
	RecoveredState       string         `json:"recovered_state"`
	ProcessorTimestamp   *string        `json:"processor_timestamp"`
	RecommendedAction    string         `json:"recommended_action"`
	NextRetryAt          *time.Time     `json:"next_retry_at,omitempty"`
	StaleWarning         *string        `json:"stale_transaction_warning,omitempty"`
	ProcessorRawResponse map[string]any `json:"processor_raw_response"`
	RecoveredAt          time.Time      `json:"recovered_at"`
}

// DuplicateEntryResponse describes one suspected duplicate
type DuplicateEntryResponse struct {
	DuplicateTransactionID string  `json:"duplicate_transaction_id"`
	ConfidenceScore        int     `json:"confidence_score"`
	DuplicateType          string  `json:"duplicate_type"`
	TimeGapSeconds         float64 `json:"time_gap_seconds"`
	Recommendation         string  `json:"recommendation"`
	Reasoning              string  `json:"reasoning"`
}

// DuplicateReportResponse is the duplicate lookup result for one target
type DuplicateReportResponse struct {
	TransactionID   string                   `json:"transaction_id"`
	DuplicatesFound int                      `json:"duplicates_found"`
	Duplicates      []DuplicateEntryResponse `json:"duplicates"`
}

// BulkRecoverRequest carries the ids for one bulk batch
type BulkRecoverRequest struct {
	TransactionIDs []string `json:"transaction_ids"`
}

// BulkCountsResponse tallies outcomes by canonical state
type BulkCountsResponse struct {
	Approved     int `json:"approved"`
	Declined     int `json:"declined"`
	Pending      int `json:"pending"`
	StillUnknown int `json:"still_unknown"`
	Errors       int `json:"errors"`
}

// FailedTransactionResponse records one isolated bulk failure
type FailedTransactionResponse struct {
	TransactionID string `json:"transaction_id"`
	Error         string `json:"error"`
}

// BulkSummaryResponse is the aggregate report for a bulk batch
type BulkSummaryResponse struct {
	TotalProcessed          int                         `json:"total_processed"`
	Results                 BulkCountsResponse          `json:"results"`
	DuplicatesDetected      int                         `json:"duplicates_detected"`
	TotalRecommendedRefund  float64                     `json:"total_recommended_refund_amount"`
	RefundCurrencyBreakdown map[string]float64          `json:"refund_currency_breakdown"`
	Transactions            []RecoverResponse           `json:"transactions"`
	FailedTransactions      []FailedTransactionResponse `json:"failed_transactions"`
	ProcessingTimeMS        int64                       `json:"processing_time_ms"`
}

func toTransactionResponse(txn *models.Transaction) TransactionResponse {
	var recoveredState *string
	if txn.RecoveredState != nil {
		s := string(*txn.RecoveredState)
		recoveredState = &s
	}
	return TransactionResponse{
		ID:                 txn.ID,
		CustomerID:         txn.CustomerID,
		Amount:             txn.Amount,
		Currency:           txn.Currency,
		Processor:          txn.Processor,
		Status:             txn.Status,
		CreatedAt:          txn.CreatedAt,
		RecoveredState:     recoveredState,
		RecoveredAt:        txn.RecoveredAt,
		ProcessorTimestamp: txn.ProcessorTimestamp,
	}
}

func toRecoverResponse(result *models.RecoveryResult) RecoverResponse {
	var staleWarning *string
	if result.StaleWarning != "" {
		staleWarning = &result.StaleWarning
	}
	return RecoverResponse{
		TransactionID:        result.TransactionID,
		OriginalStatus:       result.OriginalStatus,
		RecoveredState:       string(result.RecoveredState),
		ProcessorTimestamp:   result.ProcessorTimestamp,
		RecommendedAction:    string(result.RecommendedAction),
		NextRetryAt:          result.NextRetryAt,
		StaleWarning:         staleWarning,
		ProcessorRawResponse: result.RawResponse,
		RecoveredAt:          result.RecoveredAt,
	}
}

func toDuplicateReportResponse(transactionID string, entries []models.DuplicateEntry) DuplicateReportResponse {
	duplicates := make([]DuplicateEntryResponse, 0, len(entries))
	for _, entry := range entries {
		duplicates = append(duplicates, DuplicateEntryResponse{
			DuplicateTransactionID: entry.TransactionID,
			ConfidenceScore:        entry.ConfidenceScore,
			DuplicateType:          string(entry.Type),
			TimeGapSeconds:         entry.TimeGapSeconds,
			Recommendation:         string(entry.Recommendation),
			Reasoning:              entry.Reasoning,
		})
	}
	return DuplicateReportResponse{
		TransactionID:   transactionID,
		DuplicatesFound: len(duplicates),
		Duplicates:      duplicates,
	}
}

func toBulkSummaryResponse(summary *service.BulkSummary) BulkSummaryResponse {
	transactions := make([]RecoverResponse, 0, len(summary.Results))
	for _, result := range summary.Results {
		transactions = append(transactions, toRecoverResponse(result))
	}

	failed := make([]FailedTransactionResponse, 0, len(summary.Failed))
	for _, f := range summary.Failed {
		failed = append(failed, FailedTransactionResponse{
			TransactionID: f.TransactionID,
			Error:         f.Error,
		})
	}

	return BulkSummaryResponse{
		TotalProcessed: summary.TotalProcessed,
		Results: BulkCountsResponse{
			Approved:     summary.Counts.Approved,
			Declined:     summary.Counts.Declined,
			Pending:      summary.Counts.Pending,
			StillUnknown: summary.Counts.StillUnknown,
			Errors:       summary.Counts.Errors,
		},
		DuplicatesDetected:      summary.DuplicatesDetected,
		TotalRecommendedRefund:  summary.TotalRecommendedRefund,
		RefundCurrencyBreakdown: summary.RefundCurrencyBreakdown,
		Transactions:            transactions,
		FailedTransactions:      failed,
		ProcessingTimeMS:        summary.ProcessingTime.Milliseconds(),
	}
}
