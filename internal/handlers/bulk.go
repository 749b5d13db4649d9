package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vidarx/recovery/internal/service"
)

// BulkRecover handles POST /api/v1/transactions/bulk-recover
func (h *Handler) BulkRecover(w http.ResponseWriter, r *http.Request) {
	var req BulkRecoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, service.ErrCodeInvalidRequest, "malformed request body")
		return
	}

	if len(req.TransactionIDs) == 0 {
		h.writeError(w, http.StatusBadRequest, service.ErrCodeInvalidRequest, "transaction_ids cannot be empty")
		return
	}
	if len(req.TransactionIDs) > service.MaxBulkTransactions {
		h.writeError(w, http.StatusBadRequest, service.ErrCodeInvalidRequest,
			fmt.Sprintf("maximum %d transaction IDs per request", service.MaxBulkTransactions))
		return
	}

	summary, err := h.bulkService.BulkRecover(r.Context(), req.TransactionIDs)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toBulkSummaryResponse(summary))
}
