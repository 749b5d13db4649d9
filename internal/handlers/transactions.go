package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vidarx/recovery/internal/models"
	"github.com/vidarx/recovery/internal/service"
)

// GetTransaction handles GET /api/v1/transactions/{transactionID}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	txn, err := h.store.GetByID(r.Context(), transactionID)
	if errors.Is(err, models.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, service.ErrCodeNotFound, "transaction not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load transaction", "transaction_id", transactionID, "error", err)
		h.writeError(w, http.StatusInternalServerError, service.ErrCodeInternalError, "internal error")
		return
	}

	h.writeJSON(w, http.StatusOK, toTransactionResponse(txn))
}
