package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Recover handles POST /api/v1/transactions/{transactionID}/recover
func (h *Handler) Recover(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	result, err := h.recoveryService.Recover(r.Context(), transactionID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toRecoverResponse(result))
}
