package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Duplicates handles GET /api/v1/transactions/{transactionID}/duplicates
func (h *Handler) Duplicates(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	entries, err := h.duplicateService.FindDuplicates(r.Context(), transactionID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toDuplicateReportResponse(transactionID, entries))
}
