package httpx

import (
	"encoding/json"
	"net/http"
)

// handleDashboard implements GET /, the aggregated dashboard payload.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" { // catch-all route; anything else is unknown
		writeError(r.Context(), w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.countRequest("dashboard")

	dash, err := h.Service.Dashboard(r.Context())
	if err != nil {
		mapServiceError(r.Context(), w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(dash)
}
