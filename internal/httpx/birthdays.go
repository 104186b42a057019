package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/haukened/hearth/internal/domain"
)

// handleNewBirthday implements GET /api/new?name=...&birthdate=dd.mm.yyyy.
// GET with query parameters mirrors the interface this service replaces;
// the operation is an idempotent upsert keyed by name.
func (h *Handler) handleNewBirthday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name := r.URL.Query().Get("name")
	birthdate := r.URL.Query().Get("birthdate")
	if name == "" || birthdate == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "name and birthdate are required")
		return
	}
	h.countRequest("birthday_upsert")

	id, err := h.Service.AddBirthday(r.Context(), name, birthdate)
	if err != nil {
		mapServiceError(r.Context(), w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		ID int64 `json:"id"`
	}{ID: id})
}

// birthdayJSON is the list representation; the birthdate is ISO-8601.
type birthdayJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Birthdate string `json:"birthdate"`
}

// handleListBirthdays implements GET /api/birthdays, the decrypted record set.
func (h *Handler) handleListBirthdays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	records, err := h.Service.ListBirthdays(r.Context())
	if err != nil {
		mapServiceError(r.Context(), w, err)
		return
	}
	out := make([]birthdayJSON, 0, len(records))
	for _, b := range records {
		out = append(out, birthdayJSON{ID: b.ID, Name: b.Name, Birthdate: b.Birthdate.Format(domain.ISODate)})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// handleDeleteBirthday implements DELETE /api/birthday/{id}.
func (h *Handler) handleDeleteBirthday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(r.Context(), w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/birthday/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "invalid id")
		return
	}
	h.countRequest("birthday_delete")

	if err := h.Service.RemoveBirthday(r.Context(), id); err != nil {
		mapServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
