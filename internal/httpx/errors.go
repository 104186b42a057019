package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/haukened/hearth/internal/app"
	"github.com/haukened/hearth/internal/domain"
)

// writeError writes a JSON error body with the given status code.
func writeError(ctx context.Context, w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg})
	if cid, ok := GetCorrelationID(ctx); ok {
		slog.Debug("wrote error response", "cid", cid, "status", code, "msg", msg)
	}
}

// mapServiceError maps domain/store/service errors to HTTP responses. Raw
// error strings are not reflected to clients for anything internal; the
// decrypted-data path in particular must never leak field contents.
func mapServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	cid, _ := GetCorrelationID(ctx)
	switch {
	case errors.Is(err, domain.ErrValidation):
		slog.Warn("service error", "cid", cid, "code", "validation")
		writeError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		slog.Info("service error", "cid", cid, "code", "not_found")
		writeError(ctx, w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrUpstream):
		slog.Error("service error", "cid", cid, "code", "upstream")
		writeError(ctx, w, http.StatusBadGateway, "weather provider unavailable")
	case errors.Is(err, domain.ErrDecrypt):
		slog.Error("service error", "cid", cid, "code", "decrypt")
		writeError(ctx, w, http.StatusInternalServerError, "internal")
	case errors.Is(err, domain.ErrStorage):
		slog.Error("service error", "cid", cid, "code", "storage")
		writeError(ctx, w, http.StatusInternalServerError, "internal")
	default:
		slog.Error("unhandled service error", "cid", cid, "code", "unhandled")
		writeError(ctx, w, http.StatusInternalServerError, "internal")
	}
}
