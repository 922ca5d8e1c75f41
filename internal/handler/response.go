package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sharewall/backend/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeServiceError maps the service error taxonomy to a status code and
// a snake_case error body.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		ve *service.ValidationError
		nf *service.NotFoundError
		se *service.StorageError
		ae *service.AuthError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Code(), "field": ve.Field})
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.As(err, &se):
		code := "storage_failed"
		if se.Op == "upload" {
			code = "image_upload_failed"
		}
		writeError(w, http.StatusBadGateway, code)
	case errors.As(err, &ae):
		writeError(w, http.StatusUnauthorized, ae.Reason)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

// pathID parses the {id} path value as a positive integer.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
