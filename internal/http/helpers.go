package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func readJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

// writeStoreError maps storage errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error, entity string) {
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, entity+" not found")
		return
	}
	slog.Error("store error", "entity", entity, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// isValidationError reports whether err is one of the domain validation
// sentinels, which surface as 400s.
func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidCategory,
		core.ErrInvalidTransactionType,
		core.ErrInvalidAlertKind,
		core.ErrEmptyName,
		core.ErrInvalidEmail,
		core.ErrEmptyPhoneNo,
		core.ErrEmptyAccountNumber,
		core.ErrInvalidLimit,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
