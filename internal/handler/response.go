package handler

// RESPONSE HELPERS:
// writeJSON and writeError standardise how handlers send JSON. Every error
// response has the same shape:
//
//	{"error": "validation_error", "message": "Invalid request data", "details": [...]}
//
// so the frontend always knows what fields to expect. Generation endpoints
// deviate on purpose — they return the upstream-compatible {"error": "..."}
// shape directly (see generate.go).

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/snipseo/snipseo/internal/apperror"
)

// ErrorResponse is the standard error format returned by the API.
type ErrorResponse struct {
	Error   string   `json:"error"`             // machine-readable type, e.g. "not_found"
	Message string   `json:"message"`           // human-readable description
	Details []string `json:"details,omitempty"` // per-field validation messages
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must be written before the body; once Encode writes, header
// changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends it.
//
// The service layer returns apperror sentinels; this is the single place
// they become status codes. Unknown errors become a generic 500 — raw
// error strings can carry SQL fragments or file paths and are never echoed
// to clients, only logged where they occur.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Details: appErr.Details,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
