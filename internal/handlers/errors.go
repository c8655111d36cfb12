package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crucial707/vigil/internal/auth"
	"github.com/crucial707/vigil/internal/repo"
	"go.uber.org/zap"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

// statusFor maps a domain error to its HTTP status. Zero means unexpected.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrAccountDisabled),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repo.ErrEmailTaken),
		errors.Is(err, repo.ErrActiveRound),
		errors.Is(err, repo.ErrActiveShift),
		errors.Is(err, repo.ErrNotActive):
		return http.StatusBadRequest
	}
	return 0
}

// writeError answers err with the status of its kind. Anything unrecognised is
// logged and answered with a bare 500.
func writeError(w http.ResponseWriter, log *zap.Logger, err error, what string) {
	if status := statusFor(err); status != 0 {
		JSONError(w, messageFor(err, what), status)
		return
	}
	if log != nil {
		log.Error(what, zap.Error(err))
	}
	JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
}

func messageFor(err error, what string) string {
	if errors.Is(err, repo.ErrNotFound) && what != "" {
		return what + " not found"
	}
	return err.Error()
}
