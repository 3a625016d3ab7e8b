package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vncsmyrnk/pollapi/internal/core/domain"
	"github.com/vncsmyrnk/pollapi/internal/logging"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// writeBearerError answers 401 in the RFC 6750 shape.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	writeMessage(w, http.StatusUnauthorized, desc)
}

// writeError maps a service error onto its HTTP status. Anything unrecognised
// is logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		writeBearerError(w, "token expired")
	case errors.Is(err, domain.ErrTokenInvalid), errors.Is(err, domain.ErrUnauthorized):
		writeBearerError(w, "invalid or missing token")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrDuplicateUsername):
		writeMessage(w, http.StatusConflict, domain.ErrDuplicateUsername.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeMessage(w, http.StatusForbidden, domain.ErrForbidden.Error())
	case errors.Is(err, domain.ErrPollNotFound):
		writeMessage(w, http.StatusNotFound, domain.ErrPollNotFound.Error())
	case errors.Is(err, domain.ErrOptionNotFound):
		writeMessage(w, http.StatusNotFound, domain.ErrOptionNotFound.Error())
	case errors.Is(err, domain.ErrVoteNotFound):
		writeMessage(w, http.StatusNotFound, domain.ErrVoteNotFound.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, domain.ErrUserNotFound.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, domain.ErrNotFound.Error())
	case errors.Is(err, domain.ErrInsufficientOptions):
		writeMessage(w, http.StatusUnprocessableEntity, domain.ErrInsufficientOptions.Error())
	case errors.Is(err, domain.ErrOptionMismatch):
		writeMessage(w, http.StatusUnprocessableEntity, domain.ErrOptionMismatch.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		logging.FromContext(r.Context()).Error("request failed", "err", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput)
	}
	return nil
}
