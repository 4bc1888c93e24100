package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brainbox-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RequestCodeEnvelope wraps request-code responses. CodeDisclosed carries
// the raw code only when delivery did not happen.
type RequestCodeEnvelope struct {
	OK            bool   `json:"ok"`
	Delivered     bool   `json:"delivered"`
	CodeDisclosed string `json:"code_disclosed,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Message       string `json:"message,omitempty"`
}

// VerifyCodeEnvelope wraps verify-code responses.
type VerifyCodeEnvelope struct {
	OK                bool   `json:"ok"`
	Token             string `json:"token,omitempty"`
	Error             string `json:"error,omitempty"`
	Message           string `json:"message,omitempty"`
	AttemptsRemaining *int   `json:"attempts_remaining,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: kind, Message: msg})
}

// httpError maps domain sentinel errors onto HTTP statuses and the wire
// error taxonomy.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentity):
		writeError(w, http.StatusBadRequest, "InvalidIdentity", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "NotFound", "code not found, request a new one")
	case errors.Is(err, domain.ErrExpired):
		writeError(w, http.StatusGone, "Expired", "code has expired, request a new one")
	case errors.Is(err, domain.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, "TooManyAttempts", "too many failed attempts, request a new code")
	case errors.Is(err, domain.ErrInvalidCode):
		var ice *domain.InvalidCodeError
		env := VerifyCodeEnvelope{Error: "InvalidCode", Message: err.Error()}
		if errors.As(err, &ice) {
			env.AttemptsRemaining = &ice.AttemptsRemaining
		}
		writeJSON(w, http.StatusBadRequest, env)
	case errors.Is(err, domain.ErrInvalidOrExpired):
		writeError(w, http.StatusBadRequest, "InvalidOrExpiredToken", "invalid or expired reset token")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "ValidationError", err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeError(w, http.StatusInternalServerError, "StorageUnavailable", "storage unavailable, try again")
	default:
		writeError(w, http.StatusInternalServerError, "InternalError", "internal error")
	}
}
