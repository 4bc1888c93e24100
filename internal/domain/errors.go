package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrInvalidIdentity    = errors.New("invalid identity")
	ErrNotFound           = errors.New("not found")
	ErrExpired            = errors.New("expired")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrInvalidCode        = errors.New("invalid code")
	ErrInvalidOrExpired   = errors.New("invalid or expired token")
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// InvalidCodeError reports a failed code comparison together with the number
// of attempts the caller has left before the challenge is purged.
type InvalidCodeError struct {
	AttemptsRemaining int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid code: %d attempts remaining", e.AttemptsRemaining)
}

func (e *InvalidCodeError) Unwrap() error { return ErrInvalidCode }
