package identity

import (
	"fmt"
	"strings"

	"github.com/brainbox-api/internal/domain"
)

// Normalize lower-cases and trims an identity so the same address always
// maps to the same ledger key, no matter how the caller typed it.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Check validates the identity format: it must contain an "@" separator with
// something on both sides. Existence is never checked against a directory.
func Check(raw string) error {
	s := strings.TrimSpace(raw)
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return fmt.Errorf("identity %q: %w", raw, domain.ErrInvalidIdentity)
	}
	return nil
}
