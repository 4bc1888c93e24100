package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/brainbox-api/internal/domain"
)

// CodeLength is the number of digits in a challenge code.
const CodeLength = 6

var codeSpace = big.NewInt(1_000_000)

// NewCode generates a 6-digit challenge code drawn uniformly from
// 000000–999999. The code is always handled as a string so leading zeros
// survive every hop.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// NormalizeSubmission strips everything that is not a digit from a submitted
// code (users paste codes with spaces and dashes) and rejects anything that
// is not exactly 6 digits afterwards. The stored code is never normalized;
// comparison against it is exact.
func NormalizeSubmission(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	code := b.String()
	if len(code) != CodeLength {
		return "", fmt.Errorf("code must be %d digits: %w", CodeLength, domain.ErrValidation)
	}
	return code, nil
}
