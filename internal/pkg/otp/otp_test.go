package otp

import (
	"errors"
	"testing"

	"github.com/brainbox-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode_AlwaysSixDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := NewCode()
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "non-digit in code %q", code)
		}
	}
}

func TestNormalizeSubmission_StripsNonDigits(t *testing.T) {
	code, err := NormalizeSubmission(" 123-456 ")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
}

func TestNormalizeSubmission_PreservesLeadingZeros(t *testing.T) {
	code, err := NormalizeSubmission("000042")
	require.NoError(t, err)
	assert.Equal(t, "000042", code)
}

func TestNormalizeSubmission_RejectsWrongLength(t *testing.T) {
	for _, raw := range []string{"", "12345", "1234567", "abcdef"} {
		_, err := NormalizeSubmission(raw)
		require.Error(t, err, "raw=%q", raw)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	}
}
