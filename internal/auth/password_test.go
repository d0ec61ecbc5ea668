package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "Sup3r-Secret", nil},
		{"too short", "Ab1!", ErrPasswordTooShort},
		{"too long", strings.Repeat("Aa1!", 19), ErrPasswordTooLong},
		{"no uppercase", "sup3r-secret", ErrPasswordNoUpper},
		{"no lowercase", "SUP3R-SECRET", ErrPasswordNoLower},
		{"no digit", "Super-Secret", ErrPasswordNoDigit},
		{"no symbol", "Sup3rSecret", ErrPasswordNoSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Sup3r-Secret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3r-Secret", hash)

	assert.NoError(t, CheckPassword("Sup3r-Secret", hash))
	assert.ErrorIs(t, CheckPassword("Wrong-Passw0rd!", hash), ErrInvalidPassword)
}

func TestHashPassword_RejectsPolicyViolations(t *testing.T) {
	_, err := HashPassword("weak", bcrypt.MinCost)
	assert.Error(t, err)
}
