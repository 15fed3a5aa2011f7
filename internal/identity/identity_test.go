package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycrew/presence/internal/domain"
)

func TestVerify_AcceptsOwnSignature(t *testing.T) {
	v := NewHMACVerifier("sekret")

	userID, err := v.Verify(v.Sign("alice"))
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("alice"), userID)
}

func TestVerify_Rejections(t *testing.T) {
	v := NewHMACVerifier("sekret")
	other := NewHMACVerifier("different-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "alice"},
		{"empty user", "." + strings.Split(v.Sign("alice"), ".")[1]},
		{"empty signature", "alice."},
		{"wrong secret", other.Sign("alice")},
		{"signature for another user", "bob." + strings.Split(v.Sign("alice"), ".")[1]},
		{"garbage signature", "alice.not-base64-of-anything"},
		{"oversized user id", v.Sign(domain.UserID(strings.Repeat("a", 64)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestVerify_UserIDWithDots(t *testing.T) {
	// Only the first separator splits; a dot inside the signature
	// cannot occur with raw-url base64, and a dot inside the user id
	// breaks the signature check rather than panicking.
	v := NewHMACVerifier("sekret")

	_, err := v.Verify("alice.smith." + strings.Split(v.Sign("alice"), ".")[1])
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
