// Package identity resolves the verified user behind a connecting
// client. Credential issuance happens elsewhere; this side only
// checks that a presented token was minted by the issuer.
package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/studycrew/presence/internal/domain"
)

// Verifier turns an opaque connect token into a user identity.
type Verifier interface {
	Verify(token string) (domain.UserID, error)
}

// HMACVerifier accepts tokens of the form "<userID>.<sig>" where sig
// is base64(HMAC-SHA256(userID, secret)), the scheme the token issuer
// mints against the same shared secret.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(token string) (domain.UserID, error) {
	raw, sig, ok := strings.Cut(token, ".")
	if !ok || raw == "" || sig == "" {
		return "", fmt.Errorf("malformed token: %w", domain.ErrUnauthorized)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(raw))
	want := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "", fmt.Errorf("bad token signature: %w", domain.ErrUnauthorized)
	}

	userID, err := domain.ParseUserID(raw)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, domain.ErrUnauthorized)
	}
	return userID, nil
}

// Sign mints a token for userID. Exposed for the issuer side and for
// tests; the verifier itself never calls it on the hot path.
func (v *HMACVerifier) Sign(userID domain.UserID) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(userID))
	return string(userID) + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
