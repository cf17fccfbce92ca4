package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 12

// HashToken returns a bcrypt hash suitable for WEBHOOK_TOKEN_BCRYPT.
func HashToken(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", fmt.Errorf("token is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(trimmed), DefaultBcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(hash), nil
}

// TokenVerifier checks bearer tokens against a plain secret, a bcrypt hash,
// or both. A verifier with neither configured accepts every request.
type TokenVerifier struct {
	plain string
	hash  string
}

func NewTokenVerifier(plain, hash string) TokenVerifier {
	return TokenVerifier{
		plain: strings.TrimSpace(plain),
		hash:  strings.TrimSpace(hash),
	}
}

// Enabled reports whether any secret is configured.
func (v TokenVerifier) Enabled() bool {
	return v.plain != "" || v.hash != ""
}

// Verify reports whether token matches the configured secret.
func (v TokenVerifier) Verify(token string) bool {
	if !v.Enabled() {
		return true
	}
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return false
	}
	if v.plain != "" && subtle.ConstantTimeCompare([]byte(trimmed), []byte(v.plain)) == 1 {
		return true
	}
	if v.hash != "" && bcrypt.CompareHashAndPassword([]byte(v.hash), []byte(trimmed)) == nil {
		return true
	}
	return false
}

// VerifyAuthorizationHeader extracts a "Bearer <token>" value and verifies it.
func (v TokenVerifier) VerifyAuthorizationHeader(header string) bool {
	if !v.Enabled() {
		return true
	}
	token, ok := BearerToken(header)
	if !ok {
		return false
	}
	return v.Verify(token)
}

// BearerToken returns the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	trimmed := strings.TrimSpace(header)
	scheme, token, found := strings.Cut(trimmed, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
