package auth

import "testing"

func TestHashAndVerifyToken(t *testing.T) {
	t.Parallel()

	hash, err := HashToken("s3cret-token")
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}
	if hash == "" {
		t.Fatalf("expected non-empty hash")
	}

	verifier := NewTokenVerifier("", hash)
	if !verifier.Verify("s3cret-token") {
		t.Fatalf("expected token verification to succeed")
	}
	if verifier.Verify("wrong-token") {
		t.Fatalf("did not expect wrong token to verify")
	}
}

func TestHashTokenRejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := HashToken("   "); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestPlainTokenVerifier(t *testing.T) {
	t.Parallel()

	verifier := NewTokenVerifier(" abc123 ", "")
	if !verifier.Enabled() {
		t.Fatalf("expected verifier to be enabled")
	}
	if !verifier.VerifyAuthorizationHeader("Bearer abc123") {
		t.Fatalf("expected bearer token to verify")
	}
	if !verifier.VerifyAuthorizationHeader("bearer abc123") {
		t.Fatalf("expected case-insensitive scheme to verify")
	}
	if verifier.VerifyAuthorizationHeader("Basic abc123") {
		t.Fatalf("did not expect basic auth to verify")
	}
	if verifier.VerifyAuthorizationHeader("") {
		t.Fatalf("did not expect empty header to verify")
	}
	if verifier.VerifyAuthorizationHeader("Bearer abc1234") {
		t.Fatalf("did not expect a different token to verify")
	}
}

func TestDisabledVerifierAcceptsEverything(t *testing.T) {
	t.Parallel()

	verifier := NewTokenVerifier("", "")
	if verifier.Enabled() {
		t.Fatalf("did not expect verifier to be enabled")
	}
	if !verifier.VerifyAuthorizationHeader("") {
		t.Fatalf("expected disabled verifier to accept missing header")
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	if got, ok := BearerToken("Bearer   xyz "); !ok || got != "xyz" {
		t.Fatalf("unexpected bearer token: %q %t", got, ok)
	}
	if _, ok := BearerToken("Bearer"); ok {
		t.Fatalf("did not expect token without value")
	}
}
