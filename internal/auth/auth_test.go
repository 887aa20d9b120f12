package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestVerifyTokenAcceptsValidHS256(t *testing.T) {
	v := NewVerifier("s3cret")
	tok := signToken(t, "s3cret", jwt.MapClaims{
		"user_id": "000123",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256)

	userID, err := v.VerifyToken(tok)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if userID != "000123" {
		t.Fatalf("userID = %q, want 000123", userID)
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	v := NewVerifier("s3cret")
	tok := signToken(t, "other-secret", jwt.MapClaims{"user_id": "000123"}, jwt.SigningMethodHS256)

	if _, err := v.VerifyToken(tok); err == nil {
		t.Fatalf("expected an error for a token signed with a different secret")
	}
}

func TestVerifyTokenRejectsMissingUserIDClaim(t *testing.T) {
	v := NewVerifier("s3cret")
	tok := signToken(t, "s3cret", jwt.MapClaims{"sub": "whatever"}, jwt.SigningMethodHS256)

	if _, err := v.VerifyToken(tok); err == nil {
		t.Fatalf("expected an error for a token with no user_id claim")
	}
}

func TestVerifyTokenRejectsMalformedToken(t *testing.T) {
	v := NewVerifier("s3cret")
	if _, err := v.VerifyToken("not-a-jwt"); err == nil {
		t.Fatalf("expected an error for a malformed token")
	}
}

func TestVerifyBearerStripsPrefix(t *testing.T) {
	v := NewVerifier("s3cret")
	tok := signToken(t, "s3cret", jwt.MapClaims{"user_id": "000999"}, jwt.SigningMethodHS256)

	userID, err := v.VerifyBearer("Bearer " + tok)
	if err != nil {
		t.Fatalf("VerifyBearer: %v", err)
	}
	if userID != "000999" {
		t.Fatalf("userID = %q, want 000999", userID)
	}
}

func TestVerifyBearerRejectsEmptyHeader(t *testing.T) {
	v := NewVerifier("s3cret")
	if _, err := v.VerifyBearer(""); err == nil {
		t.Fatalf("expected an error for an empty Authorization header")
	}
}
