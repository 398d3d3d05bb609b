package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundtrip(t *testing.T) {
	token, err := IssueAccessToken("user-123")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	userID, err := VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("user id = %q, want user-123", userID)
	}
}

func TestVerifyAccessTokenRejectsGarbage(t *testing.T) {
	if _, err := VerifyAccessToken("not-a-token"); err == nil {
		t.Error("garbage token should not verify")
	}
	if _, err := VerifyAccessToken(""); err == nil {
		t.Error("empty token should not verify")
	}
}

func TestVerifyAccessTokenRejectsExpired(t *testing.T) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "user-123",
		IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		Issuer:    "focusflow",
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyAccessToken(expired); err == nil {
		t.Error("expired token should not verify")
	}
}

func TestVerifyAccessTokenRejectsWrongIssuer(t *testing.T) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "user-123",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		Issuer:    "someone-else",
	}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyAccessToken(foreign); err == nil {
		t.Error("token with wrong issuer should not verify")
	}
}

func TestVerifyAccessTokenRejectsUnsignedAlg(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		Issuer:    "focusflow",
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := VerifyAccessToken(unsigned); err == nil {
		t.Error("unsigned token should not verify")
	}
}

func TestPasswordRoundtrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if !VerifyPassword(hash, "correct horse battery staple") {
		t.Error("correct password should verify")
	}
	if VerifyPassword(hash, "wrong password") {
		t.Error("wrong password should not verify")
	}
}

func TestVerifyPasswordEmptyHash(t *testing.T) {
	// SSO-only accounts carry an empty hash and can never password-login
	if VerifyPassword("", "") {
		t.Error("empty hash should never match")
	}
	if VerifyPassword("", "anything") {
		t.Error("empty hash should never match")
	}
}

func TestNewSessionTokenUnique(t *testing.T) {
	a := NewSessionToken()
	b := NewSessionToken()
	if len(a) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(a))
	}
	if a == b {
		t.Error("tokens should be unique")
	}
}
