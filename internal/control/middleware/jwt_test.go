package middleware

import (
	"testing"
	"time"
)

func TestCreateThenVerifyToken(t *testing.T) {
	maker, err := NewJWTMaker("a-secret-at-least-32-characters-long")
	if err != nil {
		t.Fatalf("unexpected error constructing maker: %v", err)
	}

	token, issued, err := maker.CreateToken("operator-1", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error creating token: %v", err)
	}

	claims, err := maker.VerifyToken(token)
	if err != nil {
		t.Fatalf("unexpected error verifying token: %v", err)
	}
	if claims.Subject != "operator-1" {
		t.Fatalf("expected subject operator-1, got %s", claims.Subject)
	}
	if claims.ExpiresAt.Time != issued.ExpiresAt.Time {
		t.Fatalf("expected expiry to round-trip unchanged")
	}
}

func TestVerifyExpiredTokenFails(t *testing.T) {
	maker, _ := NewJWTMaker("a-secret-at-least-32-characters-long")
	token, _, _ := maker.CreateToken("operator-1", -time.Minute)

	if _, err := maker.VerifyToken(token); err == nil {
		t.Fatalf("expected an expired token to fail verification")
	}
}

func TestNewJWTMakerRejectsShortSecret(t *testing.T) {
	if _, err := NewJWTMaker("too-short"); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
}
