// ABOUTME: Unit tests for JWT token verification and generation
// ABOUTME: Tests valid tokens, invalid tokens, expired tokens, and secret length enforcement

package auth

import (
	"errors"
	"testing"
	"time"
)

// testSecret is a 32-byte secret that meets the MinSecretLength requirement.
var testSecret = []byte("ledger-token-test-secret-32bytes")

func newTestVerifier(t *testing.T) *JWTVerifier {
	t.Helper()
	verifier, err := NewJWTVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}
	return verifier
}

func TestNewJWTVerifier_SecretTooShort(t *testing.T) {
	_, err := NewJWTVerifier([]byte("short"))
	if !errors.Is(err, ErrSecretTooShort) {
		t.Errorf("NewJWTVerifier() error = %v, want ErrSecretTooShort", err)
	}

	_, err = NewJWTVerifier(nil)
	if !errors.Is(err, ErrSecretTooShort) {
		t.Errorf("NewJWTVerifier(nil) error = %v, want ErrSecretTooShort", err)
	}
}

func TestJWTVerifier_ValidToken(t *testing.T) {
	verifier := newTestVerifier(t)

	userID := "user-123"
	token, err := verifier.Generate(userID, time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	gotID, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	if gotID != userID {
		t.Errorf("Verify() = %q, want %q", gotID, userID)
	}
}

func TestJWTVerifier_InvalidToken(t *testing.T) {
	verifier := newTestVerifier(t)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "garbage token",
			token: "not-a-jwt-token",
		},
		{
			name:  "malformed JWT",
			token: "header.payload.signature",
		},
		{
			name: "wrong secret",
			token: func() string {
				other, _ := NewJWTVerifier([]byte("a-completely-different-secret-32b"))
				token, _ := other.Generate("user-123", time.Hour)
				return token
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			if err == nil {
				t.Fatal("Verify() should have returned an error")
			}
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestJWTVerifier_ExpiredToken(t *testing.T) {
	verifier := newTestVerifier(t)

	// Generate a token that expired 1 hour ago
	token, err := verifier.Generate("user-123", -time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	_, err = verifier.Verify(token)
	if err == nil {
		t.Fatal("Verify() should have returned an error for expired token")
	}

	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestJWTVerifier_DifferentUsers(t *testing.T) {
	verifier := newTestVerifier(t)

	users := []string{"user-1", "user-2", "owner-root"}

	for _, userID := range users {
		token, err := verifier.Generate(userID, time.Hour)
		if err != nil {
			t.Fatalf("Generate(%q) error = %v", userID, err)
		}

		gotID, err := verifier.Verify(token)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}

		if gotID != userID {
			t.Errorf("Verify() = %q, want %q", gotID, userID)
		}
	}
}
