// ABOUTME: Tests for HTTP authentication middleware
// ABOUTME: Covers token extraction, validation, and identity propagation

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPAuthMiddleware_ValidToken(t *testing.T) {
	verifier := newTestVerifier(t)
	token, err := verifier.Generate("user-123", time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var gotAuthCtx *AuthContext
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthCtx = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/users/user-123", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	HTTPAuthMiddleware(verifier)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if gotAuthCtx == nil {
		t.Fatal("expected AuthContext in context")
	}
	if gotAuthCtx.UserID != "user-123" {
		t.Errorf("expected user ID 'user-123', got '%s'", gotAuthCtx.UserID)
	}
}

func TestHTTPAuthMiddleware_MissingAuthHeader(t *testing.T) {
	verifier := newTestVerifier(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/forests", nil)
	rec := httptest.NewRecorder()

	HTTPAuthMiddleware(verifier)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing authorization header") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHTTPAuthMiddleware_MalformedHeader(t *testing.T) {
	verifier := newTestVerifier(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/forests", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()

			HTTPAuthMiddleware(verifier)(handler).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rec.Code)
			}
		})
	}
}

func TestHTTPAuthMiddleware_InvalidToken(t *testing.T) {
	verifier := newTestVerifier(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/forests", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	rec := httptest.NewRecorder()

	HTTPAuthMiddleware(verifier)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error body, got Content-Type %q", ct)
	}
}

func TestHTTPAuthMiddleware_ExpiredToken(t *testing.T) {
	verifier := newTestVerifier(t)
	token, err := verifier.Generate("user-123", -time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/forests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	HTTPAuthMiddleware(verifier)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantErr   bool
	}{
		{"valid", "Bearer abc123", "abc123", false},
		{"missing", "", "", true},
		{"wrong scheme", "Basic abc123", "", true},
		{"empty token", "Bearer ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, errMsg := extractBearerToken(tt.header)
			if tt.wantErr && errMsg == "" {
				t.Error("expected error message")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error message: %s", errMsg)
			}
			if token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}
		})
	}
}
