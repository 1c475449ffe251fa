package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, secret []byte, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		Role: "operator",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestParseJWT(t *testing.T) {
	secret := []byte("test-secret")
	token := signedToken(t, secret, time.Now().Add(time.Hour))

	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != "operator" {
		t.Fatalf("role = %q", claims.Role)
	}

	if _, err := ParseJWT(token, []byte("other-secret")); err == nil {
		t.Fatalf("wrong secret must fail")
	}
	if _, err := ParseJWT("", secret); err == nil {
		t.Fatalf("empty token must fail")
	}
	expired := signedToken(t, secret, time.Now().Add(-time.Hour))
	if _, err := ParseJWT(expired, secret); err == nil {
		t.Fatalf("expired token must fail")
	}
}

func TestMiddleware(t *testing.T) {
	secret := []byte("test-secret")
	middleware := NewMiddleware(secret, []string{"/healthz"})
	wrapped := middleware.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	resp := httptest.NewRecorder()
	wrapped.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, secret, time.Now().Add(time.Hour)))
	resp = httptest.NewRecorder()
	wrapped.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("valid token status = %d, want 200", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp = httptest.NewRecorder()
	wrapped.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("exempt path status = %d, want 200", resp.Code)
	}
}

func TestMiddlewareWithoutSecret(t *testing.T) {
	wrapped := NewMiddleware(nil, nil).Wrap(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	resp := httptest.NewRecorder()
	wrapped.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("no-secret middleware must pass through, got %d", resp.Code)
	}
}
