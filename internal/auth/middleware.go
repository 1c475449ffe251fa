package auth

import (
	"net/http"
	"strings"
)

// Middleware requires a valid bearer JWT on non-exempt paths. A nil
// middleware (no secret configured) passes everything through.
type Middleware struct {
	Secret      []byte
	ExemptPaths []string
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, exemptPaths []string) *Middleware {
	return &Middleware{Secret: secret, ExemptPaths: exemptPaths}
}

// Wrap applies token validation to the handler.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil || len(m.Secret) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, path := range m.ExemptPaths {
			if r.URL.Path == path {
				next.ServeHTTP(w, r)
				return
			}
		}
		if _, err := ParseJWT(extractBearer(r), m.Secret); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
