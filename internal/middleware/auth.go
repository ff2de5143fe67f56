package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/streambox/backend/internal/auth"
	"github.com/streambox/backend/internal/logging"
)

// TokenVerifier checks a bearer token and returns the identity claims it carries.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// RequireAuth guards protected routes. It extracts the bearer token from the
// Authorization header, verifies it, and attaches the resolved claims to the
// request context. Handlers behind the guard trust the claims without
// re-verification.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := logging.FromContext(ctx)

			header := r.Header.Get("Authorization")
			if header == "" {
				logger.Warn("request missing authorization header")
				unauthorized(w, "no token provided")
				return
			}

			// Expected shape: Bearer <token>
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
				logger.Warn("malformed authorization header")
				unauthorized(w, "invalid token format")
				return
			}

			claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				logger.Warn("token verification failed", "error", err)
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(ctx, claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
