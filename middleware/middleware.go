package middleware

import (
	"context"
	"net/http"
	"strings"

	"lindsay-precast/backend/design-service/logging"
	"lindsay-precast/backend/design-service/utils"
)

type contextKey string

const claimsKey contextKey = "claims"

// JWTAuthMiddleware validates the bearer token and stores its claims in the
// request context for the handlers.
func JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ValidateToken(tokenStr)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// WithClaims returns a context carrying the given claims, the way
// JWTAuthMiddleware stores them after validating a token.
func WithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromRequest returns the authenticated caller's claims, or nil when the
// request did not pass through JWTAuthMiddleware.
func ClaimsFromRequest(r *http.Request) *utils.Claims {
	claims, _ := r.Context().Value(claimsKey).(*utils.Claims)
	return claims
}
