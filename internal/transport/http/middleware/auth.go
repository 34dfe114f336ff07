package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nitrmart-api/internal/domain"
	jwtinfra "github.com/nitrmart-api/internal/infrastructure/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenVerifier is the part of the JWT provider the middleware needs.
type TokenVerifier interface {
	Verify(token, tokenType string) (*jwtinfra.Claims, error)
}

// Auth returns middleware that validates the Bearer access token and injects
// its claims into the request context. Refresh tokens are rejected.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := verifier.Verify(tokenStr, jwtinfra.TypeAccess)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Given token not valid for any token type")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}

// ActorFromContext returns the authenticated actor, or the zero Actor when
// the request carries no claims.
func ActorFromContext(ctx context.Context) domain.Actor {
	if c, ok := ClaimsFromContext(ctx); ok {
		return c.Actor()
	}
	return domain.Actor{}
}
