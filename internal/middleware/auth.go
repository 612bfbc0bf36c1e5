package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/payvost/payvost-web-sub011/internal/auth"
	"github.com/payvost/payvost-web-sub011/internal/http/respond"
)

type contextKey string

const claimsKey contextKey = "claims"

// Claims returns the authenticated caller, or nil.
func Claims(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

// UserID returns the authenticated user's ID, or "".
func UserID(ctx context.Context) string {
	if c := Claims(ctx); c != nil {
		return c.UserID()
	}
	return ""
}

// WithClaims stores claims on the context.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// Authenticator validates Bearer tokens.
type Authenticator struct {
	tokens *auth.TokenManager
}

// NewAuthenticator wraps a token manager.
func NewAuthenticator(tokens *auth.TokenManager) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Require rejects requests without a valid Bearer token.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respond.Error(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			respond.Error(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			return
		}
		claims, err := a.tokens.Validate(strings.TrimSpace(token))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireRole authenticates and then checks the caller holds one of roles.
func (a *Authenticator) RequireRole(roles []string, next http.Handler) http.Handler {
	return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := Claims(r.Context()); c == nil || !slices.Contains(roles, c.Role) {
			respond.Error(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	}))
}
