// Package http provides HTTP middleware and handlers for session
// authentication.
package http

import (
	"context"

	authDomain "github.com/parsivoice/pasban/internal/auth/domain"
)

// claimsKey is a context key type for storing authenticated session claims.
type claimsKey struct{}

// WithClaims stores authenticated session claims in the context.
// This is typically called by the authentication middleware after successful
// token validation.
func WithClaims(ctx context.Context, claims authDomain.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaims retrieves authenticated session claims from the context.
// Returns (claims, true) if claims are present, or (zero, false) if no claims
// were set. This is typically called by handlers or subsequent middleware that
// need the authenticated caller.
func GetClaims(ctx context.Context) (authDomain.SessionClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(authDomain.SessionClaims)
	return claims, ok
}
