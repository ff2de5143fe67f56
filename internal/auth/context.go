package auth

import "context"

// ctxKey is an unexported type for context keys defined in this package.
type ctxKey string

const claimsKey ctxKey = "claims"

// WithClaims stores verified identity claims on the context.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	if ctx == nil {
		return ctx
	}
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext retrieves the claims attached by the access guard. The
// boolean is false when the request never passed through authentication.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	if ctx == nil {
		return Claims{}, false
	}
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}
