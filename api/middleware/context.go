package middleware

import (
	"context"

	pkgauth "github.com/supermarketlabs/catalog-backend/pkg/auth"
)

type contextKey string

const ctxClaims contextKey = "access_claims"

// ClaimsFromContext returns the verified token claims seeded by Auth, or nil.
func ClaimsFromContext(ctx context.Context) *pkgauth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*pkgauth.AccessTokenClaims); ok {
		return v
	}
	return nil
}

// WithClaims injects token claims into the context; used by tests.
func WithClaims(ctx context.Context, claims *pkgauth.AccessTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}
