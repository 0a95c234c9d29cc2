package servicetoken

import "context"

type contextKey struct{}

// WithClaims attaches validated service claims to the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	if claims == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, claims)
}

// FromContext retrieves service claims attached by the service-token
// middleware, if any.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	return claims, ok
}
