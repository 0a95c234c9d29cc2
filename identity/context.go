package identity

import "context"

// contextKey is unexported so no other package can collide with it.
type contextKey struct{}

// WithIdentity stores an authenticated identity in the context. A nil
// identity returns the context unchanged.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	if id == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext retrieves the authenticated identity attached by the
// authentication middleware, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok
}
