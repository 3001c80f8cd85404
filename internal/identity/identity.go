package identity

import "context"

// Caller is the principal issuing a request, as asserted by the external
// identity provider. The zero value is the anonymous caller, which is granted
// public-read access only.
type Caller struct {
	AccountID string
	Anonymous bool
}

// Anonymous is the distinguished unauthenticated caller.
var Anonymous = Caller{Anonymous: true}

// Authenticated reports whether the caller carries a real account identity.
func (c Caller) Authenticated() bool {
	return !c.Anonymous && c.AccountID != ""
}

type contextKey struct{}

// WithCaller attaches the caller to the context for transport plumbing.
// Services receive the caller as an explicit parameter; this is only the
// bridge between middleware and handlers.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext extracts the caller, defaulting to anonymous.
func FromContext(ctx context.Context) Caller {
	if c, ok := ctx.Value(contextKey{}).(Caller); ok {
		return c
	}
	return Anonymous
}
