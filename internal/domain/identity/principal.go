package identity

import "context"

// Principal is the resolved caller of a request: an identity or anonymous.
type Principal struct {
	identity *Identity
}

// Anonymous returns the principal of an unauthenticated request.
func Anonymous() Principal {
	return Principal{}
}

// NewPrincipal wraps a resolved identity. A nil identity is anonymous.
func NewPrincipal(i *Identity) Principal {
	return Principal{identity: i}
}

func (p Principal) IsAnonymous() bool {
	return p.identity == nil
}

// Identity returns the identity or nil when anonymous.
func (p Principal) Identity() *Identity {
	return p.identity
}

// IdentityID returns "" when anonymous.
func (p Principal) IdentityID() string {
	if p.identity == nil {
		return ""
	}
	return p.identity.ID()
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored in ctx, or anonymous.
func PrincipalFromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Anonymous()
}
