package identity

import (
	"context"
	"time"
)

// Repository persists identities. Lookups return (nil, nil) when no row
// matches.
type Repository interface {
	Create(ctx context.Context, identity *Identity) error
	GetByID(ctx context.Context, id string) (*Identity, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Identity, error)
	// GetByAlias matches on the normalized alias key.
	GetByAlias(ctx context.Context, alias string) (*Identity, error)
	GetByCredentialHash(ctx context.Context, hash string) (*Identity, error)

	// SaveCredential overwrites the stored credential hash and expiry.
	SaveCredential(ctx context.Context, identity *Identity) error
	// ConsumeCredential clears the credential only if it still matches hash
	// and has not expired at now, and sets last_login_at. It reports whether
	// this call won.
	ConsumeCredential(ctx context.Context, id, hash string, now time.Time) (bool, error)
	UpdateRoles(ctx context.Context, identity *Identity) error
	TouchLastSeen(ctx context.Context, id string, at time.Time) error

	List(ctx context.Context, filter ListFilter) ([]*Identity, int64, error)
}

// ListFilter selects identities for the admin listing.
type ListFilter struct {
	Role     *Role
	Page     int
	PageSize int
}
