// Package downloadtoken models session-independent capabilities to fetch
// one deliverable.
package downloadtoken

import (
	"context"
	"fmt"
	"time"
)

// DefaultTTL is the lifetime of a token when none is requested.
const DefaultTTL = time.Hour

// MaxTTL caps requested lifetimes.
const MaxTTL = 7 * 24 * time.Hour

// Token grants access to a deliverable until it expires or, for one-time
// tokens, until it is redeemed. Only the hash of the token value is stored.
type Token struct {
	id            string
	deliverableID string
	tokenHash     string
	oneTime       bool
	expiresAt     time.Time
	usedAt        *time.Time
	createdBy     *string
	createdAt     time.Time
}

// NewToken creates an unused token.
func NewToken(id, deliverableID, tokenHash string, oneTime bool, expiresAt time.Time, createdBy string, now time.Time) (*Token, error) {
	if id == "" || deliverableID == "" {
		return nil, fmt.Errorf("token ID and deliverable ID are required")
	}
	if tokenHash == "" {
		return nil, fmt.Errorf("token hash is required")
	}
	if !expiresAt.After(now) {
		return nil, fmt.Errorf("expiry must be in the future")
	}

	var by *string
	if createdBy != "" {
		by = &createdBy
	}
	return &Token{
		id:            id,
		deliverableID: deliverableID,
		tokenHash:     tokenHash,
		oneTime:       oneTime,
		expiresAt:     expiresAt,
		createdBy:     by,
		createdAt:     now,
	}, nil
}

// ReconstructToken rebuilds a token from persistence.
func ReconstructToken(id, deliverableID, tokenHash string, oneTime bool, expiresAt time.Time, usedAt *time.Time, createdBy *string, createdAt time.Time) *Token {
	return &Token{
		id:            id,
		deliverableID: deliverableID,
		tokenHash:     tokenHash,
		oneTime:       oneTime,
		expiresAt:     expiresAt,
		usedAt:        usedAt,
		createdBy:     createdBy,
		createdAt:     createdAt,
	}
}

func (t *Token) ID() string {
	return t.id
}

func (t *Token) DeliverableID() string {
	return t.deliverableID
}

func (t *Token) TokenHash() string {
	return t.tokenHash
}

func (t *Token) OneTime() bool {
	return t.oneTime
}

func (t *Token) ExpiresAt() time.Time {
	return t.expiresAt
}

func (t *Token) UsedAt() *time.Time {
	return t.usedAt
}

func (t *Token) CreatedBy() *string {
	return t.createdBy
}

func (t *Token) CreatedAt() time.Time {
	return t.createdAt
}

// IsExpired is inclusive of the expiry instant.
func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.expiresAt)
}

// IsConsumed reports whether a one-time token has been redeemed.
func (t *Token) IsConsumed() bool {
	return t.oneTime && t.usedAt != nil
}

// Repository persists download tokens. GetByHash returns (nil, nil) when no
// row matches.
type Repository interface {
	Create(ctx context.Context, token *Token) error
	GetByHash(ctx context.Context, tokenHash string) (*Token, error)
	// MarkUsed sets used_at only if it is still null and reports whether
	// this call won.
	MarkUsed(ctx context.Context, id string, at time.Time) (bool, error)
}
