// Package identity models pseudonymous accounts. An Identity carries two
// role flags; a client is an identity with neither flag set.
package identity

import (
	"fmt"
	"strings"
	"time"
)

// Role is the effective role of an identity. When both flags are set admin
// takes precedence.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
	RoleClient  Role = "client"
)

func (r Role) String() string {
	return string(r)
}

// DashboardRoute is where a freshly signed-in identity of this role lands.
func (r Role) DashboardRoute() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleAnalyst:
		return "/analyst/dashboard"
	default:
		return "/dashboard"
	}
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleAnalyst || r == RoleClient
}

// Identity is a pseudonymous account. It is never deleted.
type Identity struct {
	id                  string
	alias               string
	aliasKey            string
	email               *string
	credentialHash      *string
	credentialExpiresAt *time.Time
	isAdmin             bool
	isAnalyst           bool
	createdAt           time.Time
	lastSeenAt          *time.Time
	lastLoginAt         *time.Time
}

// NewIdentity creates a client identity with the given alias.
func NewIdentity(id, alias string, email *string, now time.Time) (*Identity, error) {
	if id == "" {
		return nil, fmt.Errorf("identity ID is required")
	}
	if err := ValidateAlias(alias); err != nil {
		return nil, err
	}

	return &Identity{
		id:        id,
		alias:     strings.TrimSpace(alias),
		aliasKey:  NormalizeAlias(alias),
		email:     normalizeEmail(email),
		createdAt: now,
	}, nil
}

// ReconstructIdentity rebuilds an identity from persistence.
func ReconstructIdentity(
	id string,
	alias string,
	email *string,
	credentialHash *string,
	credentialExpiresAt *time.Time,
	isAdmin bool,
	isAnalyst bool,
	createdAt time.Time,
	lastSeenAt *time.Time,
	lastLoginAt *time.Time,
) (*Identity, error) {
	if id == "" {
		return nil, fmt.Errorf("identity ID is required")
	}
	if alias == "" {
		return nil, fmt.Errorf("alias is required")
	}
	if (credentialHash == nil) != (credentialExpiresAt == nil) {
		return nil, fmt.Errorf("credential hash and expiry must be set together")
	}

	return &Identity{
		id:                  id,
		alias:               alias,
		aliasKey:            NormalizeAlias(alias),
		email:               email,
		credentialHash:      credentialHash,
		credentialExpiresAt: credentialExpiresAt,
		isAdmin:             isAdmin,
		isAnalyst:           isAnalyst,
		createdAt:           createdAt,
		lastSeenAt:          lastSeenAt,
		lastLoginAt:         lastLoginAt,
	}, nil
}

func (i *Identity) ID() string {
	return i.id
}

func (i *Identity) Alias() string {
	return i.alias
}

// AliasKey is the normalized alias used for uniqueness.
func (i *Identity) AliasKey() string {
	return i.aliasKey
}

func (i *Identity) Email() *string {
	return i.email
}

func (i *Identity) CredentialHash() *string {
	return i.credentialHash
}

func (i *Identity) CredentialExpiresAt() *time.Time {
	return i.credentialExpiresAt
}

func (i *Identity) IsAdmin() bool {
	return i.isAdmin
}

func (i *Identity) IsAnalyst() bool {
	return i.isAnalyst
}

// IsClient is true only when neither role flag is set.
func (i *Identity) IsClient() bool {
	return !i.isAdmin && !i.isAnalyst
}

// Role returns the effective role.
func (i *Identity) Role() Role {
	switch {
	case i.isAdmin:
		return RoleAdmin
	case i.isAnalyst:
		return RoleAnalyst
	default:
		return RoleClient
	}
}

func (i *Identity) CreatedAt() time.Time {
	return i.createdAt
}

func (i *Identity) LastSeenAt() *time.Time {
	return i.lastSeenAt
}

func (i *Identity) LastLoginAt() *time.Time {
	return i.lastLoginAt
}

// IssueCredential stores a new magic-link credential, replacing any live one.
func (i *Identity) IssueCredential(hash string, expiresAt time.Time) error {
	if hash == "" {
		return fmt.Errorf("credential hash is required")
	}
	i.credentialHash = &hash
	i.credentialExpiresAt = &expiresAt
	return nil
}

// HasCredential reports whether a credential is stored, live or expired.
func (i *Identity) HasCredential() bool {
	return i.credentialHash != nil
}

// CredentialExpired reports whether the stored credential is unusable at now.
// Expiry is inclusive: a credential is expired at exactly its expiry instant.
func (i *Identity) CredentialExpired(now time.Time) bool {
	if i.credentialExpiresAt == nil {
		return true
	}
	return !now.Before(*i.credentialExpiresAt)
}

// ConsumeCredential clears the credential and records the login.
func (i *Identity) ConsumeCredential(now time.Time) {
	i.credentialHash = nil
	i.credentialExpiresAt = nil
	i.lastLoginAt = &now
}

// Touch records activity.
func (i *Identity) Touch(now time.Time) {
	i.lastSeenAt = &now
}

// SetRoles replaces both role flags.
func (i *Identity) SetRoles(isAdmin, isAnalyst bool) {
	i.isAdmin = isAdmin
	i.isAnalyst = isAnalyst
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	e := strings.ToLower(strings.TrimSpace(*email))
	if e == "" {
		return nil
	}
	return &e
}
