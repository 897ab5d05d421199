package dto

import (
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
)

// IdentityResponse is the API view of an identity. Email is only filled for
// the identity itself and for admins.
type IdentityResponse struct {
	ID          string  `json:"id"`
	Alias       string  `json:"alias"`
	Email       *string `json:"email,omitempty"`
	Role        string  `json:"role"`
	IsAdmin     bool    `json:"is_admin"`
	IsAnalyst   bool    `json:"is_analyst"`
	CreatedAt   string  `json:"created_at"`
	LastSeenAt  *string `json:"last_seen_at,omitempty"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
}

// ToIdentityResponse converts i. withEmail controls whether the email
// address is exposed.
func ToIdentityResponse(i *identity.Identity, withEmail bool) *IdentityResponse {
	if i == nil {
		return nil
	}
	resp := &IdentityResponse{
		ID:          i.ID(),
		Alias:       i.Alias(),
		Role:        i.Role().String(),
		IsAdmin:     i.IsAdmin(),
		IsAnalyst:   i.IsAnalyst(),
		CreatedAt:   biztime.FormatRFC3339(i.CreatedAt()),
		LastSeenAt:  biztime.FormatRFC3339Ptr(i.LastSeenAt()),
		LastLoginAt: biztime.FormatRFC3339Ptr(i.LastLoginAt()),
	}
	if withEmail {
		resp.Email = i.Email()
	}
	return resp
}

// IdentitySummary is the alias-only view shown to counterparties.
type IdentitySummary struct {
	ID    string `json:"id"`
	Alias string `json:"alias"`
}

func ToIdentitySummary(i *identity.Identity) *IdentitySummary {
	if i == nil {
		return nil
	}
	return &IdentitySummary{ID: i.ID(), Alias: i.Alias()}
}
