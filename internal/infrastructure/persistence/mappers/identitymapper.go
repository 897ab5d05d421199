package mappers

import (
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/infrastructure/persistence/models"
)

func IdentityToModel(i *identity.Identity) *models.IdentityModel {
	return &models.IdentityModel{
		ID:                  i.ID(),
		Alias:               i.Alias(),
		AliasKey:            i.AliasKey(),
		Email:               i.Email(),
		CredentialHash:      i.CredentialHash(),
		CredentialExpiresAt: i.CredentialExpiresAt(),
		IsAdmin:             i.IsAdmin(),
		IsAnalyst:           i.IsAnalyst(),
		CreatedAt:           i.CreatedAt(),
		LastSeenAt:          i.LastSeenAt(),
		LastLoginAt:         i.LastLoginAt(),
	}
}

func IdentityToDomain(m *models.IdentityModel) (*identity.Identity, error) {
	return identity.ReconstructIdentity(
		m.ID,
		m.Alias,
		m.Email,
		m.CredentialHash,
		m.CredentialExpiresAt,
		m.IsAdmin,
		m.IsAnalyst,
		m.CreatedAt,
		m.LastSeenAt,
		m.LastLoginAt,
	)
}

func IdentitiesToDomain(ms []models.IdentityModel) ([]*identity.Identity, error) {
	out := make([]*identity.Identity, 0, len(ms))
	for i := range ms {
		entity, err := IdentityToDomain(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}
