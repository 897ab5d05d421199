package models

import (
	"time"

	"github.com/shadowiq/shadowiq/internal/shared/constants"
)

type IdentityModel struct {
	ID                  string     `gorm:"primaryKey;size:36"`
	Alias               string     `gorm:"size:64;not null"`
	AliasKey            string     `gorm:"uniqueIndex:idx_identities_alias_key;size:128;not null"`
	Email               *string    `gorm:"size:255;index:idx_identities_email"`
	CredentialHash      *string    `gorm:"uniqueIndex:idx_identities_credential_hash;size:64"`
	CredentialExpiresAt *time.Time
	IsAdmin             bool `gorm:"not null;default:false"`
	IsAnalyst           bool `gorm:"not null;default:false"`
	CreatedAt           time.Time
	LastSeenAt          *time.Time
	LastLoginAt         *time.Time
}

func (IdentityModel) TableName() string {
	return constants.TableIdentities
}
