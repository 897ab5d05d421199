package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/shadowiq/shadowiq/internal/shared/constants"
)

// AuditLogModel rows are inserted once and never updated.
type AuditLogModel struct {
	ID         string            `gorm:"primaryKey;size:26"`
	ProjectID  *string           `gorm:"size:36;index:idx_audit_log_project_id"`
	IdentityID *string           `gorm:"size:36;index:idx_audit_log_identity_id"`
	Action     string            `gorm:"size:40;not null;index:idx_audit_log_action"`
	Details    datatypes.JSONMap `gorm:"not null"`
	IPAddress  *string           `gorm:"size:45"`
	UserAgent  *string           `gorm:"size:512"`
	CreatedAt  time.Time         `gorm:"not null;index:idx_audit_log_created_at"`
}

func (AuditLogModel) TableName() string {
	return constants.TableAuditLog
}

type DownloadTokenModel struct {
	ID            string    `gorm:"primaryKey;size:36"`
	DeliverableID string    `gorm:"size:36;not null;index:idx_download_tokens_deliverable_id"`
	TokenHash     string    `gorm:"uniqueIndex:idx_download_tokens_token_hash;size:64;not null"`
	OneTime       bool      `gorm:"not null"`
	ExpiresAt     time.Time `gorm:"not null"`
	UsedAt        *time.Time
	CreatedBy     *string `gorm:"size:36"`
	CreatedAt     time.Time
}

func (DownloadTokenModel) TableName() string {
	return constants.TableDownloadTokens
}
