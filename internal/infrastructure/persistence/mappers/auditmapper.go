package mappers

import (
	"gorm.io/datatypes"

	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/downloadtoken"
	"github.com/shadowiq/shadowiq/internal/infrastructure/persistence/models"
)

func AuditEntryToModel(e *audit.Entry) *models.AuditLogModel {
	return &models.AuditLogModel{
		ID:         e.ID(),
		ProjectID:  e.ProjectID(),
		IdentityID: e.IdentityID(),
		Action:     e.Action().String(),
		Details:    datatypes.JSONMap(e.Details()),
		IPAddress:  e.IPAddress(),
		UserAgent:  e.UserAgent(),
		CreatedAt:  e.CreatedAt(),
	}
}

func AuditEntryToDomain(m *models.AuditLogModel) *audit.Entry {
	return audit.ReconstructEntry(
		m.ID,
		m.ProjectID,
		m.IdentityID,
		audit.Action(m.Action),
		audit.Details(m.Details),
		m.IPAddress,
		m.UserAgent,
		m.CreatedAt,
	)
}

func DownloadTokenToModel(t *downloadtoken.Token) *models.DownloadTokenModel {
	return &models.DownloadTokenModel{
		ID:            t.ID(),
		DeliverableID: t.DeliverableID(),
		TokenHash:     t.TokenHash(),
		OneTime:       t.OneTime(),
		ExpiresAt:     t.ExpiresAt(),
		UsedAt:        t.UsedAt(),
		CreatedBy:     t.CreatedBy(),
		CreatedAt:     t.CreatedAt(),
	}
}

func DownloadTokenToDomain(m *models.DownloadTokenModel) *downloadtoken.Token {
	return downloadtoken.ReconstructToken(
		m.ID,
		m.DeliverableID,
		m.TokenHash,
		m.OneTime,
		m.ExpiresAt,
		m.UsedAt,
		m.CreatedBy,
		m.CreatedAt,
	)
}
