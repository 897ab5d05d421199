package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/downloadtoken"
	"github.com/shadowiq/shadowiq/internal/infrastructure/persistence/mappers"
	"github.com/shadowiq/shadowiq/internal/infrastructure/persistence/models"
	"github.com/shadowiq/shadowiq/internal/shared/db"
)

// AuditRepository only inserts and reads; the table is append-only.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, e *audit.Entry) error {
	if err := db.GetTxFromContext(ctx, r.db).Create(mappers.AuditEntryToModel(e)).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// List returns newest entries first. IDs are ULIDs, so they break ties
// between entries written in the same instant.
func (r *AuditRepository) List(ctx context.Context, filter audit.ListFilter) ([]*audit.Entry, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.AuditLogModel{})

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.IdentityID != nil {
		query = query.Where("identity_id = ?", *filter.IdentityID)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", filter.Action.String())
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		query = query.Where("created_at < ?", *filter.Until)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	var rows []models.AuditLogModel
	if err := paginate(query.Order("created_at DESC, id DESC"), filter.Page, filter.PageSize).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}

	out := make([]*audit.Entry, len(rows))
	for i := range rows {
		out[i] = mappers.AuditEntryToDomain(&rows[i])
	}
	return out, total, nil
}

type DownloadTokenRepository struct {
	db *gorm.DB
}

func NewDownloadTokenRepository(db *gorm.DB) *DownloadTokenRepository {
	return &DownloadTokenRepository{db: db}
}

func (r *DownloadTokenRepository) Create(ctx context.Context, t *downloadtoken.Token) error {
	if err := db.GetTxFromContext(ctx, r.db).Create(mappers.DownloadTokenToModel(t)).Error; err != nil {
		return wrapWriteError("create download token", err, "download token collision")
	}
	return nil
}

func (r *DownloadTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*downloadtoken.Token, error) {
	var model models.DownloadTokenModel
	if err := db.GetTxFromContext(ctx, r.db).Where("token_hash = ?", tokenHash).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get download token: %w", err)
	}
	return mappers.DownloadTokenToDomain(&model), nil
}

func (r *DownloadTokenRepository) MarkUsed(ctx context.Context, id string, at time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.DownloadTokenModel{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark download token used: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}
