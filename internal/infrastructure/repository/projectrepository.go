package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/infrastructure/persistence/mappers"
	"github.com/shadowiq/shadowiq/internal/infrastructure/persistence/models"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	apperrors "github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

type ProjectRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewProjectRepository(db *gorm.DB, logger logger.Interface) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	model := mappers.ProjectToModel(p)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return wrapWriteError("create project", err, "project code already exists")
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*project.Project, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *ProjectRepository) GetByCode(ctx context.Context, code string) (*project.Project, error) {
	return r.first(ctx, "code = ?", code)
}

func (r *ProjectRepository) first(ctx context.Context, query string, arg any) (*project.Project, error) {
	var model models.ProjectModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	p, err := mappers.ProjectToDomain(&model)
	if err != nil {
		r.logger.Errorw("failed to map project model", "id", model.ID, "error", err)
		return nil, err
	}
	return p, nil
}

// Update writes every mutable column guarded by the version the caller
// loaded. On success the aggregate carries the new version.
func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	model := mappers.ProjectToModel(p)
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.ProjectModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"assigned_analyst_id":   model.AssignedAnalystID,
			"status":                model.Status,
			"status_before_dispute": model.StatusBeforeDispute,
			"payment_status":        model.PaymentStatus,
			"agreed_price_cents":    model.AgreedPriceCents,
			"payment_intent_id":     model.PaymentIntentID,
			"payout_transfer_id":    model.PayoutTransferID,
			"version":               model.Version + 1,
			"updated_at":            model.UpdatedAt,
			"completed_at":          model.CompletedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update project: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.ProjectModel{}).Where("id = ?", model.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		if count == 0 {
			return apperrors.NewNotFoundError("project not found")
		}
		r.logger.Warnw("optimistic lock failed", "project_id", model.ID, "version", model.Version)
		return apperrors.NewConflictError("project was modified concurrently")
	}

	p.SetVersion(model.Version + 1)
	return nil
}

func (r *ProjectRepository) List(ctx context.Context, filter project.ListFilter) ([]*project.Project, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.ProjectModel{})

	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.AnalystID != nil {
		query = query.Where("assigned_analyst_id = ?", *filter.AnalystID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	var rows []models.ProjectModel
	if err := paginate(query.Order("created_at DESC, code ASC"), filter.Page, filter.PageSize).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	projects, err := mappers.ProjectsToDomain(rows)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}
