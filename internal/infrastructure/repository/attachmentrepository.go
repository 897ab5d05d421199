package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/infrastructure/persistence/mappers"
	"github.com/shadowiq/shadowiq/internal/infrastructure/persistence/models"
	"github.com/shadowiq/shadowiq/internal/shared/db"
)

type ProjectFileRepository struct {
	db *gorm.DB
}

func NewProjectFileRepository(db *gorm.DB) *ProjectFileRepository {
	return &ProjectFileRepository{db: db}
}

func (r *ProjectFileRepository) Create(ctx context.Context, f *project.ProjectFile) error {
	if err := db.GetTxFromContext(ctx, r.db).Create(mappers.ProjectFileToModel(f)).Error; err != nil {
		return wrapWriteError("create project file", err, "file already recorded")
	}
	return nil
}

func (r *ProjectFileRepository) GetByID(ctx context.Context, id string) (*project.ProjectFile, error) {
	var model models.ProjectFileModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project file: %w", err)
	}
	return mappers.ProjectFileToDomain(&model), nil
}

func (r *ProjectFileRepository) ListByProject(ctx context.Context, projectID string) ([]*project.ProjectFile, error) {
	var rows []models.ProjectFileModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}

	out := make([]*project.ProjectFile, len(rows))
	for i := range rows {
		out[i] = mappers.ProjectFileToDomain(&rows[i])
	}
	return out, nil
}

type DeliverableRepository struct {
	db *gorm.DB
}

func NewDeliverableRepository(db *gorm.DB) *DeliverableRepository {
	return &DeliverableRepository{db: db}
}

func (r *DeliverableRepository) Create(ctx context.Context, d *project.Deliverable) error {
	if err := db.GetTxFromContext(ctx, r.db).Create(mappers.DeliverableToModel(d)).Error; err != nil {
		return wrapWriteError("create deliverable", err, "deliverable already recorded")
	}
	return nil
}

func (r *DeliverableRepository) GetByID(ctx context.Context, id string) (*project.Deliverable, error) {
	var model models.DeliverableModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get deliverable: %w", err)
	}
	return mappers.DeliverableToDomain(&model), nil
}

func (r *DeliverableRepository) ListByProject(ctx context.Context, projectID string) ([]*project.Deliverable, error) {
	var rows []models.DeliverableModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list deliverables: %w", err)
	}

	out := make([]*project.Deliverable, len(rows))
	for i := range rows {
		out[i] = mappers.DeliverableToDomain(&rows[i])
	}
	return out, nil
}

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *project.Message) error {
	if err := db.GetTxFromContext(ctx, r.db).Create(mappers.MessageToModel(msg)).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByProject(ctx context.Context, projectID string) ([]*project.Message, error) {
	var rows []models.MessageModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	out := make([]*project.Message, len(rows))
	for i := range rows {
		out[i] = mappers.MessageToDomain(&rows[i])
	}
	return out, nil
}

func (r *MessageRepository) MarkReadFor(ctx context.Context, projectID, readerID string) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.MessageModel{}).
		Where("project_id = ? AND sender_id <> ? AND is_read = ?", projectID, readerID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", result.Error)
	}
	return result.RowsAffected, nil
}
