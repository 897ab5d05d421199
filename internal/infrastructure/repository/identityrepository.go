package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/infrastructure/persistence/mappers"
	"github.com/shadowiq/shadowiq/internal/infrastructure/persistence/models"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	apperrors "github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

type IdentityRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewIdentityRepository(db *gorm.DB, logger logger.Interface) *IdentityRepository {
	return &IdentityRepository{db: db, logger: logger}
}

func (r *IdentityRepository) Create(ctx context.Context, i *identity.Identity) error {
	model := mappers.IdentityToModel(i)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return wrapWriteError("create identity", err, "alias already taken")
	}
	return nil
}

func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*identity.Identity, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *IdentityRepository) GetByAlias(ctx context.Context, alias string) (*identity.Identity, error) {
	return r.first(ctx, "alias_key = ?", identity.NormalizeAlias(alias))
}

func (r *IdentityRepository) GetByCredentialHash(ctx context.Context, hash string) (*identity.Identity, error) {
	if hash == "" {
		return nil, nil
	}
	return r.first(ctx, "credential_hash = ?", hash)
}

func (r *IdentityRepository) first(ctx context.Context, query string, arg any) (*identity.Identity, error) {
	var model models.IdentityModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	entity, err := mappers.IdentityToDomain(&model)
	if err != nil {
		r.logger.Errorw("failed to map identity model", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to map identity: %w", err)
	}
	return entity, nil
}

func (r *IdentityRepository) GetByIDs(ctx context.Context, ids []string) ([]*identity.Identity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.IdentityModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get identities: %w", err)
	}
	return mappers.IdentitiesToDomain(rows)
}

func (r *IdentityRepository) SaveCredential(ctx context.Context, i *identity.Identity) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.IdentityModel{}).
		Where("id = ?", i.ID()).
		Updates(map[string]any{
			"credential_hash":       i.CredentialHash(),
			"credential_expires_at": i.CredentialExpiresAt(),
		})
	if result.Error != nil {
		return wrapWriteError("save credential", result.Error, "credential collision")
	}
	return nil
}

// ConsumeCredential is a single conditional UPDATE so two concurrent
// verifications cannot both succeed.
func (r *IdentityRepository) ConsumeCredential(ctx context.Context, id, hash string, now time.Time) (bool, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.IdentityModel{}).
		Where("id = ? AND credential_hash = ? AND credential_expires_at > ?", id, hash, now).
		Updates(map[string]any{
			"credential_hash":       nil,
			"credential_expires_at": nil,
			"last_login_at":         now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to consume credential: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *IdentityRepository) UpdateRoles(ctx context.Context, i *identity.Identity) error {
	return r.update(ctx, i.ID(), map[string]any{
		"is_admin":   i.IsAdmin(),
		"is_analyst": i.IsAnalyst(),
	})
}

func (r *IdentityRepository) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.IdentityModel{}).
		Where("id = ?", id).
		Update("last_seen_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to touch identity: %w", err)
	}
	return nil
}

func (r *IdentityRepository) update(ctx context.Context, id string, values map[string]any) error {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.IdentityModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to update identity: %w", err)
	}
	if count == 0 {
		return apperrors.NewNotFoundError("identity not found")
	}
	if err := tx.Model(&models.IdentityModel{}).Where("id = ?", id).Updates(values).Error; err != nil {
		return fmt.Errorf("failed to update identity: %w", err)
	}
	return nil
}

func (r *IdentityRepository) List(ctx context.Context, filter identity.ListFilter) ([]*identity.Identity, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.IdentityModel{})

	if filter.Role != nil {
		switch *filter.Role {
		case identity.RoleAdmin:
			query = query.Where("is_admin = ?", true)
		case identity.RoleAnalyst:
			query = query.Where("is_admin = ? AND is_analyst = ?", false, true)
		case identity.RoleClient:
			query = query.Where("is_admin = ? AND is_analyst = ?", false, false)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count identities: %w", err)
	}

	var rows []models.IdentityModel
	if err := paginate(query.Order("alias_key ASC"), filter.Page, filter.PageSize).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list identities: %w", err)
	}

	entities, err := mappers.IdentitiesToDomain(rows)
	if err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}
