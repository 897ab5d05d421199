package auditlog

import (
	"context"
	"time"

	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/id"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

type ListEntriesQuery struct {
	ProjectID  string
	IdentityID string
	Action     string
	Since      *time.Time
	Until      *time.Time
	Page       int
	PageSize   int
}

// EntryDTO is the admin view of an audit entry.
type EntryDTO struct {
	ID         string         `json:"id"`
	ProjectID  *string        `json:"project_id,omitempty"`
	IdentityID *string        `json:"identity_id,omitempty"`
	Action     string         `json:"action"`
	Details    map[string]any `json:"details"`
	IPAddress  *string        `json:"ip_address,omitempty"`
	UserAgent  *string        `json:"user_agent,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

type ListEntriesResult struct {
	Entries    []EntryDTO
	Total      int64
	Pagination utils.Pagination
}

type ListEntriesExecutor interface {
	Execute(ctx context.Context, query ListEntriesQuery) (*ListEntriesResult, error)
}

type ListEntriesUseCase struct {
	repo   audit.Repository
	logger logger.Interface
}

func NewListEntriesUseCase(repo audit.Repository, logger logger.Interface) *ListEntriesUseCase {
	return &ListEntriesUseCase{
		repo:   repo,
		logger: logger,
	}
}

func (uc *ListEntriesUseCase) Execute(ctx context.Context, query ListEntriesQuery) (*ListEntriesResult, error) {
	filter, err := uc.buildFilter(query)
	if err != nil {
		return nil, err
	}

	entries, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list audit entries", "error", err)
		return nil, errors.NewInternalError("failed to list audit entries")
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, ToEntryDTO(e))
	}

	return &ListEntriesResult{
		Entries:    dtos,
		Total:      total,
		Pagination: utils.NormalizePagination(filter.Page, filter.PageSize),
	}, nil
}

func (uc *ListEntriesUseCase) buildFilter(query ListEntriesQuery) (audit.ListFilter, error) {
	p := utils.NormalizePagination(query.Page, query.PageSize)
	filter := audit.ListFilter{
		Since:    query.Since,
		Until:    query.Until,
		Page:     p.Page,
		PageSize: p.PageSize,
	}

	if query.ProjectID != "" {
		projectID, ok := id.CanonicalUUID(query.ProjectID)
		if !ok {
			return filter, errors.NewValidationError("project_id must be a UUID")
		}
		filter.ProjectID = &projectID
	}
	if query.IdentityID != "" {
		identityID, ok := id.CanonicalUUID(query.IdentityID)
		if !ok {
			return filter, errors.NewValidationError("identity_id must be a UUID")
		}
		filter.IdentityID = &identityID
	}
	if query.Action != "" {
		action, err := audit.NewAction(query.Action)
		if err != nil {
			return filter, errors.NewValidationError(err.Error())
		}
		filter.Action = &action
	}
	if query.Since != nil && query.Until != nil && query.Until.Before(*query.Since) {
		return filter, errors.NewValidationError("until must not be before since")
	}
	return filter, nil
}

// ToEntryDTO converts a domain entry for API output.
func ToEntryDTO(e *audit.Entry) EntryDTO {
	return EntryDTO{
		ID:         e.ID(),
		ProjectID:  e.ProjectID(),
		IdentityID: e.IdentityID(),
		Action:     e.Action().String(),
		Details:    e.Details(),
		IPAddress:  e.IPAddress(),
		UserAgent:  e.UserAgent(),
		CreatedAt:  biztime.FormatRFC3339(e.CreatedAt()),
	}
}
