package usecases

import (
	"context"

	identitydto "github.com/shadowiq/shadowiq/internal/application/identity/dto"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
	"github.com/shadowiq/shadowiq/internal/shared/constants"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

type DashboardQuery struct {
	Viewer *identity.Identity
	// View narrows an admin or analyst to a lower role's listing. Empty means
	// the viewer's own role.
	View     identity.Role
	Status   string
	Page     int
	PageSize int
}

type DashboardResult struct {
	View       string                          `json:"view"`
	Projects   []*dto.ProjectResponse          `json:"projects"`
	Total      int64                           `json:"total"`
	Identities []*identitydto.IdentityResponse `json:"identities,omitempty"`
	Pagination utils.Pagination                `json:"-"`
}

type DashboardExecutor interface {
	Execute(ctx context.Context, query DashboardQuery) (*DashboardResult, error)
}

// DashboardUseCase lists what a viewer works on: every project for admins,
// assigned projects for analysts, own projects for clients.
type DashboardUseCase struct {
	projects   project.Repository
	identities identity.Repository
	logger     logger.Interface
}

func NewDashboardUseCase(projects project.Repository, identities identity.Repository, logger logger.Interface) *DashboardUseCase {
	return &DashboardUseCase{
		projects:   projects,
		identities: identities,
		logger:     logger,
	}
}

func (uc *DashboardUseCase) Execute(ctx context.Context, query DashboardQuery) (*DashboardResult, error) {
	if query.Viewer == nil {
		return nil, errors.NewUnauthorizedError("authentication required")
	}

	view := query.Viewer.Role()
	if query.View != "" {
		if !canView(view, query.View) {
			return nil, errors.NewForbiddenError("dashboard not available for this role")
		}
		view = query.View
	}

	p := utils.NormalizePagination(query.Page, query.PageSize)
	filter := project.ListFilter{Page: p.Page, PageSize: p.PageSize}
	if query.Status != "" {
		status, err := vo.NewProjectStatus(query.Status)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		filter.Status = &status
	}
	viewerID := query.Viewer.ID()
	switch view {
	case identity.RoleAnalyst:
		filter.AnalystID = &viewerID
	case identity.RoleClient:
		filter.ClientID = &viewerID
	}

	items, total, err := uc.projects.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list dashboard projects", "identity_id", viewerID, "view", view, "error", err)
		return nil, errors.NewInternalError("failed to load dashboard")
	}

	var ids []string
	for _, item := range items {
		ids = append(ids, participantIDs(item)...)
	}
	aliases := aliasesFor(ctx, uc.identities, uc.logger, ids...)

	result := &DashboardResult{
		View:       view.String(),
		Projects:   make([]*dto.ProjectResponse, 0, len(items)),
		Total:      total,
		Pagination: p,
	}
	for _, item := range items {
		result.Projects = append(result.Projects, dto.ToProjectResponse(item).WithAliases(aliases))
	}

	if view == identity.RoleAdmin {
		people, _, err := uc.identities.List(ctx, identity.ListFilter{Page: 1, PageSize: constants.DefaultPageSize})
		if err != nil {
			uc.logger.Warnw("failed to list identities for dashboard", "error", err)
		}
		for _, i := range people {
			result.Identities = append(result.Identities, identitydto.ToIdentityResponse(i, true))
		}
	}
	return result, nil
}

// canView reports whether a viewer with role may open the requested view.
// Admins see every view and analysts their own; clients only theirs.
func canView(role, view identity.Role) bool {
	switch role {
	case identity.RoleAdmin:
		return view.IsValid()
	case identity.RoleAnalyst:
		return view == identity.RoleAnalyst
	default:
		return view == identity.RoleClient
	}
}
