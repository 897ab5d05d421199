package usecases

import (
	"context"

	"github.com/shadowiq/shadowiq/internal/application/identity/dto"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

type ListIdentitiesQuery struct {
	Role     string
	Page     int
	PageSize int
}

type ListIdentitiesResult struct {
	Identities []*dto.IdentityResponse
	Total      int64
	Pagination utils.Pagination
}

type ListIdentitiesExecutor interface {
	Execute(ctx context.Context, query ListIdentitiesQuery) (*ListIdentitiesResult, error)
}

type ListIdentitiesUseCase struct {
	identities identity.Repository
	logger     logger.Interface
}

func NewListIdentitiesUseCase(identities identity.Repository, logger logger.Interface) *ListIdentitiesUseCase {
	return &ListIdentitiesUseCase{
		identities: identities,
		logger:     logger,
	}
}

func (uc *ListIdentitiesUseCase) Execute(ctx context.Context, query ListIdentitiesQuery) (*ListIdentitiesResult, error) {
	p := utils.NormalizePagination(query.Page, query.PageSize)
	filter := identity.ListFilter{Page: p.Page, PageSize: p.PageSize}
	if query.Role != "" {
		role := identity.Role(query.Role)
		if !role.IsValid() {
			return nil, errors.NewValidationError("role must be one of admin, analyst, client")
		}
		filter.Role = &role
	}

	items, total, err := uc.identities.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list identities", "error", err)
		return nil, errors.NewInternalError("failed to list identities")
	}

	out := make([]*dto.IdentityResponse, 0, len(items))
	for _, i := range items {
		out = append(out, dto.ToIdentityResponse(i, true))
	}
	return &ListIdentitiesResult{Identities: out, Total: total, Pagination: p}, nil
}
