package usecases

import (
	"context"

	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// GetProjectQuery carries a project already authorized by the gate.
type GetProjectQuery struct {
	Project *project.Project
}

type GetProjectExecutor interface {
	Execute(ctx context.Context, query GetProjectQuery) (*dto.ProjectDetailResponse, error)
}

type GetProjectUseCase struct {
	identities   identity.Repository
	files        project.FileRepository
	deliverables project.DeliverableRepository
	logger       logger.Interface
}

func NewGetProjectUseCase(
	identities identity.Repository,
	files project.FileRepository,
	deliverables project.DeliverableRepository,
	logger logger.Interface,
) *GetProjectUseCase {
	return &GetProjectUseCase{
		identities:   identities,
		files:        files,
		deliverables: deliverables,
		logger:       logger,
	}
}

func (uc *GetProjectUseCase) Execute(ctx context.Context, query GetProjectQuery) (*dto.ProjectDetailResponse, error) {
	p := query.Project
	if p == nil {
		return nil, errors.NewNotFoundError("project not found")
	}

	files, err := uc.files.ListByProject(ctx, p.ID())
	if err != nil {
		uc.logger.Errorw("failed to list project files", "project_id", p.ID(), "error", err)
		return nil, errors.NewInternalError("failed to load project")
	}
	deliverables, err := uc.deliverables.ListByProject(ctx, p.ID())
	if err != nil {
		uc.logger.Errorw("failed to list deliverables", "project_id", p.ID(), "error", err)
		return nil, errors.NewInternalError("failed to load project")
	}

	resp := &dto.ProjectDetailResponse{
		ProjectResponse: dto.ToProjectResponse(p).WithAliases(aliasesFor(ctx, uc.identities, uc.logger, participantIDs(p)...)),
		Files:           make([]*dto.FileResponse, 0, len(files)),
		Deliverables:    make([]*dto.DeliverableResponse, 0, len(deliverables)),
	}
	for _, f := range files {
		resp.Files = append(resp.Files, dto.ToFileResponse(f))
	}
	for _, d := range deliverables {
		resp.Deliverables = append(resp.Deliverables, dto.ToDeliverableResponse(d))
	}
	return resp, nil
}
