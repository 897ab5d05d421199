package handlers

import (
	"context"

	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	projectUsecases "github.com/shadowiq/shadowiq/internal/application/project/usecases"
)

// Use case interfaces for ProjectHandler - enables unit testing with mocks.

type submitProjectUseCase interface {
	Execute(ctx context.Context, cmd projectUsecases.SubmitProjectCommand) (*dto.ProjectResponse, error)
}

type getProjectUseCase interface {
	Execute(ctx context.Context, query projectUsecases.GetProjectQuery) (*dto.ProjectDetailResponse, error)
}

type assignAnalystUseCase interface {
	Execute(ctx context.Context, cmd projectUsecases.AssignAnalystCommand) (*dto.ProjectResponse, error)
}

type changeStatusUseCase interface {
	Execute(ctx context.Context, cmd projectUsecases.ChangeStatusCommand) (*dto.ProjectResponse, error)
}

type rejectProjectUseCase interface {
	Execute(ctx context.Context, cmd projectUsecases.RejectProjectCommand) (*dto.ProjectResponse, error)
}

type fileDisputeUseCase interface {
	Execute(ctx context.Context, cmd projectUsecases.FileDisputeCommand) (*dto.ProjectResponse, error)
}

type resolveDisputeUseCase interface {
	Execute(ctx context.Context, cmd projectUsecases.ResolveDisputeCommand) (*dto.ProjectResponse, error)
}

type sendMessageUseCase interface {
	Execute(ctx context.Context, cmd projectUsecases.SendMessageCommand) (*dto.MessageResponse, error)
}

type listMessagesUseCase interface {
	Execute(ctx context.Context, query projectUsecases.ListMessagesQuery) ([]*dto.MessageResponse, error)
}
