package handlers

import (
	"context"

	identityUsecases "github.com/shadowiq/shadowiq/internal/application/identity/usecases"
)

// Use case interfaces for AuthHandler - enables unit testing with mocks.

type requestMagicLinkUseCase interface {
	Execute(ctx context.Context, cmd identityUsecases.RequestMagicLinkCommand) (*identityUsecases.RequestMagicLinkResult, error)
}

type verifyMagicLinkUseCase interface {
	Execute(ctx context.Context, cmd identityUsecases.VerifyMagicLinkCommand) (*identityUsecases.VerifyMagicLinkResult, error)
}

type logoutUseCase interface {
	Execute(ctx context.Context, cmd identityUsecases.LogoutCommand) error
}
