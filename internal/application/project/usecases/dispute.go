package usecases

import (
	"context"
	"strings"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

const maxDisputeReasonLength = 2000

type FileDisputeCommand struct {
	ActorID   string
	ProjectID string
	Reason    string
}

type FileDisputeExecutor interface {
	Execute(ctx context.Context, cmd FileDisputeCommand) (*dto.ProjectResponse, error)
}

type FileDisputeUseCase struct {
	projects project.Repository
	recorder auditlog.Recorder
	tx       db.Transactor
	clock    biztime.Clock
	logger   logger.Interface
}

func NewFileDisputeUseCase(
	projects project.Repository,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	logger logger.Interface,
) *FileDisputeUseCase {
	return &FileDisputeUseCase{
		projects: projects,
		recorder: recorder,
		tx:       tx,
		clock:    clock,
		logger:   logger,
	}
}

func (uc *FileDisputeUseCase) Execute(ctx context.Context, cmd FileDisputeCommand) (*dto.ProjectResponse, error) {
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		return nil, errors.NewValidationError("reason is required")
	}
	if len(reason) > maxDisputeReasonLength {
		return nil, errors.NewValidationError("reason is too long")
	}

	var updated *project.Project
	err := uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		p, err := loadProject(txCtx, uc.projects, cmd.ProjectID)
		if err != nil {
			return err
		}
		from := p.Status()
		if err := p.FileDispute(uc.clock.Now()); err != nil {
			return stateError(err)
		}
		if err := uc.projects.Update(txCtx, p); err != nil {
			return err
		}
		updated = p
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionDisputeFiled,
			ProjectID:  p.ID(),
			IdentityID: cmd.ActorID,
			Details:    audit.Details{"from": from.String(), "reason": reason},
		})
	})
	if err != nil {
		return nil, finish(uc.logger, err, "failed to file dispute", "project_id", cmd.ProjectID)
	}

	uc.logger.Infow("dispute filed", "project_id", updated.ID(), "actor_id", cmd.ActorID)
	return dto.ToProjectResponse(updated), nil
}

type ResolveDisputeCommand struct {
	ActorID    string
	ProjectID  string
	Resolution string
}

type ResolveDisputeExecutor interface {
	Execute(ctx context.Context, cmd ResolveDisputeCommand) (*dto.ProjectResponse, error)
}

// ResolveDisputeUseCase returns a disputed project to the status it held
// before the dispute.
type ResolveDisputeUseCase struct {
	projects project.Repository
	recorder auditlog.Recorder
	tx       db.Transactor
	clock    biztime.Clock
	logger   logger.Interface
}

func NewResolveDisputeUseCase(
	projects project.Repository,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	logger logger.Interface,
) *ResolveDisputeUseCase {
	return &ResolveDisputeUseCase{
		projects: projects,
		recorder: recorder,
		tx:       tx,
		clock:    clock,
		logger:   logger,
	}
}

func (uc *ResolveDisputeUseCase) Execute(ctx context.Context, cmd ResolveDisputeCommand) (*dto.ProjectResponse, error) {
	resolution := strings.TrimSpace(cmd.Resolution)
	if len(resolution) > maxDisputeReasonLength {
		return nil, errors.NewValidationError("resolution is too long")
	}

	var updated *project.Project
	err := uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		p, err := loadProject(txCtx, uc.projects, cmd.ProjectID)
		if err != nil {
			return err
		}
		restored, err := p.ResolveDispute(uc.clock.Now())
		if err != nil {
			return stateError(err)
		}
		if err := uc.projects.Update(txCtx, p); err != nil {
			return err
		}
		updated = p
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionDisputeResolved,
			ProjectID:  p.ID(),
			IdentityID: cmd.ActorID,
			Details:    audit.Details{"restored_status": restored.String(), "resolution": resolution},
		})
	})
	if err != nil {
		return nil, finish(uc.logger, err, "failed to resolve dispute", "project_id", cmd.ProjectID)
	}

	uc.logger.Infow("dispute resolved", "project_id", updated.ID(), "status", updated.Status(), "actor_id", cmd.ActorID)
	return dto.ToProjectResponse(updated), nil
}
