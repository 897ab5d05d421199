package usecases

import (
	"context"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// ChangeStatusCommand moves a project along the analyst part of the
// lifecycle (in_progress, qa, completed).
type ChangeStatusCommand struct {
	ActorID   string
	ProjectID string
	Status    string
	Note      string
}

type ChangeStatusExecutor interface {
	Execute(ctx context.Context, cmd ChangeStatusCommand) (*dto.ProjectResponse, error)
}

type ChangeStatusUseCase struct {
	projects project.Repository
	recorder auditlog.Recorder
	tx       db.Transactor
	clock    biztime.Clock
	logger   logger.Interface
}

func NewChangeStatusUseCase(
	projects project.Repository,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	logger logger.Interface,
) *ChangeStatusUseCase {
	return &ChangeStatusUseCase{
		projects: projects,
		recorder: recorder,
		tx:       tx,
		clock:    clock,
		logger:   logger,
	}
}

func (uc *ChangeStatusUseCase) Execute(ctx context.Context, cmd ChangeStatusCommand) (*dto.ProjectResponse, error) {
	next, err := vo.NewProjectStatus(cmd.Status)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if !next.IsAnalystTarget() {
		return nil, errors.NewValidationError("status can only be set to in_progress, qa or completed")
	}

	var (
		updated *project.Project
		from    vo.ProjectStatus
	)
	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		p, err := loadProject(txCtx, uc.projects, cmd.ProjectID)
		if err != nil {
			return err
		}
		from = p.Status()
		if err := p.ChangeStatus(next, uc.clock.Now()); err != nil {
			return stateError(err)
		}
		if err := uc.projects.Update(txCtx, p); err != nil {
			return err
		}
		updated = p

		details := audit.Details{"from": from.String(), "to": next.String()}
		if cmd.Note != "" {
			details["note"] = cmd.Note
		}
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionStatusChanged,
			ProjectID:  p.ID(),
			IdentityID: cmd.ActorID,
			Details:    details,
		})
	})
	if err != nil {
		return nil, finish(uc.logger, err, "failed to change project status", "project_id", cmd.ProjectID)
	}

	uc.logger.Infow("project status changed",
		"project_id", updated.ID(),
		"from", from,
		"to", next,
		"actor_id", cmd.ActorID,
	)
	return dto.ToProjectResponse(updated), nil
}
