package usecases

import (
	"context"
	"strings"

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

// PaymentRefunder refunds a paid project, which also rejects it.
type PaymentRefunder interface {
	RefundProject(ctx context.Context, actorID, projectID, reason string) (*project.Project, error)
}

type RejectProjectCommand struct {
	ActorID   string
	ProjectID string
	Reason    string
}

type RejectProjectExecutor interface {
	Execute(ctx context.Context, cmd RejectProjectCommand) (*dto.ProjectResponse, error)
}

// RejectProjectUseCase rejects a submitted or accepted project. A completed
// payment is refunded first; the refund moves the project to rejected.
type RejectProjectUseCase struct {
	projects project.Repository
	refunder PaymentRefunder
	recorder auditlog.Recorder
	tx       db.Transactor
	clock    biztime.Clock
	logger   logger.Interface
}

func NewRejectProjectUseCase(
	projects project.Repository,
	refunder PaymentRefunder,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	logger logger.Interface,
) *RejectProjectUseCase {
	return &RejectProjectUseCase{
		projects: projects,
		refunder: refunder,
		recorder: recorder,
		tx:       tx,
		clock:    clock,
		logger:   logger,
	}
}

func (uc *RejectProjectUseCase) Execute(ctx context.Context, cmd RejectProjectCommand) (*dto.ProjectResponse, error) {
	cmd.Reason = strings.TrimSpace(cmd.Reason)

	current, err := loadProject(ctx, uc.projects, cmd.ProjectID)
	if err != nil {
		return nil, finish(uc.logger, err, "failed to reject project", "project_id", cmd.ProjectID)
	}
	if !current.Status().CanTransitionTo(vo.StatusRejected) {
		return nil, errors.NewConflictError("only submitted or accepted projects can be rejected")
	}

	switch current.PaymentStatus() {
	case vo.PaymentStatusCompleted:
		refunded, err := uc.refunder.RefundProject(ctx, cmd.ActorID, cmd.ProjectID, cmd.Reason)
		if err != nil {
			return nil, err
		}
		return dto.ToProjectResponse(refunded), nil
	case vo.PaymentStatusProcessing:
		return nil, errors.NewConflictError("payment is being processed, reject once it settles")
	}

	var updated *project.Project
	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		p, err := loadProject(txCtx, uc.projects, cmd.ProjectID)
		if err != nil {
			return err
		}
		from := p.Status()
		if err := p.Reject(uc.clock.Now()); err != nil {
			return stateError(err)
		}
		if err := uc.projects.Update(txCtx, p); err != nil {
			return err
		}
		updated = p
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionProjectRejected,
			ProjectID:  p.ID(),
			IdentityID: cmd.ActorID,
			Details:    audit.Details{"from": from.String(), "reason": cmd.Reason, "refunded": false},
		})
	})
	if err != nil {
		return nil, finish(uc.logger, err, "failed to reject project", "project_id", cmd.ProjectID)
	}

	uc.logger.Infow("project rejected", "project_id", updated.ID(), "actor_id", cmd.ActorID)
	return dto.ToProjectResponse(updated), nil
}
