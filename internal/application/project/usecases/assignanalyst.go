package usecases

import (
	"context"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/id"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// AssignAnalystCommand names the analyst by id or alias.
type AssignAnalystCommand struct {
	ActorID      string
	ProjectID    string
	AnalystID    string
	AnalystAlias string
}

type AssignAnalystExecutor interface {
	Execute(ctx context.Context, cmd AssignAnalystCommand) (*dto.ProjectResponse, error)
}

type AssignAnalystUseCase struct {
	projects   project.Repository
	identities identity.Repository
	recorder   auditlog.Recorder
	tx         db.Transactor
	clock      biztime.Clock
	logger     logger.Interface
}

func NewAssignAnalystUseCase(
	projects project.Repository,
	identities identity.Repository,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	logger logger.Interface,
) *AssignAnalystUseCase {
	return &AssignAnalystUseCase{
		projects:   projects,
		identities: identities,
		recorder:   recorder,
		tx:         tx,
		clock:      clock,
		logger:     logger,
	}
}

func (uc *AssignAnalystUseCase) Execute(ctx context.Context, cmd AssignAnalystCommand) (*dto.ProjectResponse, error) {
	analyst, err := uc.loadAnalyst(ctx, cmd)
	if err != nil {
		return nil, err
	}

	var updated *project.Project
	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		p, err := loadProject(txCtx, uc.projects, cmd.ProjectID)
		if err != nil {
			return err
		}
		var previous string
		if prev := p.AssignedAnalystID(); prev != nil {
			previous = *prev
		}
		if err := p.AssignAnalyst(analyst.ID(), uc.clock.Now()); err != nil {
			return stateError(err)
		}
		if err := uc.projects.Update(txCtx, p); err != nil {
			return err
		}
		details := audit.Details{
			"analyst_id":    analyst.ID(),
			"analyst_alias": analyst.Alias(),
			"project_code":  p.Code(),
		}
		if previous != "" {
			details["previous_analyst_id"] = previous
		}
		updated = p
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionAnalystAssigned,
			ProjectID:  p.ID(),
			IdentityID: cmd.ActorID,
			Details:    details,
		})
	})
	if err != nil {
		return nil, finish(uc.logger, err, "failed to assign analyst", "project_id", cmd.ProjectID)
	}

	uc.logger.Infow("analyst assigned",
		"project_id", updated.ID(),
		"analyst_id", analyst.ID(),
		"actor_id", cmd.ActorID,
	)
	aliases := aliasesFor(ctx, uc.identities, uc.logger, participantIDs(updated)...)
	return dto.ToProjectResponse(updated).WithAliases(aliases), nil
}

func (uc *AssignAnalystUseCase) loadAnalyst(ctx context.Context, cmd AssignAnalystCommand) (*identity.Identity, error) {
	var (
		analyst *identity.Identity
		err     error
	)
	switch {
	case cmd.AnalystID != "":
		analystID, ok := id.CanonicalUUID(cmd.AnalystID)
		if !ok {
			return nil, errors.NewValidationError("analyst_id must be a UUID")
		}
		analyst, err = uc.identities.GetByID(ctx, analystID)
	case cmd.AnalystAlias != "":
		analyst, err = uc.identities.GetByAlias(ctx, cmd.AnalystAlias)
	default:
		return nil, errors.NewValidationError("analyst_id or analyst_alias is required")
	}
	if err != nil {
		uc.logger.Errorw("failed to load analyst", "error", err)
		return nil, errors.NewInternalError("failed to load analyst")
	}
	if analyst == nil {
		return nil, errors.NewNotFoundError("analyst not found")
	}
	if !analyst.IsAnalyst() {
		return nil, errors.NewValidationError("identity is not an analyst")
	}
	return analyst, nil
}
