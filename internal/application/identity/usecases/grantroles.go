package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/id"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// GrantRolesCommand sets both role flags of the identity named by
// IdentityID or Alias. ActorID is empty when run from the command line.
type GrantRolesCommand struct {
	ActorID    string
	IdentityID string
	Alias      string
	IsAdmin    bool
	IsAnalyst  bool
}

type GrantRolesExecutor interface {
	Execute(ctx context.Context, cmd GrantRolesCommand) (*identity.Identity, error)
}

type GrantRolesUseCase struct {
	identities identity.Repository
	recorder   auditlog.Recorder
	tx         db.Transactor
	logger     logger.Interface
}

func NewGrantRolesUseCase(identities identity.Repository, recorder auditlog.Recorder, tx db.Transactor, logger logger.Interface) *GrantRolesUseCase {
	return &GrantRolesUseCase{
		identities: identities,
		recorder:   recorder,
		tx:         tx,
		logger:     logger,
	}
}

func (uc *GrantRolesUseCase) Execute(ctx context.Context, cmd GrantRolesCommand) (*identity.Identity, error) {
	target, err := uc.load(ctx, cmd)
	if err != nil {
		return nil, err
	}

	previous := target.Role()
	if cmd.ActorID != "" && cmd.ActorID == target.ID() && previous == identity.RoleAdmin && !cmd.IsAdmin {
		return nil, errors.NewValidationError("admins cannot remove their own admin role")
	}
	target.SetRoles(cmd.IsAdmin, cmd.IsAnalyst)

	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.identities.UpdateRoles(txCtx, target); err != nil {
			return fmt.Errorf("failed to update roles: %w", err)
		}
		details := audit.Details{
			"alias":         target.Alias(),
			"is_admin":      cmd.IsAdmin,
			"is_analyst":    cmd.IsAnalyst,
			"previous_role": previous.String(),
			"role":          target.Role().String(),
		}
		if cmd.ActorID != "" {
			details["granted_by"] = cmd.ActorID
		} else {
			details["granted_by"] = "cli"
		}
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionRolesUpdated,
			IdentityID: target.ID(),
			Details:    details,
		})
	})
	if err != nil {
		uc.logger.Errorw("failed to grant roles", "identity_id", target.ID(), "error", err)
		return nil, errors.NewInternalError("failed to update roles")
	}

	uc.logger.Infow("roles updated",
		"identity_id", target.ID(),
		"previous_role", previous,
		"role", target.Role(),
		"actor_id", cmd.ActorID,
	)
	return target, nil
}

func (uc *GrantRolesUseCase) load(ctx context.Context, cmd GrantRolesCommand) (*identity.Identity, error) {
	var (
		target *identity.Identity
		err    error
	)
	switch {
	case cmd.IdentityID != "":
		identityID, ok := id.CanonicalUUID(cmd.IdentityID)
		if !ok {
			return nil, errors.NewValidationError("identity id must be a UUID")
		}
		target, err = uc.identities.GetByID(ctx, identityID)
	case strings.TrimSpace(cmd.Alias) != "":
		target, err = uc.identities.GetByAlias(ctx, strings.TrimSpace(cmd.Alias))
	default:
		return nil, errors.NewValidationError("identity id or alias is required")
	}
	if err != nil {
		uc.logger.Errorw("failed to load identity", "error", err)
		return nil, errors.NewInternalError("failed to load identity")
	}
	if target == nil {
		return nil, errors.NewNotFoundError("identity not found")
	}
	return target, nil
}
