package usecases

import (
	"context"
	"fmt"

	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// loadProject fetches the current version of a project for mutation.
func loadProject(ctx context.Context, repo project.Repository, projectID string) (*project.Project, error) {
	p, err := repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError("project not found")
	}
	return p, nil
}

// stateError reports an illegal state machine move as a conflict with the
// project's current state.
func stateError(err error) error {
	return errors.NewConflictError(err.Error())
}

// finish maps a transaction error to what the caller sees. AppErrors pass
// through; anything else is logged and hidden.
func finish(log logger.Interface, err error, msg string, keyvals ...any) error {
	if err == nil {
		return nil
	}
	if errors.IsAppError(err) {
		return err
	}
	log.Errorw(msg, append(keyvals, "error", err)...)
	return errors.NewInternalError(msg)
}

// aliasesFor resolves display aliases for the given identity ids. Lookup
// failures degrade to empty aliases.
func aliasesFor(ctx context.Context, repo identity.Repository, log logger.Interface, ids ...string) map[string]string {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	out := make(map[string]string, len(unique))
	if len(unique) == 0 {
		return out
	}
	found, err := repo.GetByIDs(ctx, unique)
	if err != nil {
		log.Warnw("failed to resolve aliases", "error", err)
		return out
	}
	for _, i := range found {
		out[i.ID()] = i.Alias()
	}
	return out
}

func participantIDs(p *project.Project) []string {
	ids := []string{p.ClientID()}
	if a := p.AssignedAnalystID(); a != nil {
		ids = append(ids, *a)
	}
	return ids
}
