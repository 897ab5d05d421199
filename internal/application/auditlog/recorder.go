// Package auditlog writes and reads the compliance log.
package auditlog

import (
	"context"
	"fmt"

	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/id"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// Event is a fact to append. Network metadata is taken from the context.
type Event struct {
	Action     audit.Action
	ProjectID  string
	IdentityID string
	Details    audit.Details
}

// Recorder appends audit entries. Called with a transactional context it
// joins that transaction.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

type recorder struct {
	repo   audit.Repository
	clock  biztime.Clock
	newID  func() string
	logger logger.Interface
}

// NewRecorder creates a Recorder backed by repo.
func NewRecorder(repo audit.Repository, clock biztime.Clock, logger logger.Interface) Recorder {
	return &recorder{
		repo:   repo,
		clock:  clock,
		newID:  id.NewSortableID,
		logger: logger,
	}
}

func (r *recorder) Record(ctx context.Context, event Event) error {
	meta := RequestMetaFromContext(ctx)

	entry, err := audit.NewEntry(audit.NewEntryParams{
		ID:         r.newID(),
		ProjectID:  event.ProjectID,
		IdentityID: event.IdentityID,
		Action:     event.Action,
		Details:    event.Details,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		CreatedAt:  r.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to build audit entry: %w", err)
	}

	if err := r.repo.Append(ctx, entry); err != nil {
		r.logger.Errorw("failed to append audit entry",
			"action", event.Action,
			"project_id", event.ProjectID,
			"identity_id", event.IdentityID,
			"request_id", meta.RequestID,
			"error", err,
		)
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}
