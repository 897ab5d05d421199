package usecases

import (
	"context"
	"time"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

type LogoutCommand struct {
	SessionID string
}

type LogoutExecutor interface {
	Execute(ctx context.Context, cmd LogoutCommand) error
}

type LogoutUseCase struct {
	sessions identity.SessionStore
	recorder auditlog.Recorder
	timeout  time.Duration
	logger   logger.Interface
}

func NewLogoutUseCase(sessions identity.SessionStore, recorder auditlog.Recorder, timeout time.Duration, logger logger.Interface) *LogoutUseCase {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LogoutUseCase{
		sessions: sessions,
		recorder: recorder,
		timeout:  timeout,
		logger:   logger,
	}
}

// Execute ends the session. Logging out without a session is a no-op.
func (uc *LogoutUseCase) Execute(ctx context.Context, cmd LogoutCommand) error {
	if cmd.SessionID == "" {
		return nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	identityID, ok, err := uc.sessions.Pop(storeCtx, cmd.SessionID, identity.SessionKeyIdentityID)
	if err != nil {
		uc.logger.Errorw("failed to pop session", "collaborator", "session_store", "error", err)
		return errors.NewUpstreamError("session_store", err)
	}
	if err := uc.sessions.Destroy(storeCtx, cmd.SessionID); err != nil {
		uc.logger.Warnw("failed to destroy session", "collaborator", "session_store", "error", err)
	}
	if !ok {
		return nil
	}

	if err := uc.recorder.Record(ctx, auditlog.Event{
		Action:     audit.ActionUserLoggedOut,
		IdentityID: identityID,
	}); err != nil {
		uc.logger.Errorw("failed to record logout", "identity_id", identityID, "error", err)
	}

	uc.logger.Infow("identity signed out", "identity_id", identityID)
	return nil
}
