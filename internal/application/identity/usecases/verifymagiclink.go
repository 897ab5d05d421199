package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

const msgInvalidMagicLink = "invalid or expired sign-in link"

var errCredentialRace = stderrors.New("credential consumed concurrently")

type VerifyMagicLinkCommand struct {
	Token string
}

type VerifyMagicLinkResult struct {
	Identity   *identity.Identity
	SessionID  string
	RedirectTo string
}

type VerifyMagicLinkExecutor interface {
	Execute(ctx context.Context, cmd VerifyMagicLinkCommand) (*VerifyMagicLinkResult, error)
}

type VerifyMagicLinkUseCase struct {
	identities     identity.Repository
	sessions       identity.SessionStore
	tokens         TokenGenerator
	recorder       auditlog.Recorder
	tx             db.Transactor
	clock          biztime.Clock
	sessionTimeout time.Duration
	newSessionID   func() (string, error)
	logger         logger.Interface
}

func NewVerifyMagicLinkUseCase(
	identities identity.Repository,
	sessions identity.SessionStore,
	tokens TokenGenerator,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	sessionTimeout time.Duration,
	logger logger.Interface,
) *VerifyMagicLinkUseCase {
	if sessionTimeout <= 0 {
		sessionTimeout = 10 * time.Second
	}
	return &VerifyMagicLinkUseCase{
		identities:     identities,
		sessions:       sessions,
		tokens:         tokens,
		recorder:       recorder,
		tx:             tx,
		clock:          clock,
		sessionTimeout: sessionTimeout,
		newSessionID:   identity.NewSessionID,
		logger:         logger,
	}
}

// Execute exchanges a magic token for a session. An expired credential is
// reported as expired and left in place; it is overwritten by the next
// issuance.
func (uc *VerifyMagicLinkUseCase) Execute(ctx context.Context, cmd VerifyMagicLinkCommand) (*VerifyMagicLinkResult, error) {
	token := strings.TrimSpace(cmd.Token)
	if token == "" {
		return nil, errors.NewValidationError("token is required")
	}

	hash := uc.tokens.Hash(token)
	target, err := uc.identities.GetByCredentialHash(ctx, hash)
	if err != nil {
		uc.logger.Errorw("failed to look up credential", "error", err)
		return nil, errors.NewInternalError("failed to verify sign-in link")
	}
	if target == nil {
		return nil, errors.NewNotFoundError(msgInvalidMagicLink)
	}

	now := uc.clock.Now()
	if target.CredentialExpired(now) {
		uc.logger.Infow("expired magic link presented", "identity_id", target.ID())
		return nil, errors.NewTokenExpiredError("sign-in link has expired, request a new one")
	}

	sessionID, err := uc.newSessionID()
	if err != nil {
		uc.logger.Errorw("failed to generate session id", "error", err)
		return nil, errors.NewInternalError("failed to create session")
	}
	if err := uc.storeSession(ctx, sessionID, target.ID()); err != nil {
		uc.logger.Errorw("failed to store session", "collaborator", "session_store", "identity_id", target.ID(), "error", err)
		return nil, errors.NewUpstreamError("session_store", err)
	}

	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		consumed, err := uc.identities.ConsumeCredential(txCtx, target.ID(), hash, now)
		if err != nil {
			return fmt.Errorf("failed to consume credential: %w", err)
		}
		if !consumed {
			return errCredentialRace
		}
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionUserLoggedIn,
			IdentityID: target.ID(),
		})
	})
	if err != nil {
		uc.discardSession(ctx, sessionID)
		if stderrors.Is(err, errCredentialRace) {
			return nil, errors.NewNotFoundError(msgInvalidMagicLink)
		}
		uc.logger.Errorw("failed to complete sign-in", "identity_id", target.ID(), "error", err)
		return nil, errors.NewInternalError("failed to verify sign-in link")
	}

	target.ConsumeCredential(now)
	uc.logger.Infow("identity signed in", "identity_id", target.ID(), "role", target.Role())

	return &VerifyMagicLinkResult{
		Identity:   target,
		SessionID:  sessionID,
		RedirectTo: target.Role().DashboardRoute(),
	}, nil
}

func (uc *VerifyMagicLinkUseCase) storeSession(ctx context.Context, sessionID, identityID string) error {
	ctx, cancel := context.WithTimeout(ctx, uc.sessionTimeout)
	defer cancel()
	return uc.sessions.Set(ctx, sessionID, identity.SessionKeyIdentityID, identityID)
}

func (uc *VerifyMagicLinkUseCase) discardSession(ctx context.Context, sessionID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.sessionTimeout)
	defer cancel()
	if err := uc.sessions.Destroy(ctx, sessionID); err != nil {
		uc.logger.Warnw("failed to discard session", "collaborator", "session_store", "error", err)
	}
}
