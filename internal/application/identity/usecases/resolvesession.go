package usecases

import (
	"context"
	"time"

	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// lastSeenResolution limits last_seen_at writes to one per identity per
// window.
const lastSeenResolution = time.Minute

type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) identity.Principal
}

// ResolveSessionUseCase maps a session id to a Principal. Every failure
// resolves to anonymous.
type ResolveSessionUseCase struct {
	sessions   identity.SessionStore
	identities identity.Repository
	clock      biztime.Clock
	timeout    time.Duration
	logger     logger.Interface
}

func NewResolveSessionUseCase(
	sessions identity.SessionStore,
	identities identity.Repository,
	clock biztime.Clock,
	timeout time.Duration,
	logger logger.Interface,
) *ResolveSessionUseCase {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ResolveSessionUseCase{
		sessions:   sessions,
		identities: identities,
		clock:      clock,
		timeout:    timeout,
		logger:     logger,
	}
}

func (uc *ResolveSessionUseCase) Resolve(ctx context.Context, sessionID string) identity.Principal {
	if sessionID == "" {
		return identity.Anonymous()
	}

	storeCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	identityID, ok, err := uc.sessions.Get(storeCtx, sessionID, identity.SessionKeyIdentityID)
	if err != nil {
		uc.logger.Errorw("failed to read session", "collaborator", "session_store", "error", err)
		return identity.Anonymous()
	}
	if !ok || identityID == "" {
		return identity.Anonymous()
	}

	found, err := uc.identities.GetByID(ctx, identityID)
	if err != nil {
		uc.logger.Errorw("failed to load session identity", "identity_id", identityID, "error", err)
		return identity.Anonymous()
	}
	if found == nil {
		if _, _, err := uc.sessions.Pop(storeCtx, sessionID, identity.SessionKeyIdentityID); err != nil {
			uc.logger.Warnw("failed to pop stale session", "collaborator", "session_store", "error", err)
		}
		uc.logger.Warnw("session referenced a missing identity", "identity_id", identityID)
		return identity.Anonymous()
	}

	uc.touch(ctx, found)
	return identity.NewPrincipal(found)
}

func (uc *ResolveSessionUseCase) touch(ctx context.Context, i *identity.Identity) {
	now := uc.clock.Now()
	if last := i.LastSeenAt(); last != nil && now.Sub(*last) < lastSeenResolution {
		return
	}
	if err := uc.identities.TouchLastSeen(ctx, i.ID(), now); err != nil {
		uc.logger.Warnw("failed to update last seen", "identity_id", i.ID(), "error", err)
		return
	}
	i.Touch(now)
}
