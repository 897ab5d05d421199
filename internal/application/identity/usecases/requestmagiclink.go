package usecases

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/id"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

const (
	DefaultMagicLinkTTL = 24 * time.Hour

	magicLinkSubject   = "Your ShadowIQ sign-in link"
	aliasGenerateTries = 3
)

type RequestMagicLinkCommand struct {
	Alias string
	Email string
}

type RequestMagicLinkResult struct {
	IdentityID string
	Alias      string
	Created    bool
	Delivered  bool
	ExpiresAt  time.Time
	// MagicLink is only set when links are displayed instead of mailed.
	MagicLink string
}

type RequestMagicLinkExecutor interface {
	Execute(ctx context.Context, cmd RequestMagicLinkCommand) (*RequestMagicLinkResult, error)
}

// MagicLinkOptions configures link issuance.
type MagicLinkOptions struct {
	BaseURL     string
	TTL         time.Duration
	DisplayLink bool
	MailTimeout time.Duration
}

type RequestMagicLinkUseCase struct {
	identities identity.Repository
	tokens     TokenGenerator
	mailer     Mailer
	recorder   auditlog.Recorder
	tx         db.Transactor
	clock      biztime.Clock
	opts       MagicLinkOptions
	logger     logger.Interface
}

func NewRequestMagicLinkUseCase(
	identities identity.Repository,
	tokens TokenGenerator,
	mailer Mailer,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	opts MagicLinkOptions,
	logger logger.Interface,
) *RequestMagicLinkUseCase {
	if opts.TTL <= 0 {
		opts.TTL = DefaultMagicLinkTTL
	}
	if opts.MailTimeout <= 0 {
		opts.MailTimeout = 10 * time.Second
	}
	return &RequestMagicLinkUseCase{
		identities: identities,
		tokens:     tokens,
		mailer:     mailer,
		recorder:   recorder,
		tx:         tx,
		clock:      clock,
		opts:       opts,
		logger:     logger,
	}
}

func (uc *RequestMagicLinkUseCase) Execute(ctx context.Context, cmd RequestMagicLinkCommand) (*RequestMagicLinkResult, error) {
	if err := uc.validateCommand(&cmd); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	target, created, err := uc.findOrCreate(ctx, cmd, now)
	if err != nil {
		return nil, uc.internal(err, cmd)
	}

	plain, hash, err := uc.tokens.Generate()
	if err != nil {
		return nil, uc.internal(fmt.Errorf("failed to generate magic token: %w", err), cmd)
	}
	if err := target.IssueCredential(hash, now.Add(uc.opts.TTL)); err != nil {
		return nil, uc.internal(err, cmd)
	}

	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.identities.SaveCredential(txCtx, target); err != nil {
			return fmt.Errorf("failed to save credential: %w", err)
		}
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionMagicLinkRequested,
			IdentityID: target.ID(),
			Details:    audit.Details{"alias": target.Alias()},
		})
	})
	if err != nil {
		return nil, uc.internal(err, cmd)
	}

	link := uc.buildLink(plain)
	result := &RequestMagicLinkResult{
		IdentityID: target.ID(),
		Alias:      target.Alias(),
		Created:    created,
		ExpiresAt:  *target.CredentialExpiresAt(),
	}
	if uc.opts.DisplayLink {
		result.MagicLink = link
	}
	if email := target.Email(); email != nil {
		result.Delivered = uc.send(ctx, target, *email, link)
	}

	uc.logger.Infow("magic link issued",
		"identity_id", target.ID(),
		"created", created,
		"delivered", result.Delivered,
	)
	return result, nil
}

func (uc *RequestMagicLinkUseCase) internal(err error, cmd RequestMagicLinkCommand) error {
	if errors.IsAppError(err) {
		return err
	}
	uc.logger.Errorw("failed to issue magic link", "alias", cmd.Alias, "error", err)
	return errors.NewInternalError("failed to issue magic link")
}

func (uc *RequestMagicLinkUseCase) validateCommand(cmd *RequestMagicLinkCommand) error {
	cmd.Alias = strings.TrimSpace(cmd.Alias)
	cmd.Email = strings.TrimSpace(cmd.Email)
	if cmd.Alias == "" && cmd.Email == "" {
		return errors.NewValidationError("alias or email is required")
	}
	if cmd.Alias != "" {
		if err := identity.ValidateAlias(cmd.Alias); err != nil {
			return errors.NewValidationError(err.Error())
		}
	}
	if cmd.Email != "" && !strings.Contains(cmd.Email, "@") {
		return errors.NewValidationError("email is invalid")
	}
	return nil
}

func (uc *RequestMagicLinkUseCase) findOrCreate(ctx context.Context, cmd RequestMagicLinkCommand, now time.Time) (*identity.Identity, bool, error) {
	var email *string
	if cmd.Email != "" {
		email = &cmd.Email
	}

	if cmd.Alias != "" {
		existing, err := uc.identities.GetByAlias(ctx, cmd.Alias)
		if err != nil {
			return nil, false, fmt.Errorf("failed to look up alias: %w", err)
		}
		// An existing identity keeps the address it was created with; the
		// supplied email is only used for new identities.
		if existing != nil {
			return existing, false, nil
		}
		created, ok, err := uc.create(ctx, cmd.Alias, email, now)
		if errors.IsConflictError(err) {
			// Lost a race with a concurrent request for the same alias.
			existing, err = uc.identities.GetByAlias(ctx, cmd.Alias)
			if err != nil {
				return nil, false, fmt.Errorf("failed to reload alias after conflict: %w", err)
			}
			if existing == nil {
				return nil, false, errors.NewConflictError("alias is being registered, please retry")
			}
			return existing, false, nil
		}
		return created, ok, err
	}

	for attempt := 0; attempt < aliasGenerateTries; attempt++ {
		alias, err := identity.GenerateAlias()
		if err != nil {
			return nil, false, err
		}
		created, ok, err := uc.create(ctx, alias, email, now)
		if errors.IsConflictError(err) {
			continue
		}
		return created, ok, err
	}
	return nil, false, errors.NewConflictError("could not allocate an alias, please retry")
}

func (uc *RequestMagicLinkUseCase) create(ctx context.Context, alias string, email *string, now time.Time) (*identity.Identity, bool, error) {
	i, err := identity.NewIdentity(id.NewUUID(), alias, email, now)
	if err != nil {
		return nil, false, errors.NewValidationError(err.Error())
	}
	if err := uc.identities.Create(ctx, i); err != nil {
		if errors.IsConflictError(err) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("failed to create identity: %w", err)
	}
	return i, true, nil
}

func (uc *RequestMagicLinkUseCase) buildLink(token string) string {
	return strings.TrimRight(uc.opts.BaseURL, "/") + "/auth/verify?token=" + url.QueryEscape(token)
}

// send reports whether the mail was accepted. Failures never fail the request.
func (uc *RequestMagicLinkUseCase) send(ctx context.Context, target *identity.Identity, to, link string) bool {
	if uc.mailer == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, uc.opts.MailTimeout)
	defer cancel()

	body := fmt.Sprintf(
		"Hello %s,\n\nUse the link below to sign in to ShadowIQ:\n%s\n\nThis link expires in %d hours and works once.\n\nIf you did not request it, ignore this message.\n",
		target.Alias(), link, int(uc.opts.TTL.Hours()),
	)
	if err := uc.mailer.Send(ctx, to, magicLinkSubject, body); err != nil {
		uc.logger.Warnw("failed to send magic link", "collaborator", "mailer", "identity_id", target.ID(), "error", err)
		return false
	}
	return true
}
