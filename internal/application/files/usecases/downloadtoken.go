package usecases

import (
	"context"
	"time"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/files/objectstorage"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/downloadtoken"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/id"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// IssueDownloadTokenCommand creates a capability for one deliverable. A nil
// OneTime means one-time; a zero TTL means downloadtoken.DefaultTTL.
type IssueDownloadTokenCommand struct {
	ActorID       string
	Project       *project.Project
	DeliverableID string
	OneTime       *bool
	TTL           time.Duration
}

type IssueDownloadTokenResult struct {
	Token     string    `json:"token"`
	Path      string    `json:"path"`
	OneTime   bool      `json:"one_time"`
	ExpiresAt time.Time `json:"expires_at"`
}

type IssueDownloadTokenExecutor interface {
	Execute(ctx context.Context, cmd IssueDownloadTokenCommand) (*IssueDownloadTokenResult, error)
}

type IssueDownloadTokenUseCase struct {
	deliverables project.DeliverableRepository
	tokens       downloadtoken.Repository
	generator    TokenGenerator
	clock        biztime.Clock
	logger       logger.Interface
}

func NewIssueDownloadTokenUseCase(
	deliverables project.DeliverableRepository,
	tokens downloadtoken.Repository,
	generator TokenGenerator,
	clock biztime.Clock,
	logger logger.Interface,
) *IssueDownloadTokenUseCase {
	return &IssueDownloadTokenUseCase{
		deliverables: deliverables,
		tokens:       tokens,
		generator:    generator,
		clock:        clock,
		logger:       logger,
	}
}

func (uc *IssueDownloadTokenUseCase) Execute(ctx context.Context, cmd IssueDownloadTokenCommand) (*IssueDownloadTokenResult, error) {
	if cmd.Project == nil {
		return nil, errors.NewNotFoundError("project not found")
	}
	ttl := cmd.TTL
	switch {
	case ttl == 0:
		ttl = downloadtoken.DefaultTTL
	case ttl < 0:
		return nil, errors.NewValidationError("ttl must be positive")
	case ttl > downloadtoken.MaxTTL:
		return nil, errors.NewValidationError("ttl exceeds the maximum of 7 days")
	}
	oneTime := true
	if cmd.OneTime != nil {
		oneTime = *cmd.OneTime
	}

	d, err := uc.deliverables.GetByID(ctx, cmd.DeliverableID)
	if err != nil {
		uc.logger.Errorw("failed to load deliverable", "deliverable_id", cmd.DeliverableID, "error", err)
		return nil, errors.NewInternalError("failed to load deliverable")
	}
	if d == nil || d.ProjectID != cmd.Project.ID() {
		return nil, errors.NewNotFoundError("deliverable not found")
	}

	plain, hash, err := uc.generator.Generate()
	if err != nil {
		uc.logger.Errorw("failed to generate download token", "error", err)
		return nil, errors.NewInternalError("failed to issue download token")
	}
	now := uc.clock.Now()
	token, err := downloadtoken.NewToken(id.NewUUID(), d.ID, hash, oneTime, now.Add(ttl), cmd.ActorID, now)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.tokens.Create(ctx, token); err != nil {
		uc.logger.Errorw("failed to store download token", "deliverable_id", d.ID, "error", err)
		return nil, errors.NewInternalError("failed to issue download token")
	}

	uc.logger.Infow("download token issued",
		"token_id", token.ID(),
		"deliverable_id", d.ID,
		"one_time", oneTime,
		"expires_at", token.ExpiresAt(),
	)
	return &IssueDownloadTokenResult{
		Token:     plain,
		Path:      "/downloads/" + plain,
		OneTime:   oneTime,
		ExpiresAt: token.ExpiresAt(),
	}, nil
}

type RedeemDownloadTokenCommand struct {
	Token string
}

type RedeemDownloadTokenExecutor interface {
	Execute(ctx context.Context, cmd RedeemDownloadTokenCommand) (*PresignedTransfer, error)
}

// RedeemDownloadTokenUseCase exchanges a token for a presigned GET. It needs
// no session; the token is the capability.
type RedeemDownloadTokenUseCase struct {
	tokens       downloadtoken.Repository
	deliverables project.DeliverableRepository
	storage      objectstorage.ObjectStorage
	generator    TokenGenerator
	recorder     auditlog.Recorder
	tx           db.Transactor
	clock        biztime.Clock
	opts         Options
	logger       logger.Interface
}

func NewRedeemDownloadTokenUseCase(
	tokens downloadtoken.Repository,
	deliverables project.DeliverableRepository,
	storage objectstorage.ObjectStorage,
	generator TokenGenerator,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	opts Options,
	logger logger.Interface,
) *RedeemDownloadTokenUseCase {
	return &RedeemDownloadTokenUseCase{
		tokens:       tokens,
		deliverables: deliverables,
		storage:      storage,
		generator:    generator,
		recorder:     recorder,
		tx:           tx,
		clock:        clock,
		opts:         opts.withDefaults(),
		logger:       logger,
	}
}

func (uc *RedeemDownloadTokenUseCase) Execute(ctx context.Context, cmd RedeemDownloadTokenCommand) (*PresignedTransfer, error) {
	if cmd.Token == "" {
		return nil, errors.NewNotFoundError("download token not found")
	}
	token, err := uc.tokens.GetByHash(ctx, uc.generator.Hash(cmd.Token))
	if err != nil {
		uc.logger.Errorw("failed to load download token", "error", err)
		return nil, errors.NewInternalError("failed to redeem download token")
	}
	if token == nil {
		return nil, errors.NewNotFoundError("download token not found")
	}

	now := uc.clock.Now()
	if token.IsExpired(now) {
		return nil, errors.NewTokenExpiredError("download token has expired")
	}
	if token.IsConsumed() {
		return nil, errors.NewTokenAlreadyUsedError("download token has already been used")
	}

	d, err := uc.deliverables.GetByID(ctx, token.DeliverableID())
	if err != nil {
		uc.logger.Errorw("failed to load deliverable", "deliverable_id", token.DeliverableID(), "error", err)
		return nil, errors.NewInternalError("failed to redeem download token")
	}
	if d == nil {
		return nil, errors.NewNotFoundError("deliverable not found")
	}

	// Presign first: a storage failure must leave a one-time token unspent.
	var url *objectstorage.PresignedURL
	err = callWithTimeout(ctx, uc.opts.CollaboratorTimeout, func(ctx context.Context) error {
		var err error
		url, err = uc.storage.PresignDownload(ctx, d.StorageKey, d.FileName, uc.opts.DownloadURLTTL)
		return err
	})
	if err != nil {
		return nil, upstream(uc.logger, "object_storage", err, "deliverable_id", d.ID)
	}

	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		if token.OneTime() {
			won, err := uc.tokens.MarkUsed(txCtx, token.ID(), now)
			if err != nil {
				return err
			}
			if !won {
				return errors.NewTokenAlreadyUsedError("download token has already been used")
			}
		}
		var createdBy string
		if by := token.CreatedBy(); by != nil {
			createdBy = *by
		}
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:    audit.ActionFileDownloaded,
			ProjectID: d.ProjectID,
			Details: audit.Details{
				"deliverable_id": d.ID,
				"file_name":      d.FileName,
				"token_id":       token.ID(),
				"one_time":       token.OneTime(),
				"issued_by":      createdBy,
				"via":            "token",
			},
		})
	})
	if err != nil {
		return nil, finish(uc.logger, err, "failed to redeem download token", "token_id", token.ID())
	}

	uc.logger.Infow("download token redeemed", "token_id", token.ID(), "deliverable_id", d.ID)
	return &PresignedTransfer{URL: url.URL, Method: url.Method, ExpiresAt: url.ExpiresAt}, nil
}
