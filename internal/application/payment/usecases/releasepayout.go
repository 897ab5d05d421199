package usecases

import (
	"context"
	"strings"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/payment/paymentgateway"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// ReleasePayoutCommand pays the assigned analyst of a completed project.
// Destination is the analyst's connected payout account.
type ReleasePayoutCommand struct {
	ActorID     string
	ProjectID   string
	Destination string
}

type ReleasePayoutResult struct {
	Project          *dto.ProjectResponse `json:"project"`
	TransferID       string               `json:"transfer_id"`
	AmountCents      int64                `json:"amount_cents"`
	PlatformFeeCents int64                `json:"platform_fee_cents"`
	Currency         string               `json:"currency"`
}

type ReleasePayoutExecutor interface {
	Execute(ctx context.Context, cmd ReleasePayoutCommand) (*ReleasePayoutResult, error)
}

type ReleasePayoutUseCase struct {
	projects project.Repository
	gateway  paymentgateway.PaymentGateway
	recorder auditlog.Recorder
	tx       db.Transactor
	clock    biztime.Clock
	opts     Options
	logger   logger.Interface
}

func NewReleasePayoutUseCase(
	projects project.Repository,
	gateway paymentgateway.PaymentGateway,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	opts Options,
	logger logger.Interface,
) *ReleasePayoutUseCase {
	return &ReleasePayoutUseCase{
		projects: projects,
		gateway:  gateway,
		recorder: recorder,
		tx:       tx,
		clock:    clock,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

func (uc *ReleasePayoutUseCase) Execute(ctx context.Context, cmd ReleasePayoutCommand) (*ReleasePayoutResult, error) {
	destination := strings.TrimSpace(cmd.Destination)
	if destination == "" {
		return nil, errors.NewValidationError("destination account is required")
	}

	current, err := loadProject(ctx, uc.projects, cmd.ProjectID)
	if err != nil {
		return nil, finish(uc.logger, err, "failed to release payout", "project_id", cmd.ProjectID)
	}
	if err := current.CanReleasePayout(); err != nil {
		return nil, errors.NewConflictError(err.Error())
	}

	fee, payout := vo.NewMoney(agreedPrice(current), uc.opts.Currency).Split(uc.opts.PlatformFeePercent)

	var transferID string
	err = callWithTimeout(ctx, uc.opts.CollaboratorTimeout, func(ctx context.Context) error {
		var err error
		transferID, err = uc.gateway.Transfer(ctx, paymentgateway.TransferRequest{
			AmountCents: payout.AmountInCents(),
			Currency:    payout.Currency(),
			Destination: destination,
			Metadata: map[string]string{
				"project_id":   current.ID(),
				"project_code": current.Code(),
			},
		})
		return err
	})
	if err != nil {
		return nil, upstream(uc.logger, err, "project_id", current.ID())
	}

	var updated *project.Project
	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		p, err := loadProject(txCtx, uc.projects, cmd.ProjectID)
		if err != nil {
			return err
		}
		if err := p.RecordPayout(transferID, uc.clock.Now()); err != nil {
			return errors.NewConflictError(err.Error())
		}
		if err := uc.projects.Update(txCtx, p); err != nil {
			return err
		}
		updated = p
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionPayoutReleased,
			ProjectID:  p.ID(),
			IdentityID: cmd.ActorID,
			Details: audit.Details{
				"transfer_id":  transferID,
				"amount":       payout.AmountInCents(),
				"platform_fee": fee.AmountInCents(),
				"currency":     payout.Currency(),
			},
		})
	})
	if err != nil {
		uc.logger.Errorw("payout transferred but not recorded", "project_id", cmd.ProjectID, "transfer_id", transferID)
		return nil, finish(uc.logger, err, "failed to release payout", "project_id", cmd.ProjectID)
	}

	uc.logger.Infow("payout released",
		"project_id", updated.ID(),
		"transfer_id", transferID,
		"amount_cents", payout.AmountInCents(),
		"platform_fee_cents", fee.AmountInCents(),
	)
	return &ReleasePayoutResult{
		Project:          dto.ToProjectResponse(updated),
		TransferID:       transferID,
		AmountCents:      payout.AmountInCents(),
		PlatformFeeCents: fee.AmountInCents(),
		Currency:         payout.Currency(),
	}, nil
}
