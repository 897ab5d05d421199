package usecases

import (
	"context"
	"fmt"

	"github.com/shadowiq/shadowiq/internal/application/payment/paymentgateway"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// CreatePaymentCommand opens an escrow payment for a submitted project.
// A zero AmountCents reuses the price of an earlier attempt.
type CreatePaymentCommand struct {
	ActorID     string
	ProjectID   string
	AmountCents int64
}

type CreatePaymentResult struct {
	Project      *dto.ProjectResponse `json:"project"`
	IntentID     string               `json:"payment_intent_id"`
	ClientSecret string               `json:"client_secret"`
	AmountCents  int64                `json:"amount_cents"`
	Currency     string               `json:"currency"`
}

type CreatePaymentExecutor interface {
	Execute(ctx context.Context, cmd CreatePaymentCommand) (*CreatePaymentResult, error)
}

type CreatePaymentUseCase struct {
	projects project.Repository
	gateway  paymentgateway.PaymentGateway
	tx       db.Transactor
	clock    biztime.Clock
	opts     Options
	logger   logger.Interface
}

func NewCreatePaymentUseCase(
	projects project.Repository,
	gateway paymentgateway.PaymentGateway,
	tx db.Transactor,
	clock biztime.Clock,
	opts Options,
	logger logger.Interface,
) *CreatePaymentUseCase {
	return &CreatePaymentUseCase{
		projects: projects,
		gateway:  gateway,
		tx:       tx,
		clock:    clock,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

func (uc *CreatePaymentUseCase) Execute(ctx context.Context, cmd CreatePaymentCommand) (*CreatePaymentResult, error) {
	current, err := loadProject(ctx, uc.projects, cmd.ProjectID)
	if err != nil {
		return nil, finish(uc.logger, err, "failed to create payment", "project_id", cmd.ProjectID)
	}

	amount := cmd.AmountCents
	if amount == 0 {
		amount = agreedPrice(current)
	}
	if amount <= 0 {
		return nil, errors.NewValidationError("amount must be positive")
	}
	if current.Status() != vo.StatusSubmitted {
		return nil, errors.NewConflictError("payment can only be made for a submitted project")
	}
	if current.PaymentStatus().IsCompleted() || current.PaymentStatus().IsRefunded() {
		return nil, errors.NewConflictError("project has already been paid")
	}

	var intent *paymentgateway.Intent
	err = callWithTimeout(ctx, uc.opts.CollaboratorTimeout, func(ctx context.Context) error {
		var err error
		intent, err = uc.gateway.CreateIntent(ctx, paymentgateway.CreateIntentRequest{
			AmountCents: amount,
			Currency:    uc.opts.Currency,
			Description: fmt.Sprintf("ShadowIQ project %s", current.Code()),
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
		if err := p.StartPayment(intent.ID, vo.NewMoney(amount, uc.opts.Currency), uc.clock.Now()); err != nil {
			return errors.NewConflictError(err.Error())
		}
		if err := uc.projects.Update(txCtx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		uc.logger.Warnw("payment intent created but not recorded", "project_id", cmd.ProjectID, "intent_id", intent.ID)
		return nil, finish(uc.logger, err, "failed to create payment", "project_id", cmd.ProjectID)
	}

	uc.logger.Infow("payment started",
		"project_id", updated.ID(),
		"intent_id", intent.ID,
		"amount_cents", amount,
		"currency", uc.opts.Currency,
	)
	return &CreatePaymentResult{
		Project:      dto.ToProjectResponse(updated),
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  amount,
		Currency:     uc.opts.Currency,
	}, nil
}
