package usecases

import (
	"context"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/payment/paymentgateway"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

type ConfirmPaymentCommand struct {
	ActorID   string
	ProjectID string
}

type ConfirmPaymentResult struct {
	Project *dto.ProjectResponse `json:"project"`
	Outcome Outcome              `json:"outcome"`
}

type ConfirmPaymentExecutor interface {
	Execute(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error)
}

// ConfirmPaymentUseCase asks the processor for the intent status and settles
// the project. Confirming twice is a no-op success.
type ConfirmPaymentUseCase struct {
	settlement
	gateway paymentgateway.PaymentGateway
	opts    Options
}

func NewConfirmPaymentUseCase(
	projects project.Repository,
	gateway paymentgateway.PaymentGateway,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	opts Options,
	logger logger.Interface,
) *ConfirmPaymentUseCase {
	return &ConfirmPaymentUseCase{
		settlement: settlement{
			projects: projects,
			recorder: recorder,
			tx:       tx,
			clock:    clock,
			logger:   logger,
		},
		gateway: gateway,
		opts:    opts.withDefaults(),
	}
}

func (uc *ConfirmPaymentUseCase) Execute(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
	current, err := loadProject(ctx, uc.projects, cmd.ProjectID)
	if err != nil {
		return nil, finish(uc.logger, err, "failed to confirm payment", "project_id", cmd.ProjectID)
	}
	if current.PaymentStatus().IsCompleted() {
		return &ConfirmPaymentResult{Project: dto.ToProjectResponse(current), Outcome: OutcomeAlreadyConfirmed}, nil
	}
	intent := intentID(current)
	if intent == "" || !settleable(current.PaymentStatus()) {
		return nil, errors.NewConflictError("no payment is in progress for this project")
	}

	var status string
	err = callWithTimeout(ctx, uc.opts.CollaboratorTimeout, func(ctx context.Context) error {
		var err error
		status, err = uc.gateway.GetIntentStatus(ctx, intent)
		return err
	})
	if err != nil {
		return nil, upstream(uc.logger, err, "project_id", current.ID(), "intent_id", intent)
	}

	p, outcome, err := uc.apply(ctx, current.ID(), intent, status, cmd.ActorID)
	if err != nil {
		return nil, finish(uc.logger, err, "failed to confirm payment", "project_id", cmd.ProjectID)
	}

	uc.logger.Infow("payment confirmation applied",
		"project_id", p.ID(),
		"intent_id", intent,
		"intent_status", status,
		"outcome", outcome,
	)
	return &ConfirmPaymentResult{Project: dto.ToProjectResponse(p), Outcome: outcome}, nil
}
