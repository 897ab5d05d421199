package usecases

import (
	"context"
	"net/http"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/payment/paymentgateway"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

type HandleWebhookCommand struct {
	Request *http.Request
	Payload []byte
}

type HandleWebhookExecutor interface {
	Execute(ctx context.Context, cmd HandleWebhookCommand) (Outcome, error)
}

// HandleWebhookUseCase settles payments from verified processor
// notifications. Unknown projects and stale intents are acknowledged and
// ignored so the processor stops retrying.
type HandleWebhookUseCase struct {
	settlement
	gateway paymentgateway.PaymentGateway
}

func NewHandleWebhookUseCase(
	projects project.Repository,
	gateway paymentgateway.PaymentGateway,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	logger logger.Interface,
) *HandleWebhookUseCase {
	return &HandleWebhookUseCase{
		settlement: settlement{
			projects: projects,
			recorder: recorder,
			tx:       tx,
			clock:    clock,
			logger:   logger,
		},
		gateway: gateway,
	}
}

func (uc *HandleWebhookUseCase) Execute(ctx context.Context, cmd HandleWebhookCommand) (Outcome, error) {
	event, ok, err := uc.gateway.ParseWebhook(cmd.Request, cmd.Payload)
	if err != nil {
		uc.logger.Warnw("invalid payment webhook", "error", err)
		return "", errors.NewBadRequestError("invalid webhook signature")
	}
	if !ok {
		return OutcomePending, nil
	}

	p, err := uc.projects.GetByID(ctx, event.ProjectID)
	if err != nil {
		uc.logger.Errorw("failed to load project for webhook", "event_id", event.ID, "error", err)
		return "", errors.NewInternalError("failed to process webhook")
	}
	if p == nil || intentID(p) != event.IntentID {
		uc.logger.Warnw("ignoring webhook for unknown intent",
			"event_id", event.ID,
			"project_id", event.ProjectID,
			"intent_id", event.IntentID,
		)
		return OutcomePending, nil
	}

	_, outcome, err := uc.apply(ctx, p.ID(), event.IntentID, event.Status, "")
	if err != nil {
		return "", finish(uc.logger, err, "failed to process webhook", "event_id", event.ID)
	}
	uc.logger.Infow("payment webhook applied",
		"event_id", event.ID,
		"event_type", event.Type,
		"project_id", p.ID(),
		"outcome", outcome,
	)
	return outcome, nil
}
