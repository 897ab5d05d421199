package usecases

import (
	"context"
	"strings"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/payment/paymentgateway"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

type RefundPaymentCommand struct {
	ActorID   string
	ProjectID string
	Reason    string
}

type RefundPaymentExecutor interface {
	Execute(ctx context.Context, cmd RefundPaymentCommand) (*dto.ProjectResponse, error)
}

// RefundPaymentUseCase returns a completed payment to the client, which also
// rejects the project. Refunding a refunded project is a no-op success.
type RefundPaymentUseCase struct {
	projects project.Repository
	gateway  paymentgateway.PaymentGateway
	recorder auditlog.Recorder
	tx       db.Transactor
	clock    biztime.Clock
	opts     Options
	logger   logger.Interface
}

func NewRefundPaymentUseCase(
	projects project.Repository,
	gateway paymentgateway.PaymentGateway,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	opts Options,
	logger logger.Interface,
) *RefundPaymentUseCase {
	return &RefundPaymentUseCase{
		projects: projects,
		gateway:  gateway,
		recorder: recorder,
		tx:       tx,
		clock:    clock,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

func (uc *RefundPaymentUseCase) Execute(ctx context.Context, cmd RefundPaymentCommand) (*dto.ProjectResponse, error) {
	p, err := uc.RefundProject(ctx, cmd.ActorID, cmd.ProjectID, cmd.Reason)
	if err != nil {
		return nil, err
	}
	return dto.ToProjectResponse(p), nil
}

// RefundProject refunds projectID and returns its new state.
func (uc *RefundPaymentUseCase) RefundProject(ctx context.Context, actorID, projectID, reason string) (*project.Project, error) {
	reason = strings.TrimSpace(reason)

	current, err := loadProject(ctx, uc.projects, projectID)
	if err != nil {
		return nil, finish(uc.logger, err, "failed to refund payment", "project_id", projectID)
	}
	if current.PaymentStatus().IsRefunded() {
		uc.logger.Infow("payment already refunded", "project_id", projectID)
		return current, nil
	}
	if !current.PaymentStatus().IsCompleted() {
		return nil, errors.NewConflictError("only completed payments can be refunded")
	}
	intent := intentID(current)
	if intent == "" {
		return nil, errors.NewConflictError("project has no payment intent")
	}

	var refundID string
	err = callWithTimeout(ctx, uc.opts.CollaboratorTimeout, func(ctx context.Context) error {
		var err error
		refundID, err = uc.gateway.Refund(ctx, intent, map[string]string{
			"project_id":   current.ID(),
			"project_code": current.Code(),
			"reason":       reason,
		})
		return err
	})
	if err != nil {
		return nil, upstream(uc.logger, err, "project_id", current.ID(), "intent_id", intent)
	}

	var updated *project.Project
	for attempt := 0; attempt < conflictRetries; attempt++ {
		updated, err = uc.record(ctx, actorID, projectID, refundID, reason)
		if !errors.IsConflictError(err) {
			break
		}
	}
	if err != nil {
		uc.logger.Errorw("refund issued but not recorded", "project_id", projectID, "refund_id", refundID)
		return nil, finish(uc.logger, err, "failed to refund payment", "project_id", projectID)
	}

	uc.logger.Infow("payment refunded", "project_id", projectID, "refund_id", refundID, "actor_id", actorID)
	return updated, nil
}

func (uc *RefundPaymentUseCase) record(ctx context.Context, actorID, projectID, refundID, reason string) (*project.Project, error) {
	var updated *project.Project
	err := uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		p, err := loadProject(txCtx, uc.projects, projectID)
		if err != nil {
			return err
		}
		updated = p
		from := p.Status()
		changed, err := p.Refund(uc.clock.Now())
		if err != nil {
			return errors.NewConflictError(err.Error())
		}
		if !changed {
			return nil
		}
		if err := uc.projects.Update(txCtx, p); err != nil {
			return err
		}
		if err := uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionPaymentRefunded,
			ProjectID:  p.ID(),
			IdentityID: actorID,
			Details: audit.Details{
				"refund_id": refundID,
				"amount":    agreedPrice(p),
				"reason":    reason,
			},
		}); err != nil {
			return err
		}
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionProjectRejected,
			ProjectID:  p.ID(),
			IdentityID: actorID,
			Details:    audit.Details{"from": from.String(), "reason": reason, "refunded": true},
		})
	})
	return updated, err
}
