package usecases

import (
	"context"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/payment/paymentgateway"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// Outcome is what applying an intent status did to a project.
type Outcome string

const (
	OutcomeConfirmed        Outcome = "confirmed"
	OutcomeAlreadyConfirmed Outcome = "already_confirmed"
	OutcomeFailed           Outcome = "failed"
	OutcomePending          Outcome = "pending"
)

// settlement applies a processor-reported intent status to a project. It is
// shared by the client-driven confirm and the webhook.
type settlement struct {
	projects project.Repository
	recorder auditlog.Recorder
	tx       db.Transactor
	clock    biztime.Clock
	logger   logger.Interface
}

func (s *settlement) apply(ctx context.Context, projectID, intent, status, actorID string) (*project.Project, Outcome, error) {
	var lastErr error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		p, outcome, err := s.applyOnce(ctx, projectID, intent, status, actorID)
		if !errors.IsConflictError(err) {
			return p, outcome, err
		}
		lastErr = err

		// Lost a race: the other writer may have confirmed already.
		current, loadErr := loadProject(ctx, s.projects, projectID)
		if loadErr != nil {
			return nil, "", loadErr
		}
		if current.PaymentStatus().IsCompleted() {
			s.logger.Infow("payment confirmed concurrently", "project_id", projectID)
			return current, OutcomeAlreadyConfirmed, nil
		}
	}
	return nil, "", lastErr
}

func (s *settlement) applyOnce(ctx context.Context, projectID, intent, status, actorID string) (*project.Project, Outcome, error) {
	var (
		result  *project.Project
		outcome Outcome
	)
	err := s.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		p, err := loadProject(txCtx, s.projects, projectID)
		if err != nil {
			return err
		}
		result = p
		if p.PaymentStatus().IsCompleted() {
			outcome = OutcomeAlreadyConfirmed
			return nil
		}
		if intentID(p) != intent {
			return errors.NewConflictError("payment intent does not match the project")
		}

		now := s.clock.Now()
		switch {
		case status == paymentgateway.IntentSucceeded:
			from := p.Status()
			if _, err := p.ConfirmPayment(now); err != nil {
				return errors.NewConflictError(err.Error())
			}
			if err := s.projects.Update(txCtx, p); err != nil {
				return err
			}
			outcome = OutcomeConfirmed
			if err := s.recorder.Record(txCtx, auditlog.Event{
				Action:     audit.ActionPaymentProcessed,
				ProjectID:  p.ID(),
				IdentityID: actorID,
				Details: audit.Details{
					"amount":            agreedPrice(p),
					"payment_intent_id": intent,
				},
			}); err != nil {
				return err
			}
			if from == vo.StatusSubmitted && p.Status() == vo.StatusAccepted {
				return s.recorder.Record(txCtx, auditlog.Event{
					Action:     audit.ActionProjectAccepted,
					ProjectID:  p.ID(),
					IdentityID: actorID,
					Details:    audit.Details{"from": from.String(), "to": p.Status().String()},
				})
			}
			return nil
		case paymentgateway.IsFailedStatus(status):
			changed, err := p.FailPayment(now)
			if err != nil {
				return errors.NewConflictError(err.Error())
			}
			outcome = OutcomeFailed
			if !changed {
				return nil
			}
			return s.projects.Update(txCtx, p)
		default:
			outcome = OutcomePending
			return nil
		}
	})
	if err != nil {
		return nil, "", err
	}
	return result, outcome, nil
}

// settleable reports whether a processor status can still be applied. A
// failed payment stays settleable because a declined intent can succeed on
// retry.
func settleable(status vo.PaymentStatus) bool {
	return status == vo.PaymentStatusProcessing || status == vo.PaymentStatusFailed
}
