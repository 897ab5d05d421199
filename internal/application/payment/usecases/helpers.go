package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

const (
	DefaultCurrency           = "usd"
	DefaultPlatformFeePercent = 20

	collaboratorPaymentGateway = "payment_gateway"
	conflictRetries            = 2
)

// Options configures the escrow flow.
type Options struct {
	Currency            string
	PlatformFeePercent  int
	CollaboratorTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Currency == "" {
		o.Currency = DefaultCurrency
	}
	if o.PlatformFeePercent <= 0 || o.PlatformFeePercent >= 100 {
		o.PlatformFeePercent = DefaultPlatformFeePercent
	}
	if o.CollaboratorTimeout <= 0 {
		o.CollaboratorTimeout = 10 * time.Second
	}
	return o
}

func loadProject(ctx context.Context, repo project.Repository, projectID string) (*project.Project, error) {
	p, err := repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError("project not found")
	}
	return p, nil
}

func callWithTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

func upstream(log logger.Interface, err error, keyvals ...any) error {
	log.Errorw("payment gateway call failed", append(keyvals, "collaborator", collaboratorPaymentGateway, "error", err)...)
	return errors.NewUpstreamError(collaboratorPaymentGateway, err)
}

func finish(log logger.Interface, err error, msg string, keyvals ...any) error {
	if err == nil {
		return nil
	}
	if errors.IsAppError(err) {
		return err
	}
	log.Errorw(msg, append(keyvals, "error", err)...)
	return errors.NewInternalError(msg)
}

func intentID(p *project.Project) string {
	if id := p.PaymentIntentID(); id != nil {
		return *id
	}
	return ""
}

func agreedPrice(p *project.Project) int64 {
	if c := p.AgreedPriceCents(); c != nil {
		return *c
	}
	return 0
}
