// Package payment implements the escrow payment processor.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/shadowiq/shadowiq/internal/application/payment/paymentgateway"
	"github.com/shadowiq/shadowiq/internal/shared/constants"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// MetadataProjectID is the metadata key linking an intent to a project.
const MetadataProjectID = "project_id"

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
	// APIURL overrides the Stripe API base URL. Empty uses the default.
	APIURL string
}

// StripeGateway implements paymentgateway.PaymentGateway with Stripe
// PaymentIntents, Connect transfers and refunds.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	logger        logger.Interface
}

func NewStripeGateway(cfg StripeConfig, log logger.Interface) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is not configured")
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(1),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	})

	return &StripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		logger:        log,
	}, nil
}

func (g *StripeGateway) CreateIntent(ctx context.Context, req paymentgateway.CreateIntentRequest) (*paymentgateway.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	g.logger.Infow("payment intent created", "intent_id", pi.ID, "amount", req.AmountCents, "currency", req.Currency)

	return &paymentgateway.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

func (g *StripeGateway) GetIntentStatus(ctx context.Context, intentID string) (string, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve payment intent %s: %w", intentID, err)
	}
	return string(pi.Status), nil
}

func (g *StripeGateway) Transfer(ctx context.Context, req paymentgateway.TransferRequest) (string, error) {
	params := &stripe.TransferParams{
		Amount:      stripe.Int64(req.AmountCents),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Destination: stripe.String(req.Destination),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if projectID := req.Metadata[MetadataProjectID]; projectID != "" {
		params.SetIdempotencyKey("payout-" + projectID)
	}

	tr, err := g.api.Transfers.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create transfer: %w", err)
	}
	g.logger.Infow("transfer created", "transfer_id", tr.ID, "amount", req.AmountCents, "destination", req.Destination)
	return tr.ID, nil
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string, metadata map[string]string) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.SetIdempotencyKey("refund-" + intentID)

	r, err := g.api.Refunds.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to refund payment intent %s: %w", intentID, err)
	}
	g.logger.Infow("refund created", "refund_id", r.ID, "intent_id", intentID)
	return r.ID, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts the
// payment intent of succeeded, failed and canceled events.
func (g *StripeGateway) ParseWebhook(req *http.Request, payload []byte) (*paymentgateway.WebhookEvent, bool, error) {
	if g.webhookSecret == "" {
		return nil, false, fmt.Errorf("stripe webhook secret is not configured")
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		req.Header.Get(constants.HeaderStripeSignature),
		g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to verify webhook: %w", err)
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded,
		stripe.EventTypePaymentIntentPaymentFailed,
		stripe.EventTypePaymentIntentCanceled:
	default:
		g.logger.Debugw("ignoring stripe event", "event_id", event.ID, "type", event.Type)
		return nil, false, nil
	}

	var pi stripe.PaymentIntent
	if event.Data == nil {
		return nil, false, fmt.Errorf("webhook event %s has no data", event.ID)
	}
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, false, fmt.Errorf("failed to decode payment intent: %w", err)
	}

	status := string(pi.Status)
	if event.Type == stripe.EventTypePaymentIntentPaymentFailed && status == "" {
		status = paymentgateway.IntentRequiresPaymentMethod
	}

	return &paymentgateway.WebhookEvent{
		ID:        event.ID,
		Type:      string(event.Type),
		IntentID:  pi.ID,
		Status:    status,
		ProjectID: pi.Metadata[MetadataProjectID],
	}, true, nil
}
