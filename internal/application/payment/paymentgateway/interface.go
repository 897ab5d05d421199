package paymentgateway

import (
	"context"
	"net/http"
)

// Intent statuses reported by the processor. Only IntentSucceeded confirms a
// payment and only IntentCanceled fails it. IntentRequiresPaymentMethod is
// both the initial state and the state after a declined card, so the client
// can still retry on the same intent; it leaves the payment processing.
const (
	IntentSucceeded             = "succeeded"
	IntentProcessing            = "processing"
	IntentRequiresPaymentMethod = "requires_payment_method"
	IntentRequiresConfirmation  = "requires_confirmation"
	IntentRequiresAction        = "requires_action"
	IntentCanceled              = "canceled"
)

// PaymentGateway is the escrow payment processor.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)
	GetIntentStatus(ctx context.Context, intentID string) (string, error)
	// Transfer moves amount (smallest currency unit) to a connected account.
	Transfer(ctx context.Context, req TransferRequest) (string, error)
	Refund(ctx context.Context, intentID string, metadata map[string]string) (string, error)
	// ParseWebhook verifies the signature of an inbound webhook and returns
	// the intent event it carries. ok is false for event types the core
	// does not handle.
	ParseWebhook(req *http.Request, payload []byte) (event *WebhookEvent, ok bool, err error)
}

type CreateIntentRequest struct {
	AmountCents int64
	Currency    string
	Description string
	Metadata    map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

type TransferRequest struct {
	AmountCents int64
	Currency    string
	Destination string
	Metadata    map[string]string
}

// WebhookEvent is a verified payment intent notification.
type WebhookEvent struct {
	ID        string
	Type      string
	IntentID  string
	Status    string
	ProjectID string
}

// IsFailedStatus reports whether status is a terminal failure for an intent.
func IsFailedStatus(status string) bool {
	return status == IntentCanceled
}
