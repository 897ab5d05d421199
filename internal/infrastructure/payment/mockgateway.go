package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/shadowiq/shadowiq/internal/application/payment/paymentgateway"
	"github.com/shadowiq/shadowiq/internal/shared/id"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// MockGateway is an in-process processor for development when no Stripe
// key is configured. Intents succeed immediately when shouldSucceed is set.
type MockGateway struct {
	mu            sync.Mutex
	shouldSucceed bool
	intents       map[string]string
	logger        logger.Interface
}

func NewMockGateway(shouldSucceed bool, log logger.Interface) *MockGateway {
	return &MockGateway{
		shouldSucceed: shouldSucceed,
		intents:       make(map[string]string),
		logger:        log,
	}
}

func (m *MockGateway) CreateIntent(_ context.Context, req paymentgateway.CreateIntentRequest) (*paymentgateway.Intent, error) {
	intentID := "pi_mock_" + id.NewSortableID()
	status := paymentgateway.IntentRequiresPaymentMethod
	if m.shouldSucceed {
		status = paymentgateway.IntentSucceeded
	}

	m.mu.Lock()
	m.intents[intentID] = status
	m.mu.Unlock()

	m.logger.Warnw("mock payment intent created", "intent_id", intentID, "amount", req.AmountCents)
	return &paymentgateway.Intent{ID: intentID, ClientSecret: intentID + "_secret", Status: paymentgateway.IntentProcessing}, nil
}

func (m *MockGateway) GetIntentStatus(_ context.Context, intentID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.intents[intentID]
	if !ok {
		return "", fmt.Errorf("unknown intent %s", intentID)
	}
	return status, nil
}

func (m *MockGateway) Transfer(_ context.Context, req paymentgateway.TransferRequest) (string, error) {
	return fmt.Sprintf("tr_mock_%s", id.NewSortableID()), nil
}

func (m *MockGateway) Refund(_ context.Context, intentID string, _ map[string]string) (string, error) {
	if _, err := m.GetIntentStatus(context.Background(), intentID); err != nil {
		return "", err
	}
	return fmt.Sprintf("re_mock_%s", id.NewSortableID()), nil
}

type mockWebhook struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	IntentID  string `json:"intent_id"`
	Status    string `json:"status"`
	ProjectID string `json:"project_id"`
}

// ParseWebhook accepts unsigned JSON bodies describing an intent.
func (m *MockGateway) ParseWebhook(_ *http.Request, payload []byte) (*paymentgateway.WebhookEvent, bool, error) {
	var body mockWebhook
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, false, fmt.Errorf("failed to decode webhook: %w", err)
	}
	if body.IntentID == "" {
		return nil, false, nil
	}
	return &paymentgateway.WebhookEvent{
		ID:        body.ID,
		Type:      body.Type,
		IntentID:  body.IntentID,
		Status:    body.Status,
		ProjectID: body.ProjectID,
	}, true, nil
}
