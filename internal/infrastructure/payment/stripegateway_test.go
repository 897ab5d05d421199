package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/shadowiq/shadowiq/internal/application/payment/paymentgateway"
	"github.com/shadowiq/shadowiq/internal/shared/constants"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

const testWebhookSecret = "whsec_test_secret"

func newTestGateway(t *testing.T, apiURL string) *StripeGateway {
	t.Helper()
	g, err := NewStripeGateway(StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
		Timeout:       5 * time.Second,
		APIURL:        apiURL,
	}, logger.NewNopLogger())
	require.NoError(t, err)
	return g
}

func signedRequest(t *testing.T, payload []byte, secret string) *http.Request {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(string(payload)))
	req.Header.Set(constants.HeaderStripeSignature, signed.Header)
	return req
}

func eventPayload(t *testing.T, eventType, status string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":     "evt_1",
		"object": "event",
		"type":   eventType,
		"data": map[string]any{
			"object": map[string]any{
				"id":       "pi_1",
				"object":   "payment_intent",
				"status":   status,
				"metadata": map[string]string{MetadataProjectID: "project-1"},
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func TestStripeGateway_ParseWebhook(t *testing.T) {
	g := newTestGateway(t, "")

	tests := []struct {
		name       string
		eventType  string
		status     string
		secret     string
		wantErr    bool
		wantOK     bool
		wantStatus string
	}{
		{name: "succeeded", eventType: "payment_intent.succeeded", status: "succeeded", secret: testWebhookSecret, wantOK: true, wantStatus: paymentgateway.IntentSucceeded},
		{name: "failed", eventType: "payment_intent.payment_failed", status: "requires_payment_method", secret: testWebhookSecret, wantOK: true, wantStatus: paymentgateway.IntentRequiresPaymentMethod},
		{name: "canceled", eventType: "payment_intent.canceled", status: "canceled", secret: testWebhookSecret, wantOK: true, wantStatus: paymentgateway.IntentCanceled},
		{name: "unrelated event", eventType: "customer.created", status: "", secret: testWebhookSecret},
		{name: "bad signature", eventType: "payment_intent.succeeded", status: "succeeded", secret: "whsec_other", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := eventPayload(t, tt.eventType, tt.status)
			event, ok, err := g.ParseWebhook(signedRequest(t, payload, tt.secret), payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, "evt_1", event.ID)
			assert.Equal(t, "pi_1", event.IntentID)
			assert.Equal(t, "project-1", event.ProjectID)
			assert.Equal(t, tt.wantStatus, event.Status)
		})
	}
}

func TestStripeGateway_ParseWebhookRequiresSecret(t *testing.T) {
	g := newTestGateway(t, "")
	g.webhookSecret = ""

	payload := eventPayload(t, "payment_intent.succeeded", "succeeded")
	_, _, err := g.ParseWebhook(signedRequest(t, payload, testWebhookSecret), payload)
	assert.Error(t, err)
}

func TestStripeGateway_CreateIntent(t *testing.T) {
	var amount, currency, projectID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if strings.HasSuffix(r.URL.Path, "/payment_intents") {
			amount = r.Form.Get("amount")
			currency = r.Form.Get("currency")
			projectID = r.Form.Get("metadata[project_id]")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret_x","status":"requires_payment_method"}`))
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	intent, err := g.CreateIntent(context.Background(), paymentgateway.CreateIntentRequest{
		AmountCents: 5000,
		Currency:    "USD",
		Metadata:    map[string]string{MetadataProjectID: "project-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_x", intent.ClientSecret)
	assert.Equal(t, paymentgateway.IntentRequiresPaymentMethod, intent.Status)
	assert.Equal(t, "5000", amount)
	assert.Equal(t, "usd", currency)
	assert.Equal(t, "project-1", projectID)
}

func TestStripeGateway_UpstreamErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such payment_intent"}}`))
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL)
	_, err := g.Refund(context.Background(), "pi_missing", nil)
	assert.ErrorContains(t, err, "pi_missing")
}

func TestNewStripeGateway_RequiresKey(t *testing.T) {
	_, err := NewStripeGateway(StripeConfig{}, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestMockGateway(t *testing.T) {
	ctx := context.Background()
	m := NewMockGateway(true, logger.NewNopLogger())

	intent, err := m.CreateIntent(ctx, paymentgateway.CreateIntentRequest{AmountCents: 100, Currency: "usd"})
	require.NoError(t, err)

	status, err := m.GetIntentStatus(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, paymentgateway.IntentSucceeded, status)

	_, err = m.Refund(ctx, "pi_unknown", nil)
	assert.Error(t, err)

	event, ok, err := m.ParseWebhook(nil, []byte(`{"id":"evt","intent_id":"`+intent.ID+`","status":"succeeded","project_id":"p"}`))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, intent.ID, event.IntentID)
}
