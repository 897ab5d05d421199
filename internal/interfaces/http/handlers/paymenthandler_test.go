package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentUsecases "github.com/shadowiq/shadowiq/internal/application/payment/usecases"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	apptestutil "github.com/shadowiq/shadowiq/internal/application/testutil"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/handlers/testutil"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

func TestPaymentHandler_ConfirmPayment(t *testing.T) {
	client := apptestutil.NewClient("quiet-otter")
	proj := apptestutil.NewProjectFixture(client.ID())

	tests := []struct {
		name    string
		outcome paymentUsecases.Outcome
	}{
		{"first confirmation", paymentUsecases.OutcomeConfirmed},
		{"repeated confirmation", paymentUsecases.OutcomeAlreadyConfirmed},
		{"still pending", paymentUsecases.OutcomePending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPaymentHandler(PaymentUseCases{
				Confirm: &mockConfirmPaymentUC{executeFunc: func(_ context.Context, cmd paymentUsecases.ConfirmPaymentCommand) (*paymentUsecases.ConfirmPaymentResult, error) {
					assert.Equal(t, proj.ID(), cmd.ProjectID)
					return &paymentUsecases.ConfirmPaymentResult{Project: dto.ToProjectResponse(proj), Outcome: tt.outcome}, nil
				}},
			}, logger.NewNopLogger())

			c, w := testutil.NewTestContext(http.MethodPost, "/projects/"+proj.Code()+"/payment/confirm", nil)
			testutil.SetCaller(c, client)
			testutil.SetProject(c, proj)
			handler.ConfirmPayment(c)

			require.Equal(t, http.StatusOK, w.Code)
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			assert.Equal(t, string(tt.outcome), resp.Message)
		})
	}
}

func TestPaymentHandler_CreatePayment_RejectsNonPositiveAmount(t *testing.T) {
	client := apptestutil.NewClient("quiet-otter")
	proj := apptestutil.NewProjectFixture(client.ID())
	handler := NewPaymentHandler(PaymentUseCases{}, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/projects/"+proj.Code()+"/payment", map[string]int{"amount_cents": -5})
	testutil.SetCaller(c, client)
	testutil.SetProject(c, proj)
	handler.CreatePayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_HandleWebhook(t *testing.T) {
	tests := []struct {
		name       string
		outcome    paymentUsecases.Outcome
		ucErr      error
		wantStatus int
	}{
		{"confirmed", paymentUsecases.OutcomeConfirmed, nil, http.StatusOK},
		{"bad signature", "", errors.NewBadRequestError("invalid webhook signature"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := `{"id":"evt_1","type":"payment_intent.succeeded"}`
			handler := NewPaymentHandler(PaymentUseCases{
				Webhook: &mockWebhookUC{executeFunc: func(_ context.Context, cmd paymentUsecases.HandleWebhookCommand) (paymentUsecases.Outcome, error) {
					assert.Equal(t, payload, string(cmd.Payload))
					assert.Equal(t, "t=1,v1=abc", cmd.Request.Header.Get("Stripe-Signature"))
					return tt.outcome, tt.ucErr
				}},
			}, logger.NewNopLogger())

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(payload))
			c.Request.Header.Set("Stripe-Signature", "t=1,v1=abc")
			handler.HandleWebhook(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.ucErr == nil {
				assert.Contains(t, w.Body.String(), `"outcome":"confirmed"`)
			}
		})
	}
}
