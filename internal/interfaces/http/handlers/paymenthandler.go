package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentUsecases "github.com/shadowiq/shadowiq/internal/application/payment/usecases"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

// maxWebhookBodyBytes bounds webhook payloads read into memory.
const maxWebhookBodyBytes = 64 << 10

type createPaymentUseCase interface {
	Execute(ctx context.Context, cmd paymentUsecases.CreatePaymentCommand) (*paymentUsecases.CreatePaymentResult, error)
}

type confirmPaymentUseCase interface {
	Execute(ctx context.Context, cmd paymentUsecases.ConfirmPaymentCommand) (*paymentUsecases.ConfirmPaymentResult, error)
}

type releasePayoutUseCase interface {
	Execute(ctx context.Context, cmd paymentUsecases.ReleasePayoutCommand) (*paymentUsecases.ReleasePayoutResult, error)
}

type refundPaymentUseCase interface {
	Execute(ctx context.Context, cmd paymentUsecases.RefundPaymentCommand) (*dto.ProjectResponse, error)
}

type handleWebhookUseCase interface {
	Execute(ctx context.Context, cmd paymentUsecases.HandleWebhookCommand) (paymentUsecases.Outcome, error)
}

// PaymentUseCases groups the use cases behind PaymentHandler.
type PaymentUseCases struct {
	Create  createPaymentUseCase
	Confirm confirmPaymentUseCase
	Release releasePayoutUseCase
	Refund  refundPaymentUseCase
	Webhook handleWebhookUseCase
}

type PaymentHandler struct {
	ucs    PaymentUseCases
	logger logger.Interface
}

func NewPaymentHandler(ucs PaymentUseCases, logger logger.Interface) *PaymentHandler {
	return &PaymentHandler{
		ucs:    ucs,
		logger: logger,
	}
}

type CreatePaymentRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
}

type ReleasePayoutRequest struct {
	Destination string `json:"destination" binding:"required,max=255"`
}

type RefundRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

// CreatePayment opens a payment intent for the agreed price.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid create payment request", "project_id", proj.ID(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.Create.Execute(c.Request.Context(), paymentUsecases.CreatePaymentCommand{
		ActorID:     caller.ID(),
		ProjectID:   proj.ID(),
		AmountCents: req.AmountCents,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "payment created")
}

// ConfirmPayment polls the processor for the intent status. Repeated calls
// after success are no-ops.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.Confirm.Execute(c.Request.Context(), paymentUsecases.ConfirmPaymentCommand{
		ActorID:   caller.ID(),
		ProjectID: proj.ID(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, string(result.Outcome), result)
}

func (h *PaymentHandler) ReleasePayout(c *gin.Context) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ReleasePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid release payout request", "project_id", proj.ID(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.Release.Execute(c.Request.Context(), paymentUsecases.ReleasePayoutCommand{
		ActorID:     caller.ID(),
		ProjectID:   proj.ID(),
		Destination: req.Destination,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "payout released", result)
}

func (h *PaymentHandler) Refund(c *gin.Context) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid refund request", "project_id", proj.ID(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.Refund.Execute(c.Request.Context(), paymentUsecases.RefundPaymentCommand{
		ActorID:   caller.ID(),
		ProjectID: proj.ID(),
		Reason:    req.Reason,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "payment refunded", result)
}

// HandleWebhook accepts processor notifications. The signature is checked
// by the gateway; the raw body must reach it unmodified.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warnw("failed to read webhook body", "error", err)
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("unreadable webhook body"))
		return
	}

	outcome, err := h.ucs.Webhook.Execute(c.Request.Context(), paymentUsecases.HandleWebhookCommand{
		Request: c.Request,
		Payload: payload,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "webhook processed", gin.H{"outcome": outcome})
}
