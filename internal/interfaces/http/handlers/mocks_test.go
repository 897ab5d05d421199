package handlers

import (
	"context"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	filesUsecases "github.com/shadowiq/shadowiq/internal/application/files/usecases"
	identityUsecases "github.com/shadowiq/shadowiq/internal/application/identity/usecases"
	paymentUsecases "github.com/shadowiq/shadowiq/internal/application/payment/usecases"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	projectUsecases "github.com/shadowiq/shadowiq/internal/application/project/usecases"
)

type mockRequestMagicLinkUC struct {
	executeFunc func(ctx context.Context, cmd identityUsecases.RequestMagicLinkCommand) (*identityUsecases.RequestMagicLinkResult, error)
}

func (m *mockRequestMagicLinkUC) Execute(ctx context.Context, cmd identityUsecases.RequestMagicLinkCommand) (*identityUsecases.RequestMagicLinkResult, error) {
	return m.executeFunc(ctx, cmd)
}

type mockVerifyMagicLinkUC struct {
	executeFunc func(ctx context.Context, cmd identityUsecases.VerifyMagicLinkCommand) (*identityUsecases.VerifyMagicLinkResult, error)
}

func (m *mockVerifyMagicLinkUC) Execute(ctx context.Context, cmd identityUsecases.VerifyMagicLinkCommand) (*identityUsecases.VerifyMagicLinkResult, error) {
	return m.executeFunc(ctx, cmd)
}

type mockLogoutUC struct {
	calls []string
	err   error
}

func (m *mockLogoutUC) Execute(ctx context.Context, cmd identityUsecases.LogoutCommand) error {
	m.calls = append(m.calls, cmd.SessionID)
	return m.err
}

type mockDashboardUC struct {
	executeFunc func(ctx context.Context, query projectUsecases.DashboardQuery) (*projectUsecases.DashboardResult, error)
}

func (m *mockDashboardUC) Execute(ctx context.Context, query projectUsecases.DashboardQuery) (*projectUsecases.DashboardResult, error) {
	return m.executeFunc(ctx, query)
}

type mockSubmitProjectUC struct {
	executeFunc func(ctx context.Context, cmd projectUsecases.SubmitProjectCommand) (*dto.ProjectResponse, error)
}

func (m *mockSubmitProjectUC) Execute(ctx context.Context, cmd projectUsecases.SubmitProjectCommand) (*dto.ProjectResponse, error) {
	return m.executeFunc(ctx, cmd)
}

type mockGetProjectUC struct {
	executeFunc func(ctx context.Context, query projectUsecases.GetProjectQuery) (*dto.ProjectDetailResponse, error)
}

func (m *mockGetProjectUC) Execute(ctx context.Context, query projectUsecases.GetProjectQuery) (*dto.ProjectDetailResponse, error) {
	return m.executeFunc(ctx, query)
}

type mockChangeStatusUC struct {
	executeFunc func(ctx context.Context, cmd projectUsecases.ChangeStatusCommand) (*dto.ProjectResponse, error)
}

func (m *mockChangeStatusUC) Execute(ctx context.Context, cmd projectUsecases.ChangeStatusCommand) (*dto.ProjectResponse, error) {
	return m.executeFunc(ctx, cmd)
}

type mockRejectProjectUC struct {
	executeFunc func(ctx context.Context, cmd projectUsecases.RejectProjectCommand) (*dto.ProjectResponse, error)
}

func (m *mockRejectProjectUC) Execute(ctx context.Context, cmd projectUsecases.RejectProjectCommand) (*dto.ProjectResponse, error) {
	return m.executeFunc(ctx, cmd)
}

type mockSendMessageUC struct {
	executeFunc func(ctx context.Context, cmd projectUsecases.SendMessageCommand) (*dto.MessageResponse, error)
}

func (m *mockSendMessageUC) Execute(ctx context.Context, cmd projectUsecases.SendMessageCommand) (*dto.MessageResponse, error) {
	return m.executeFunc(ctx, cmd)
}

type mockIssueTokenUC struct {
	executeFunc func(ctx context.Context, cmd filesUsecases.IssueDownloadTokenCommand) (*filesUsecases.IssueDownloadTokenResult, error)
}

func (m *mockIssueTokenUC) Execute(ctx context.Context, cmd filesUsecases.IssueDownloadTokenCommand) (*filesUsecases.IssueDownloadTokenResult, error) {
	return m.executeFunc(ctx, cmd)
}

type mockRedeemTokenUC struct {
	executeFunc func(ctx context.Context, cmd filesUsecases.RedeemDownloadTokenCommand) (*filesUsecases.PresignedTransfer, error)
}

func (m *mockRedeemTokenUC) Execute(ctx context.Context, cmd filesUsecases.RedeemDownloadTokenCommand) (*filesUsecases.PresignedTransfer, error) {
	return m.executeFunc(ctx, cmd)
}

type mockRequestUploadURLUC struct {
	executeFunc func(ctx context.Context, cmd filesUsecases.RequestUploadURLCommand) (*filesUsecases.PresignedTransfer, error)
}

func (m *mockRequestUploadURLUC) Execute(ctx context.Context, cmd filesUsecases.RequestUploadURLCommand) (*filesUsecases.PresignedTransfer, error) {
	return m.executeFunc(ctx, cmd)
}

type mockConfirmPaymentUC struct {
	executeFunc func(ctx context.Context, cmd paymentUsecases.ConfirmPaymentCommand) (*paymentUsecases.ConfirmPaymentResult, error)
}

func (m *mockConfirmPaymentUC) Execute(ctx context.Context, cmd paymentUsecases.ConfirmPaymentCommand) (*paymentUsecases.ConfirmPaymentResult, error) {
	return m.executeFunc(ctx, cmd)
}

type mockWebhookUC struct {
	executeFunc func(ctx context.Context, cmd paymentUsecases.HandleWebhookCommand) (paymentUsecases.Outcome, error)
}

func (m *mockWebhookUC) Execute(ctx context.Context, cmd paymentUsecases.HandleWebhookCommand) (paymentUsecases.Outcome, error) {
	return m.executeFunc(ctx, cmd)
}

type mockListAuditUC struct {
	executeFunc func(ctx context.Context, query auditlog.ListEntriesQuery) (*auditlog.ListEntriesResult, error)
}

func (m *mockListAuditUC) Execute(ctx context.Context, query auditlog.ListEntriesQuery) (*auditlog.ListEntriesResult, error) {
	return m.executeFunc(ctx, query)
}
