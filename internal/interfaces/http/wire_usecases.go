package http

import (
	"time"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	filesUsecases "github.com/shadowiq/shadowiq/internal/application/files/usecases"
	identityUsecases "github.com/shadowiq/shadowiq/internal/application/identity/usecases"
	paymentUsecases "github.com/shadowiq/shadowiq/internal/application/payment/usecases"
	projectUsecases "github.com/shadowiq/shadowiq/internal/application/project/usecases"
	"github.com/shadowiq/shadowiq/internal/infrastructure/email"
	"github.com/shadowiq/shadowiq/internal/infrastructure/metrics"
	"github.com/shadowiq/shadowiq/internal/infrastructure/storage"
	"github.com/shadowiq/shadowiq/internal/infrastructure/token"
	"github.com/shadowiq/shadowiq/internal/shared/markdown"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Identity / Auth
	requestMagicLinkUC *identityUsecases.RequestMagicLinkUseCase
	verifyMagicLinkUC  *identityUsecases.VerifyMagicLinkUseCase
	resolveSessionUC   *identityUsecases.ResolveSessionUseCase
	logoutUC           *identityUsecases.LogoutUseCase
	listIdentitiesUC   *identityUsecases.ListIdentitiesUseCase

	// Project
	submitProjectUC  *projectUsecases.SubmitProjectUseCase
	getProjectUC     *projectUsecases.GetProjectUseCase
	assignAnalystUC  *projectUsecases.AssignAnalystUseCase
	changeStatusUC   *projectUsecases.ChangeStatusUseCase
	rejectProjectUC  *projectUsecases.RejectProjectUseCase
	fileDisputeUC    *projectUsecases.FileDisputeUseCase
	resolveDisputeUC *projectUsecases.ResolveDisputeUseCase
	sendMessageUC    *projectUsecases.SendMessageUseCase
	listMessagesUC   *projectUsecases.ListMessagesUseCase
	dashboardUC      *projectUsecases.DashboardUseCase

	// Files
	requestUploadURLUC    *filesUsecases.RequestUploadURLUseCase
	completeFileUC        *filesUsecases.CompleteFileUploadUseCase
	completeDeliverableUC *filesUsecases.CompleteDeliverableUploadUseCase
	downloadFileUC        *filesUsecases.DownloadFileUseCase
	issueTokenUC          *filesUsecases.IssueDownloadTokenUseCase
	redeemTokenUC         *filesUsecases.RedeemDownloadTokenUseCase

	// Payment
	createPaymentUC  *paymentUsecases.CreatePaymentUseCase
	confirmPaymentUC *paymentUsecases.ConfirmPaymentUseCase
	releasePayoutUC  *paymentUsecases.ReleasePayoutUseCase
	refundPaymentUC  *paymentUsecases.RefundPaymentUseCase
	webhookUC        *paymentUsecases.HandleWebhookUseCase

	// Audit
	listAuditUC *auditlog.ListEntriesUseCase
}

// ============================================================
// Section 3: Use cases
// ============================================================

func (c *Container) initUseCases() {
	c.ucs = &allUseCases{}
	c.initIdentityUseCases()
	c.initProjectUseCases()
	c.initFileUseCases()
	c.initPaymentUseCases()
	c.ucs.listAuditUC = auditlog.NewListEntriesUseCase(c.repos.auditRepo, c.log.Named("audit_list"))
}

func (c *Container) initIdentityUseCases() {
	cfg := c.cfg
	log := c.log
	repos := c.repos
	timeout := cfg.Collaborators.Timeout()
	tokens := token.NewGenerator()

	var mailer identityUsecases.Mailer
	if cfg.Email.Enabled {
		mailer = metrics.InstrumentMailer(email.NewSMTPMailer(email.ConfigFromSettings(cfg.Email)), c.collector)
	} else {
		log.Warnw("email disabled, magic links are only returned when auth.magic_link.display_link is set")
	}

	c.ucs.requestMagicLinkUC = identityUsecases.NewRequestMagicLinkUseCase(
		repos.identityRepo, tokens, mailer, c.recorder, c.tx, c.clock,
		identityUsecases.MagicLinkOptions{
			BaseURL:     cfg.Server.BaseURL,
			TTL:         time.Duration(cfg.Auth.MagicLink.TTLHours) * time.Hour,
			DisplayLink: cfg.Auth.MagicLink.DisplayLink,
			MailTimeout: timeout,
		},
		log.Named("magic_link"),
	)
	c.ucs.verifyMagicLinkUC = identityUsecases.NewVerifyMagicLinkUseCase(
		repos.identityRepo, c.sessions, tokens, c.recorder, c.tx, c.clock, timeout, log.Named("verify"),
	)
	c.ucs.resolveSessionUC = identityUsecases.NewResolveSessionUseCase(
		c.sessions, repos.identityRepo, c.clock, timeout, log.Named("session"),
	)
	c.ucs.logoutUC = identityUsecases.NewLogoutUseCase(c.sessions, c.recorder, timeout, log.Named("logout"))
	c.ucs.listIdentitiesUC = identityUsecases.NewListIdentitiesUseCase(repos.identityRepo, log.Named("identities"))
}

func (c *Container) initProjectUseCases() {
	log := c.log.Named("project")
	repos := c.repos

	c.ucs.submitProjectUC = projectUsecases.NewSubmitProjectUseCase(
		repos.projectRepo, c.recorder, c.tx, c.clock, c.cfg.Project.CodePrefix, log,
	)
	c.ucs.getProjectUC = projectUsecases.NewGetProjectUseCase(repos.identityRepo, repos.fileRepo, repos.deliverableRepo, log)
	c.ucs.assignAnalystUC = projectUsecases.NewAssignAnalystUseCase(
		repos.projectRepo, repos.identityRepo, c.recorder, c.tx, c.clock, log,
	)
	c.ucs.changeStatusUC = projectUsecases.NewChangeStatusUseCase(repos.projectRepo, c.recorder, c.tx, c.clock, log)
	c.ucs.fileDisputeUC = projectUsecases.NewFileDisputeUseCase(repos.projectRepo, c.recorder, c.tx, c.clock, log)
	c.ucs.resolveDisputeUC = projectUsecases.NewResolveDisputeUseCase(repos.projectRepo, c.recorder, c.tx, c.clock, log)
	c.ucs.sendMessageUC = projectUsecases.NewSendMessageUseCase(
		repos.messageRepo, repos.identityRepo, markdown.NewRenderer(), c.recorder, c.tx, c.clock, log,
	)
	c.ucs.listMessagesUC = projectUsecases.NewListMessagesUseCase(repos.messageRepo, repos.identityRepo, log)
	c.ucs.dashboardUC = projectUsecases.NewDashboardUseCase(repos.projectRepo, repos.identityRepo, log)
	// rejectProjectUC needs the refund use case and is built in initPaymentUseCases.
}

func (c *Container) initFileUseCases() {
	cfg := c.cfg
	log := c.log.Named("files")
	repos := c.repos
	tokens := token.NewGenerator()
	scanner := storage.NewNoopScanner(log.Named("scanner"))

	opts := filesUsecases.Options{
		MaxUploadSize:       cfg.Storage.MaxUploadSize,
		UploadURLTTL:        cfg.Storage.UploadURLTTL(),
		DownloadURLTTL:      cfg.Storage.DownloadURLTTL(),
		CollaboratorTimeout: cfg.Collaborators.Timeout(),
	}

	c.ucs.requestUploadURLUC = filesUsecases.NewRequestUploadURLUseCase(c.storage, c.clock, opts, log)
	c.ucs.completeFileUC = filesUsecases.NewCompleteFileUploadUseCase(
		c.storage, scanner, repos.fileRepo, c.recorder, c.tx, c.clock, opts, log,
	)
	c.ucs.completeDeliverableUC = filesUsecases.NewCompleteDeliverableUploadUseCase(
		c.storage, scanner, repos.deliverableRepo, c.recorder, c.tx, c.clock, opts, log,
	)
	c.ucs.downloadFileUC = filesUsecases.NewDownloadFileUseCase(repos.fileRepo, c.storage, c.recorder, opts, log)
	c.ucs.issueTokenUC = filesUsecases.NewIssueDownloadTokenUseCase(
		repos.deliverableRepo, repos.tokenRepo, tokens, c.clock, log,
	)
	c.ucs.redeemTokenUC = filesUsecases.NewRedeemDownloadTokenUseCase(
		repos.tokenRepo, repos.deliverableRepo, c.storage, tokens, c.recorder, c.tx, c.clock, opts, log,
	)
}

func (c *Container) initPaymentUseCases() {
	cfg := c.cfg
	log := c.log.Named("payment")
	repos := c.repos

	opts := paymentUsecases.Options{
		Currency:            cfg.Payment.Currency,
		PlatformFeePercent:  cfg.Payment.PlatformFeePercent,
		CollaboratorTimeout: cfg.Collaborators.Timeout(),
	}

	c.ucs.createPaymentUC = paymentUsecases.NewCreatePaymentUseCase(repos.projectRepo, c.gateway, c.tx, c.clock, opts, log)
	c.ucs.confirmPaymentUC = paymentUsecases.NewConfirmPaymentUseCase(
		repos.projectRepo, c.gateway, c.recorder, c.tx, c.clock, opts, log,
	)
	c.ucs.releasePayoutUC = paymentUsecases.NewReleasePayoutUseCase(
		repos.projectRepo, c.gateway, c.recorder, c.tx, c.clock, opts, log,
	)
	c.ucs.refundPaymentUC = paymentUsecases.NewRefundPaymentUseCase(
		repos.projectRepo, c.gateway, c.recorder, c.tx, c.clock, opts, log,
	)
	c.ucs.webhookUC = paymentUsecases.NewHandleWebhookUseCase(repos.projectRepo, c.gateway, c.recorder, c.tx, c.clock, log)

	c.ucs.rejectProjectUC = projectUsecases.NewRejectProjectUseCase(
		repos.projectRepo, c.ucs.refundPaymentUC, c.recorder, c.tx, c.clock, c.log.Named("project"),
	)
}
