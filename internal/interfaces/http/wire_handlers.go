package http

import (
	"context"

	"github.com/shadowiq/shadowiq/internal/interfaces/http/handlers"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/middleware"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	healthHandler       *handlers.HealthHandler
	authHandler         *handlers.AuthHandler
	dashboardHandler    *handlers.DashboardHandler
	projectHandler      *handlers.ProjectHandler
	fileHandler         *handlers.FileHandler
	paymentHandler      *handlers.PaymentHandler
	adminHandler        *handlers.AdminHandler
	localStorageHandler *handlers.LocalStorageHandler // nil unless the local storage driver is used
}

// ============================================================
// Section 4: Handlers
// ============================================================

func (c *Container) initHandlers() {
	log := c.log
	ucs := c.ucs

	c.principalMiddleware = middleware.NewPrincipalMiddleware(ucs.resolveSessionUC, c.cfg.Session.CookieName)

	c.hdlrs = &allHandlers{
		healthHandler: handlers.NewHealthHandler(c.version, c.healthChecks(), log.Named("health")),
		authHandler: handlers.NewAuthHandler(
			ucs.requestMagicLinkUC, ucs.verifyMagicLinkUC, ucs.logoutUC, c.cfg.Session, log.Named("auth_handler"),
		),
		dashboardHandler: handlers.NewDashboardHandler(ucs.dashboardUC, log.Named("dashboard_handler")),
		projectHandler: handlers.NewProjectHandler(handlers.ProjectUseCases{
			Submit:         ucs.submitProjectUC,
			Get:            ucs.getProjectUC,
			AssignAnalyst:  ucs.assignAnalystUC,
			ChangeStatus:   ucs.changeStatusUC,
			Reject:         ucs.rejectProjectUC,
			FileDispute:    ucs.fileDisputeUC,
			ResolveDispute: ucs.resolveDisputeUC,
			SendMessage:    ucs.sendMessageUC,
			ListMessages:   ucs.listMessagesUC,
		}, log.Named("project_handler")),
		fileHandler: handlers.NewFileHandler(handlers.FileUseCases{
			RequestUploadURL:    ucs.requestUploadURLUC,
			CompleteFile:        ucs.completeFileUC,
			CompleteDeliverable: ucs.completeDeliverableUC,
			DownloadFile:        ucs.downloadFileUC,
			IssueToken:          ucs.issueTokenUC,
			RedeemToken:         ucs.redeemTokenUC,
		}, log.Named("file_handler")),
		paymentHandler: handlers.NewPaymentHandler(handlers.PaymentUseCases{
			Create:  ucs.createPaymentUC,
			Confirm: ucs.confirmPaymentUC,
			Release: ucs.releasePayoutUC,
			Refund:  ucs.refundPaymentUC,
			Webhook: ucs.webhookUC,
		}, log.Named("payment_handler")),
		adminHandler: handlers.NewAdminHandler(ucs.listAuditUC, ucs.listIdentitiesUC, log.Named("admin_handler")),
	}

	if c.localStore != nil {
		c.hdlrs.localStorageHandler = handlers.NewLocalStorageHandler(c.localStore, log.Named("local_storage"))
	}
}

// healthChecks pings the database and, when enabled, Redis.
func (c *Container) healthChecks() []handlers.HealthCheck {
	checks := []handlers.HealthCheck{{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}

	if c.redis != nil {
		client := c.redis
		checks = append(checks, handlers.HealthCheck{
			Name: "redis",
			Check: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
		})
	}
	return checks
}
