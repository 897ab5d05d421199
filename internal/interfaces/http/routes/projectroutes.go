package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/application/access"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/handlers"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/middleware"
)

// ProjectRouteConfig holds dependencies for project, message, file and
// payment routes nested under /projects/:ref.
type ProjectRouteConfig struct {
	DashboardHandler *handlers.DashboardHandler
	ProjectHandler   *handlers.ProjectHandler
	FileHandler      *handlers.FileHandler
	PaymentHandler   *handlers.PaymentHandler
	AccessMiddleware *middleware.AccessMiddleware
}

// SetupProjectRoutes configures project routes. Every route under
// /projects/:ref is guarded before the handler runs.
func SetupProjectRoutes(engine *gin.Engine, cfg *ProjectRouteConfig) {
	am := cfg.AccessMiddleware

	engine.GET("/dashboard", am.RequireRole(access.OpDashboardView), cfg.DashboardHandler.GetDashboard)

	projects := engine.Group("/projects")
	{
		projects.POST("", am.RequireRole(access.OpProjectSubmit), cfg.ProjectHandler.Submit)

		project := projects.Group("/:" + middleware.ProjectRefParam)
		{
			project.GET("", am.RequireProject(access.RequireProjectAccess, "project.view"), cfg.ProjectHandler.Get)
			project.POST("/assign", am.RequireRoleOnProject(access.OpProjectAssign), cfg.ProjectHandler.AssignAnalyst)
			project.PATCH("/status", am.RequireProject(access.RequireAnalystProjectAccess, "project.status"), cfg.ProjectHandler.ChangeStatus)
			project.POST("/reject", am.RequireRoleOnProject(access.OpProjectReject), cfg.ProjectHandler.Reject)
			project.POST("/dispute", am.RequireProject(access.RequireOwnerOrAdmin, "dispute.file"), cfg.ProjectHandler.FileDispute)
			project.POST("/dispute/resolve", am.RequireRoleOnProject(access.OpDisputeResolve), cfg.ProjectHandler.ResolveDispute)

			project.GET("/messages", am.RequireProject(access.RequireProjectAccess, "message.list"), cfg.ProjectHandler.ListMessages)
			project.POST("/messages", am.RequireProject(access.RequireProjectAccess, "message.send"), cfg.ProjectHandler.SendMessage)
		}

		setupProjectFileRoutes(project, cfg)
		setupProjectPaymentRoutes(project, cfg)
	}
}

// setupProjectFileRoutes configures client file and analyst deliverable routes.
func setupProjectFileRoutes(project *gin.RouterGroup, cfg *ProjectRouteConfig) {
	am := cfg.AccessMiddleware

	files := project.Group("/files")
	{
		files.POST("/upload-url", am.RequireProject(access.RequireOwnerOrAdmin, "file.upload"), cfg.FileHandler.RequestFileUploadURL)
		files.POST("", am.RequireProject(access.RequireOwnerOrAdmin, "file.upload"), cfg.FileHandler.CompleteFileUpload)
		files.GET("/:fileID/download", am.RequireProject(access.RequireProjectAccess, "file.download"), cfg.FileHandler.DownloadFile)
	}

	deliverables := project.Group("/deliverables")
	{
		deliverables.POST("/upload-url", am.RequireProject(access.RequireAnalystProjectAccess, "deliverable.upload"), cfg.FileHandler.RequestDeliverableUploadURL)
		deliverables.POST("", am.RequireProject(access.RequireAnalystProjectAccess, "deliverable.upload"), cfg.FileHandler.CompleteDeliverableUpload)
		deliverables.POST("/:deliverableID/tokens", am.RequireProject(access.RequireOwnerOrAdmin, "deliverable.token"), cfg.FileHandler.IssueDownloadToken)
	}
}

// setupProjectPaymentRoutes configures escrow payment routes.
func setupProjectPaymentRoutes(project *gin.RouterGroup, cfg *ProjectRouteConfig) {
	am := cfg.AccessMiddleware

	payment := project.Group("/payment")
	{
		payment.POST("", am.RequireProject(access.RequireOwner, "payment.create"), cfg.PaymentHandler.CreatePayment)
		payment.POST("/confirm", am.RequireProject(access.RequireOwner, "payment.confirm"), cfg.PaymentHandler.ConfirmPayment)
		payment.POST("/release", am.RequireRoleOnProject(access.OpPaymentRelease), cfg.PaymentHandler.ReleasePayout)
		payment.POST("/refund", am.RequireRoleOnProject(access.OpPaymentRefund), cfg.PaymentHandler.Refund)
	}
}
