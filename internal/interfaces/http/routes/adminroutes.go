package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/application/access"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/handlers"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/middleware"
)

// AdminRouteConfig holds dependencies for admin-only routes.
type AdminRouteConfig struct {
	AdminHandler     *handlers.AdminHandler
	AccessMiddleware *middleware.AccessMiddleware
}

// SetupAdminRoutes configures admin-only routes.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	admin := engine.Group("/admin")
	{
		admin.GET("/audit", cfg.AccessMiddleware.RequireRole(access.OpAuditRead), cfg.AdminHandler.ListAuditEntries)
		admin.GET("/identities", cfg.AccessMiddleware.RequireRole(access.OpIdentityList), cfg.AdminHandler.ListIdentities)
	}
}
