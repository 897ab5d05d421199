package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/infrastructure/storage"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/handlers"
)

// PublicRouteConfig holds dependencies for routes authenticated by a
// bearer credential in the request rather than the session cookie.
type PublicRouteConfig struct {
	FileHandler         *handlers.FileHandler
	PaymentHandler      *handlers.PaymentHandler
	LocalStorageHandler *handlers.LocalStorageHandler // nil unless the local storage driver is used
}

// SetupPublicRoutes configures download-token redemption, the payment
// webhook and, for the local driver, signed object transfers.
func SetupPublicRoutes(engine *gin.Engine, cfg *PublicRouteConfig) {
	engine.GET("/downloads/:token", cfg.FileHandler.RedeemDownloadToken)
	engine.POST("/webhooks/stripe", cfg.PaymentHandler.HandleWebhook)

	if cfg.LocalStorageHandler != nil {
		engine.PUT(storage.LocalRoutePrefix+"*key", cfg.LocalStorageHandler.Put)
		engine.GET(storage.LocalRoutePrefix+"*key", cfg.LocalStorageHandler.Get)
	}
}
