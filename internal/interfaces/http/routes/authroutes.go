package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/infrastructure/ratelimit"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/handlers"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/middleware"
)

// AuthRouteConfig holds dependencies for authentication routes.
type AuthRouteConfig struct {
	AuthHandler      *handlers.AuthHandler
	AccessMiddleware *middleware.AccessMiddleware
	RateLimiter      *middleware.RateLimiter
	MagicLinkLimit   ratelimit.RateLimitConfig
}

// SetupAuthRoutes configures magic-link sign-in and session routes.
func SetupAuthRoutes(engine *gin.Engine, cfg *AuthRouteConfig) {
	auth := engine.Group("/auth")
	{
		auth.POST("/magic-link", cfg.RateLimiter.Limit("magic_link", cfg.MagicLinkLimit), cfg.AuthHandler.RequestMagicLink)
		auth.GET("/verify", cfg.AuthHandler.Verify)
		auth.POST("/logout", cfg.AuthHandler.Logout)
		auth.GET("/me", cfg.AccessMiddleware.RequireAuth(), cfg.AuthHandler.Me)
	}
}
