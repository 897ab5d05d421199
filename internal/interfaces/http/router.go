package http

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shadowiq/shadowiq/internal/infrastructure/config"
	"github.com/shadowiq/shadowiq/internal/infrastructure/metrics"
	"github.com/shadowiq/shadowiq/internal/infrastructure/ratelimit"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/middleware"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/routes"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

// Router represents the HTTP router configuration.
type Router struct {
	*Container
}

// NewRouter creates a new HTTP router with all dependencies.
func NewRouter(db *gorm.DB, cfg *config.Config, version string, log logger.Interface) (*Router, error) {
	c, err := NewContainer(db, cfg, version, log)
	if err != nil {
		return nil, err
	}
	return &Router{Container: c}, nil
}

// SetupRoutes installs the global middleware chain and all routes.
func (r *Router) SetupRoutes() {
	cfg := r.cfg

	utils.RegisterJSONFieldNames()

	if len(cfg.Server.TrustedProxies) > 0 {
		if err := r.engine.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
			r.log.Warnw("invalid trusted proxies, ignoring", "error", err)
		}
	} else {
		_ = r.engine.SetTrustedProxies(nil)
	}

	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger(r.log))
	r.engine.Use(middleware.Metrics(r.collector))
	r.engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())
	r.engine.Use(r.principalMiddleware.Resolve())
	r.engine.Use(middleware.CSRF())

	r.engine.GET("/health", r.hdlrs.healthHandler.Health)
	r.engine.GET("/metrics", gin.WrapH(metrics.Handler(r.registry)))

	routes.SetupAuthRoutes(r.engine, &routes.AuthRouteConfig{
		AuthHandler:      r.hdlrs.authHandler,
		AccessMiddleware: r.accessMiddleware,
		RateLimiter:      r.rateLimiter,
		MagicLinkLimit: ratelimit.RateLimitConfig{
			RequestsPerMinute: cfg.Auth.MagicLink.RequestsPerMinute,
			RequestsPerHour:   cfg.Auth.MagicLink.RequestsPerHour,
		},
	})

	routes.SetupProjectRoutes(r.engine, &routes.ProjectRouteConfig{
		DashboardHandler: r.hdlrs.dashboardHandler,
		ProjectHandler:   r.hdlrs.projectHandler,
		FileHandler:      r.hdlrs.fileHandler,
		PaymentHandler:   r.hdlrs.paymentHandler,
		AccessMiddleware: r.accessMiddleware,
	})

	routes.SetupAdminRoutes(r.engine, &routes.AdminRouteConfig{
		AdminHandler:     r.hdlrs.adminHandler,
		AccessMiddleware: r.accessMiddleware,
	})

	routes.SetupPublicRoutes(r.engine, &routes.PublicRouteConfig{
		FileHandler:         r.hdlrs.fileHandler,
		PaymentHandler:      r.hdlrs.paymentHandler,
		LocalStorageHandler: r.hdlrs.localStorageHandler,
	})
}

// GetEngine returns the Gin engine.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Shutdown releases connections held by the router. Call it after the
// HTTP server has stopped accepting requests.
func (r *Router) Shutdown() {
	r.Close()
}
