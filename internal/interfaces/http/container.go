package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shadowiq/shadowiq/internal/application/access"
	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/files/objectstorage"
	"github.com/shadowiq/shadowiq/internal/application/payment/paymentgateway"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/infrastructure/config"
	"github.com/shadowiq/shadowiq/internal/infrastructure/metrics"
	"github.com/shadowiq/shadowiq/internal/infrastructure/ratelimit"
	"github.com/shadowiq/shadowiq/internal/infrastructure/storage"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/middleware"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	shareddb "github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// Container holds infrastructure, repositories, use cases, handlers and
// middlewares, wired together once at startup.
type Container struct {
	// Core infrastructure
	engine  *gin.Engine
	db      *gorm.DB
	cfg     *config.Config
	log     logger.Interface
	redis   *redis.Client
	version string
	clock   biztime.Clock
	tx      shareddb.Transactor

	// Metrics
	registry  *prometheus.Registry
	collector *metrics.Collector

	// Collaborators
	sessions   identity.SessionStore
	limiter    ratelimit.RateLimiter
	storage    objectstorage.ObjectStorage
	localStore *storage.LocalStore
	gateway    paymentgateway.PaymentGateway
	recorder   auditlog.Recorder
	gate       *access.Gate

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	// Middlewares
	principalMiddleware *middleware.PrincipalMiddleware
	accessMiddleware    *middleware.AccessMiddleware
	rateLimiter         *middleware.RateLimiter
}

// NewContainer wires every component. The order matters: use cases need
// the collaborators built by initInfrastructure and initAccess.
func NewContainer(db *gorm.DB, cfg *config.Config, version string, log logger.Interface) (*Container, error) {
	c := &Container{
		engine:  gin.New(),
		db:      db,
		cfg:     cfg,
		log:     log,
		version: version,
		clock:   biztime.SystemClock(),
		tx:      shareddb.NewTransactionManager(db),
	}

	// Section 1: Infrastructure - Redis, metrics, repositories, collaborators
	if err := c.initInfrastructure(); err != nil {
		c.Close()
		return nil, err
	}

	// Section 2: Access - audit recorder, casbin, gate, middlewares
	if err := c.initAccess(); err != nil {
		c.Close()
		return nil, err
	}

	// Section 3: Use cases
	c.initUseCases()

	// Section 4: Handlers
	c.initHandlers()

	return c, nil
}

// Close releases the Redis connection. The database is owned by the caller.
func (c *Container) Close() {
	if c.redis == nil {
		return
	}
	if err := c.redis.Close(); err != nil {
		c.log.Warnw("failed to close redis client", "error", err)
	}
	c.redis = nil
}
