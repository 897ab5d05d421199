package http

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shadowiq/shadowiq/internal/application/access"
	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/payment/paymentgateway"
	"github.com/shadowiq/shadowiq/internal/infrastructure/config"
	"github.com/shadowiq/shadowiq/internal/infrastructure/metrics"
	infraPayment "github.com/shadowiq/shadowiq/internal/infrastructure/payment"
	"github.com/shadowiq/shadowiq/internal/infrastructure/permission"
	"github.com/shadowiq/shadowiq/internal/infrastructure/ratelimit"
	"github.com/shadowiq/shadowiq/internal/infrastructure/session"
	"github.com/shadowiq/shadowiq/internal/infrastructure/storage"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/middleware"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// ============================================================
// Section 1: Infrastructure - Redis, metrics, repositories, collaborators
// ============================================================

// initInfrastructure connects Redis when enabled and builds the session
// store, rate limiter, object storage and payment gateway.
func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	c.registry = metrics.NewRegistry()
	c.collector = metrics.NewCollector(c.registry)
	c.collector.SetBuildInfo(c.version)

	if cfg.Redis.Enabled {
		client, err := initRedis(cfg, log)
		if err != nil {
			return err
		}
		c.redis = client
		c.sessions = session.NewRedisStore(client, cfg.Session.TTL())
		c.limiter = ratelimit.NewRedisRateLimiter(client)
	} else {
		log.Warnw("redis disabled, sessions and rate limits are kept in process memory")
		c.sessions = session.NewMemoryStore(cfg.Session.TTL())
		c.limiter = ratelimit.NewMemoryLimiter()
	}

	c.repos = newRepositories(c.db, log)

	if err := c.initStorage(); err != nil {
		return err
	}

	gateway, err := newPaymentGateway(cfg, log)
	if err != nil {
		return err
	}
	c.gateway = metrics.InstrumentGateway(gateway, c.collector)

	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Infow("redis connection established successfully", "addr", cfg.Redis.GetAddr())

	return redisClient, nil
}

// initStorage builds the configured object storage. The local driver is
// also kept unwrapped so its signed URLs can be served by this process.
func (c *Container) initStorage() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := storage.New(ctx, c.cfg.Storage, c.cfg.Security, c.cfg.Server.BaseURL, c.log.Named("storage"))
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}
	if local, ok := store.(*storage.LocalStore); ok {
		c.localStore = local
	}
	c.storage = metrics.InstrumentStorage(store, c.collector)
	return nil
}

// newPaymentGateway returns Stripe when a secret key is configured and the
// in-process mock gateway otherwise.
func newPaymentGateway(cfg *config.Config, log logger.Interface) (paymentgateway.PaymentGateway, error) {
	if cfg.Payment.StripeSecretKey == "" {
		log.Warnw("stripe secret key not configured, using mock payment gateway")
		return infraPayment.NewMockGateway(true, log.Named("payment")), nil
	}
	gateway, err := infraPayment.NewStripeGateway(infraPayment.StripeConfig{
		SecretKey:     cfg.Payment.StripeSecretKey,
		WebhookSecret: cfg.Payment.StripeWebhookSecret,
		Timeout:       cfg.Collaborators.Timeout(),
	}, log.Named("payment"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize stripe gateway: %w", err)
	}
	return gateway, nil
}

// ============================================================
// Section 2: Access - audit recorder, casbin, gate, middlewares
// ============================================================

// initAccess seeds casbin policies on an empty database, loads the
// enforcer and builds the gate behind every guarded route.
func (c *Container) initAccess() error {
	log := c.log

	catalog, err := permission.DefaultCatalog()
	if err != nil {
		return fmt.Errorf("failed to load policy catalog: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := permission.NewPolicySync(c.db, catalog, log.Named("policy")).EnsureSeeded(ctx); err != nil {
		return fmt.Errorf("failed to seed policies: %w", err)
	}

	enforcer, err := permission.NewEnforcer(c.db, catalog, log.Named("enforcer"))
	if err != nil {
		return err
	}

	c.recorder = auditlog.NewRecorder(c.repos.auditRepo, c.clock, log.Named("audit"))
	c.gate = access.NewGate(c.repos.projectRepo, enforcer, c.recorder, c.collector, log.Named("gate"))

	c.accessMiddleware = middleware.NewAccessMiddleware(c.gate)
	c.rateLimiter = middleware.NewRateLimiter(c.limiter, log)

	return nil
}
