package http

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/f2fpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/f2fpay/internal/infrastructure/auth"
	"github.com/orris-inc/f2fpay/internal/infrastructure/config"
	"github.com/orris-inc/f2fpay/internal/infrastructure/metrics"
	"github.com/orris-inc/f2fpay/internal/infrastructure/payment/alipay"
	"github.com/orris-inc/f2fpay/internal/infrastructure/permission"
	"github.com/orris-inc/f2fpay/internal/infrastructure/ratelimit"
	"github.com/orris-inc/f2fpay/internal/infrastructure/repository"
	"github.com/orris-inc/f2fpay/internal/interfaces/http/middleware"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

// ============================================================
// Section 1: Infrastructure - Redis, Metrics, Auth, Gateway client
// ============================================================

func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	if c.redis == nil && cfg.Redis.Enabled {
		client, err := initRedis(cfg, log)
		if err != nil {
			return err
		}
		c.redis = client
		c.ownsRedis = true
	}

	c.metrics = metrics.New()
	c.paymentRepo = repository.NewPaymentRepository(c.db, log.Named("payment_repository"))

	if c.client == nil {
		client, err := newAlipayClient(cfg, log)
		if err != nil {
			return err
		}
		c.client = client
	}
	if observable, ok := c.client.(interface{ SetObserver(alipay.CallObserver) }); ok {
		observable.SetObserver(c.metrics)
	}

	enforcer, err := initEnforcer(c, log)
	if err != nil {
		return err
	}
	c.enforcer = enforcer

	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, log.Named("auth"))
	c.permissionMiddleware = middleware.NewPermissionMiddleware(c.enforcer, log.Named("permission"))

	var limiter ratelimit.RateLimiter
	limitCfg := ratelimit.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimit.ChargesPerMinute,
		RequestsPerHour:   cfg.RateLimit.ChargesPerHour,
	}
	if c.redis != nil {
		limiter = ratelimit.NewRedisRateLimiter(c.redis)
	} else {
		// Without a shared store the limit cannot hold across instances
		limitCfg = ratelimit.RateLimitConfig{}
	}
	c.chargeLimiter = middleware.NewChargeRateLimiter(limiter, limitCfg, log.Named("ratelimit"))

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
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Infow("Redis connection established successfully", "addr", cfg.Redis.GetAddr())

	return redisClient, nil
}

func newAlipayClient(cfg *config.Config, log logger.Interface) (*alipay.Client, error) {
	creds, err := paymentgateway.NewCredentialsFromConfig(cfg.Alipay)
	if err != nil {
		return nil, fmt.Errorf("invalid alipay configuration: %w", err)
	}
	client, err := alipay.NewClient(creds, cfg.Alipay.Timeout(), log)
	if err != nil {
		return nil, err
	}
	log.Infow("alipay client configured", "gateway_id", creds.GatewayID, "mode", creds.Mode)
	return client, nil
}

// initEnforcer loads casbin policies and applies the role seed.
func initEnforcer(c *Container, log logger.Interface) (*permission.Enforcer, error) {
	enforcer, err := permission.NewEnforcer(c.db, log.Named("casbin"))
	if err != nil {
		return nil, err
	}

	seed := permission.DefaultPolicySeed()
	if path := c.cfg.Auth.PolicyFile; path != "" {
		seed, err = permission.LoadPolicySeed(path)
		if err != nil {
			return nil, err
		}
	}
	if err := seed.Apply(enforcer, log); err != nil {
		return nil, fmt.Errorf("failed to apply policy seed: %w", err)
	}

	return enforcer, nil
}
