package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/f2fpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/f2fpay/internal/infrastructure/auth"
	"github.com/orris-inc/f2fpay/internal/infrastructure/config"
	"github.com/orris-inc/f2fpay/internal/infrastructure/metrics"
	"github.com/orris-inc/f2fpay/internal/infrastructure/permission"
	"github.com/orris-inc/f2fpay/internal/infrastructure/repository"
	"github.com/orris-inc/f2fpay/internal/interfaces/http/middleware"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

// Container holds infrastructure components, use cases, handlers and
// middlewares, and wires them together. Shutdown releases what it opened.
type Container struct {
	// Core infrastructure
	engine   *gin.Engine
	db       *gorm.DB
	cfg      *config.Config
	log      logger.Interface
	redis    *redis.Client
	metrics  *metrics.Metrics
	client   paymentgateway.RemoteClient
	enforcer *permission.Enforcer
	jwtSvc   *auth.JWTService

	ownsRedis bool

	paymentRepo *repository.PaymentRepository

	// Use cases
	ucs *paymentUseCases

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	chargeLimiter        *middleware.ChargeRateLimiter
}

// Option overrides a dependency the container would otherwise build from config.
type Option func(*Container)

// WithRemoteClient replaces the Alipay client.
func WithRemoteClient(client paymentgateway.RemoteClient) Option {
	return func(c *Container) {
		c.client = client
	}
}

// WithRedis supplies an existing Redis client. The container does not close it.
func WithRedis(client *redis.Client) Option {
	return func(c *Container) {
		c.redis = client
	}
}

// NewContainer creates a Container with all dependencies wired together.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface, opts ...Option) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}
	for _, opt := range opts {
		opt(c)
	}

	// Section 1: Infrastructure - Redis, Metrics, Auth, Gateway client
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Payments - Locks, Reconciler, UseCases
	c.initPayments()

	// Section 3: Handlers
	c.initHandlers()

	c.setupRoutes()

	return c, nil
}

// Engine returns the configured gin engine.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// Shutdown closes connections opened by the container.
func (c *Container) Shutdown() {
	if c.redis != nil && c.ownsRedis {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}
