package http

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/orris-inc/f2fpay/internal/interfaces/http/middleware"
	"github.com/orris-inc/f2fpay/internal/interfaces/http/routes"

	_ "github.com/orris-inc/f2fpay/docs"
)

// setupRoutes configures middleware and all HTTP routes.
func (c *Container) setupRoutes() {
	r := c.engine

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(c.log.Named("recovery")))
	r.Use(middleware.Logger(c.log.Named("http")))
	if c.cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(c.metrics))
	}

	r.GET("/health", c.hdlrs.healthHandler.Health)

	if c.cfg.Metrics.Enabled {
		path := c.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(c.metrics.Handler()))
	}

	if c.cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	routes.SetupPaymentRoutes(r, &routes.PaymentRouteConfig{
		PaymentHandler:       c.hdlrs.paymentHandler,
		NotifyHandler:        c.hdlrs.notifyHandler,
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
		ChargeLimiter:        c.chargeLimiter,
	})
}
