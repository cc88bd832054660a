package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/f2fpay/internal/interfaces/http/handlers"
	"github.com/orris-inc/f2fpay/internal/interfaces/http/middleware"
	"github.com/orris-inc/f2fpay/internal/shared/constants"
)

// PaymentRouteConfig holds dependencies for payment routes.
type PaymentRouteConfig struct {
	PaymentHandler       *handlers.PaymentHandler
	NotifyHandler        *handlers.NotifyHandler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
	ChargeLimiter        *middleware.ChargeRateLimiter
}

// SetupPaymentRoutes configures payment routes.
func SetupPaymentRoutes(engine *gin.Engine, cfg *PaymentRouteConfig) {
	// Called by Alipay; authenticity comes from the RSA2 signature
	engine.POST("/payments/alipay/notify", cfg.NotifyHandler.HandleAlipayNotify)

	payments := engine.Group("/api/payments")
	payments.Use(middleware.SecurityHeaders())
	{
		payments.POST("/qrcode", cfg.ChargeLimiter.Limit(), cfg.PaymentHandler.RequestQRCode)
		payments.POST("/barcode", cfg.ChargeLimiter.Limit(), cfg.PaymentHandler.CaptureBarcode)
		payments.GET("/orders/:order_id", cfg.PaymentHandler.GetByOrder)
	}

	admin := engine.Group("/api/admin/payments")
	admin.Use(middleware.SecurityHeaders(), cfg.AuthMiddleware.RequireOperator())
	{
		admin.POST("/:id/refund",
			cfg.PermissionMiddleware.RequirePermission(constants.ResourcePayments, constants.ActionRefund),
			cfg.PaymentHandler.Refund,
		)
		admin.GET("/orders/:order_id",
			cfg.PermissionMiddleware.RequirePermission(constants.ResourcePayments, constants.ActionRead),
			cfg.PaymentHandler.GetByOrder,
		)
	}
}
