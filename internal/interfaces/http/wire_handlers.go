package http

import (
	"context"

	"github.com/orris-inc/f2fpay/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	paymentHandler *handlers.PaymentHandler
	notifyHandler  *handlers.NotifyHandler
	healthHandler  *handlers.HealthHandler
}

// ============================================================
// Section 3: Handlers
// ============================================================

func (c *Container) initHandlers() {
	log := c.log

	checks := map[string]handlers.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		}
	}

	c.hdlrs = &allHandlers{
		paymentHandler: handlers.NewPaymentHandler(
			c.ucs.requestQRCode,
			c.ucs.captureBarcode,
			c.ucs.refund,
			c.ucs.getPayment,
			log.Named("payment_handler"),
		),
		notifyHandler: handlers.NewNotifyHandler(c.ucs.notification, log.Named("notify_handler")),
		healthHandler: handlers.NewHealthHandler(checks),
	}
}
