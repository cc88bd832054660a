package http

import (
	"github.com/orris-inc/f2fpay/internal/application/payment/usecases"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
	"github.com/orris-inc/f2fpay/internal/infrastructure/cache"
	"github.com/orris-inc/f2fpay/internal/infrastructure/email"
	"github.com/orris-inc/f2fpay/internal/shared/db"
	"github.com/orris-inc/f2fpay/internal/shared/services/markdown"
)

// paymentUseCases holds the use case instances behind the payment handlers.
type paymentUseCases struct {
	requestQRCode  *usecases.RequestQRCodeUseCase
	captureBarcode *usecases.CaptureBarcodeUseCase
	refund         *usecases.RefundPaymentUseCase
	getPayment     *usecases.GetPaymentUseCase
	notification   *usecases.HandleNotificationUseCase
}

// ============================================================
// Section 2: Payments - Locks, Reconciler, UseCases
// ============================================================

func (c *Container) initPayments() {
	cfg := c.cfg
	log := c.log

	mode := vo.Mode(cfg.Alipay.Mode)
	site := usecases.StaticSiteName(cfg.Site.Name)

	var locker usecases.PaymentLocker
	var deduper usecases.NotificationDeduper
	if c.redis != nil {
		locker = cache.NewRedisPaymentLocker(c.redis, cfg.Alipay.RefundLockTTL(), log.Named("payment_lock"))
		deduper = cache.NewRedisNotificationDeduper(c.redis, cfg.Alipay.NotifyDedupTTL())
	} else {
		log.Warnw("redis disabled, payment locks and notification dedupe are process-local")
		locker = cache.NewMemoryPaymentLocker()
		deduper = cache.NewMemoryNotificationDeduper(cfg.Alipay.NotifyDedupTTL())
	}

	reconciler := usecases.NewReconciler(c.paymentRepo, c.client, locker, cfg.Alipay.GatewayID, mode, log.Named("reconciler"))
	reconciler.SetTxRunner(db.NewTransactionManager(c.db))

	if cfg.Email.AlertsEnabled() {
		mail := email.NewSMTPEmailService(email.SMTPConfig{
			Host:        cfg.Email.SMTPHost,
			Port:        cfg.Email.SMTPPort,
			Username:    cfg.Email.SMTPUser,
			Password:    cfg.Email.SMTPPassword,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
		})
		reconciler.SetAlerter(email.NewReconciliationAlerter(
			mail,
			markdown.NewMarkdownService(),
			cfg.Email.AlertRecipients,
			cfg.Site.Name,
			log.Named("alerts"),
		))
	}

	notification := usecases.NewHandleNotificationUseCase(reconciler, c.client, log.Named("notify"))
	notification.SetDeduper(deduper)
	notification.SetObserver(c.metrics)

	c.ucs = &paymentUseCases{
		requestQRCode:  usecases.NewRequestQRCodeUseCase(reconciler, c.client, site, mode, log.Named("qrcode")),
		captureBarcode: usecases.NewCaptureBarcodeUseCase(reconciler, c.client, site, mode, log.Named("barcode")),
		refund:         usecases.NewRefundPaymentUseCase(c.paymentRepo, reconciler, log.Named("refund")),
		getPayment:     usecases.NewGetPaymentUseCase(c.paymentRepo),
		notification:   notification,
	}
}
