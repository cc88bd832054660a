package usecases

import (
	"context"
	"net/url"

	"github.com/orris-inc/f2fpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

// AckToken is the literal body returned to the provider. It decides whether
// the provider keeps retrying the notification.
type AckToken string

const (
	AckSuccess AckToken = "success"
	AckFail    AckToken = "fail"
)

func (a AckToken) String() string {
	return string(a)
}

type HandleNotificationUseCase struct {
	reconciler *Reconciler
	client     paymentgateway.RemoteClient
	deduper    NotificationDeduper  // Optional
	observer   NotificationObserver // Optional
	logger     logger.Interface
}

func NewHandleNotificationUseCase(
	reconciler *Reconciler,
	client paymentgateway.RemoteClient,
	logger logger.Interface,
) *HandleNotificationUseCase {
	return &HandleNotificationUseCase{
		reconciler: reconciler,
		client:     client,
		logger:     logger,
	}
}

// SetDeduper sets the notify id deduper (optional dependency injection)
func (uc *HandleNotificationUseCase) SetDeduper(deduper NotificationDeduper) {
	uc.deduper = deduper
}

// SetObserver sets the outcome observer (optional dependency injection)
func (uc *HandleNotificationUseCase) SetObserver(observer NotificationObserver) {
	uc.observer = observer
}

// Execute never returns an error; every failure becomes AckFail.
func (uc *HandleNotificationUseCase) Execute(ctx context.Context, form url.Values) AckToken {
	kind, ack := uc.handle(ctx, form)
	if uc.observer != nil {
		uc.observer.ObserveNotification(kind, ack)
	}
	return ack
}

func (uc *HandleNotificationUseCase) handle(ctx context.Context, form url.Values) (string, AckToken) {
	resp, err := uc.client.VerifyNotification(ctx, form)
	if err != nil {
		uc.logger.Warnw("rejected payment notification",
			"out_trade_no", form.Get("out_trade_no"),
			"notify_id", form.Get("notify_id"),
			"error", err,
		)
		return "unverified", AckFail
	}

	if uc.alreadyProcessed(ctx, resp.NotifyID) {
		uc.logger.Infow("duplicate notification acknowledged", "notify_id", resp.NotifyID, "order_id", resp.OrderID)
		return "duplicate", AckSuccess
	}

	kind := uc.reconciler.ClassifyCallback(resp)
	switch kind {
	case CallbackRefundEcho:
		uc.logger.Infow("refund notification acknowledged",
			"order_id", resp.OrderID,
			"refund_fee", resp.RawFields["refund_fee"],
		)
		uc.markProcessed(ctx, resp.NotifyID)
		return string(kind), AckSuccess

	case CallbackPayment:
		// The recorded amount is checked against total_amount when the order has a record.
		p, err := uc.reconciler.CreateFromRemoteResponse(ctx, resp, resp.OrderID, nil)
		if err != nil {
			uc.logger.Errorw("failed to reconcile payment notification",
				"operation", "notify",
				"order_id", resp.OrderID,
				"remote_id", resp.RemoteTransactionID,
				"notify_id", resp.NotifyID,
				"error", err,
			)
			return string(kind), AckFail
		}
		uc.markProcessed(ctx, resp.NotifyID)
		uc.logger.Infow("payment notification processed", "order_id", p.OrderID(), "payment_id", p.ID())
		return string(kind), AckSuccess

	default:
		uc.logger.Infow("non-payment notification",
			"order_id", resp.OrderID,
			"trade_status", resp.TradeStatus,
		)
		return string(kind), AckFail
	}
}

// alreadyProcessed fails open: processing is idempotent, the deduper only saves work.
func (uc *HandleNotificationUseCase) alreadyProcessed(ctx context.Context, notifyID string) bool {
	if uc.deduper == nil || notifyID == "" {
		return false
	}
	processed, err := uc.deduper.IsProcessed(ctx, notifyID)
	if err != nil {
		uc.logger.Warnw("notification dedupe lookup failed", "notify_id", notifyID, "error", err)
		return false
	}
	return processed
}

func (uc *HandleNotificationUseCase) markProcessed(ctx context.Context, notifyID string) {
	if uc.deduper == nil || notifyID == "" {
		return
	}
	if err := uc.deduper.MarkProcessed(ctx, notifyID); err != nil {
		uc.logger.Warnw("failed to mark notification processed", "notify_id", notifyID, "error", err)
	}
}
