package usecases

import (
	"context"
	"time"

	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
)

// PaymentLocker serialises refunds of one payment across processes.
// Lock returns payment.ErrPaymentLocked when another holder owns the lock.
type PaymentLocker interface {
	Lock(ctx context.Context, paymentID uint) (unlock func(), err error)
}

// NotificationDeduper remembers notify ids that were processed successfully.
type NotificationDeduper interface {
	IsProcessed(ctx context.Context, notifyID string) (bool, error)
	MarkProcessed(ctx context.Context, notifyID string) error
}

// RefundAlert describes a refund the provider accepted but the store did not record.
type RefundAlert struct {
	PaymentID  uint
	OrderID    string
	RemoteID   string
	Amount     vo.Money
	Refunded   vo.Money
	Error      string
	OccurredAt time.Time
}

// ReconciliationAlerter notifies operators about states that need manual reconciliation.
type ReconciliationAlerter interface {
	AlertRefundNotRecorded(ctx context.Context, alert RefundAlert) error
}

// SiteNameProvider supplies the store name used in charge subjects.
type SiteNameProvider interface {
	SiteName() string
}

// TxRunner runs fn in a store transaction.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NotificationObserver receives the outcome of every handled notification.
type NotificationObserver interface {
	ObserveNotification(kind string, ack AckToken)
}

// StaticSiteName is a SiteNameProvider backed by configuration.
type StaticSiteName string

func (s StaticSiteName) SiteName() string {
	return string(s)
}
