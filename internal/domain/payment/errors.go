package payment

import "errors"

var (
	// ErrInvalidState is returned when a refund is attempted outside capture_completed
	// or capture_partially_refunded.
	ErrInvalidState = errors.New("payment is not in a refundable state")
	// ErrExcessiveRefund is returned when the requested refund exceeds the remaining balance.
	ErrExcessiveRefund        = errors.New("refund amount exceeds remaining balance")
	ErrInvalidRefundAmount    = errors.New("refund amount must be positive")
	ErrAmountMismatch         = errors.New("paid amount does not match expected amount")
	ErrRemoteIDMismatch       = errors.New("remote transaction id does not match recorded payment")
	ErrDuplicateOrder         = errors.New("payment already exists for order")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrConcurrentModification = errors.New("payment was modified concurrently")
	ErrPaymentLocked          = errors.New("payment is locked by another operation")
)
