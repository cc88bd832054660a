package valueobjects

type PaymentState string

const (
	PaymentStatePending                  PaymentState = "pending"
	PaymentStateCaptureCompleted         PaymentState = "capture_completed"
	PaymentStateCapturePartiallyRefunded PaymentState = "capture_partially_refunded"
	PaymentStateCaptureRefunded          PaymentState = "capture_refunded"
	PaymentStateFailed                   PaymentState = "failed"
)

func (s PaymentState) IsValid() bool {
	switch s {
	case PaymentStatePending, PaymentStateCaptureCompleted, PaymentStateCapturePartiallyRefunded,
		PaymentStateCaptureRefunded, PaymentStateFailed:
		return true
	default:
		return false
	}
}

// IsRefundable reports whether a refund may be applied in this state.
func (s PaymentState) IsRefundable() bool {
	return s == PaymentStateCaptureCompleted || s == PaymentStateCapturePartiallyRefunded
}

// IsFinal reports whether no further transition is possible.
func (s PaymentState) IsFinal() bool {
	return s == PaymentStateCaptureRefunded || s == PaymentStateFailed
}

func (s PaymentState) String() string {
	return string(s)
}
