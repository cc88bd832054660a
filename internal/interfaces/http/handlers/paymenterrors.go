package handlers

import (
	stderrors "errors"

	"github.com/orris-inc/f2fpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/f2fpay/internal/domain/payment"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
	"github.com/orris-inc/f2fpay/internal/shared/errors"
)

// toAppError maps payment failures onto API errors. Provider messages are
// sanitized before they reach the client.
func toAppError(err error) *errors.AppError {
	if appErr := errors.GetAppError(err); appErr != nil {
		return appErr
	}

	if remoteErr, ok := paymentgateway.AsRemoteCallError(err); ok {
		return errors.NewUpstreamError(remoteErr.UserMessage(), remoteErr.Code)
	}

	switch {
	case stderrors.Is(err, payment.ErrPaymentNotFound):
		return errors.NewNotFoundError("payment not found")
	case stderrors.Is(err, payment.ErrInvalidRefundAmount),
		stderrors.Is(err, payment.ErrExcessiveRefund),
		stderrors.Is(err, payment.ErrAmountMismatch),
		stderrors.Is(err, vo.ErrNegativeAmount),
		stderrors.Is(err, vo.ErrInvalidCurrency),
		stderrors.Is(err, vo.ErrCurrencyMismatch),
		stderrors.Is(err, vo.ErrAmountPrecision),
		stderrors.Is(err, vo.ErrUnsupportedCurrency):
		return errors.NewValidationError(err.Error())
	case stderrors.Is(err, payment.ErrInvalidState):
		return errors.NewConflictError("payment cannot be refunded in its current state")
	case stderrors.Is(err, payment.ErrDuplicateOrder):
		return errors.NewConflictError("order already has a payment")
	case stderrors.Is(err, payment.ErrRemoteIDMismatch):
		return errors.NewConflictError("provider trade does not match the recorded payment")
	case stderrors.Is(err, payment.ErrPaymentLocked),
		stderrors.Is(err, payment.ErrConcurrentModification):
		return errors.NewConflictError("payment is being updated, please retry")
	default:
		return errors.NewInternalError("Internal server error occurred")
	}
}
