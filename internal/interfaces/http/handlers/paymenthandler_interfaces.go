package handlers

import (
	"context"
	"net/url"

	"github.com/orris-inc/f2fpay/internal/application/payment/usecases"
	"github.com/orris-inc/f2fpay/internal/domain/payment"
)

// Use case interfaces for PaymentHandler and NotifyHandler - enable unit testing with mocks.

type qrCodeRequester interface {
	Execute(ctx context.Context, cmd usecases.RequestQRCodeCommand) (*usecases.RequestQRCodeResult, error)
}

type barcodeCapturer interface {
	Execute(ctx context.Context, cmd usecases.CaptureBarcodeCommand) (*payment.Payment, error)
}

type paymentRefunder interface {
	Execute(ctx context.Context, cmd usecases.RefundPaymentCommand) (*payment.Payment, error)
}

type paymentFinder interface {
	ByOrderID(ctx context.Context, orderID string) (*payment.Payment, error)
}

type notificationProcessor interface {
	Execute(ctx context.Context, form url.Values) usecases.AckToken
}
