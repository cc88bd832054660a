package paymentgateway

import (
	"context"
	"net/url"

	"github.com/orris-inc/f2fpay/internal/domain/payment"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
)

// ProviderSuccessCode is the code the provider returns for an accepted call.
// Call sites read RemoteResponse.Succeeded instead of comparing it.
const ProviderSuccessCode = "10000"

// RemoteClient talks to the face-to-face payment provider.
type RemoteClient interface {
	// RequestQRCharge creates a precreate order and returns its QR payload.
	RequestQRCharge(ctx context.Context, req ChargeRequest) (*RemoteResponse, error)
	// CaptureBarcode charges the buyer's payment code synchronously.
	CaptureBarcode(ctx context.Context, req ChargeRequest) (*RemoteResponse, error)
	// Refund returns money for a captured payment. Each call uses a new
	// request number, so a retried refund is a distinct refund.
	Refund(ctx context.Context, p *payment.Payment, amount vo.Money) (*RemoteResponse, error)
	// VerifyNotification checks the signature of an asynchronous notification.
	// It fails closed: on any problem the response has Succeeded=false and the
	// error wraps ErrSignatureVerificationFailed.
	VerifyNotification(ctx context.Context, form url.Values) (*RemoteResponse, error)
}

// ChargeRequest contains the data needed to create a charge.
type ChargeRequest struct {
	OrderID string
	Amount  vo.Money
	Subject string
	Mode    vo.Mode
	// AuthCode is the buyer's payment code, barcode flow only.
	AuthCode string
}

// RemoteResponse is a provider answer, from a synchronous call or a notification.
type RemoteResponse struct {
	Succeeded           bool
	Code                string
	SubCode             string
	SubMessage          string
	OrderID             string
	RemoteTransactionID string
	TradeStatus         string
	PaidAmount          *vo.Money
	QRPayload           string
	NotifyID            string
	AppID               string
	RawFields           map[string]string
}

// IsRefundEcho reports whether a notification describes a refund rather than a charge.
func (r *RemoteResponse) IsRefundEcho() bool {
	_, ok := r.RawFields["refund_fee"]
	return ok
}
