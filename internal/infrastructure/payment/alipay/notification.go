package alipay

import (
	"context"
	"fmt"
	"net/url"

	"github.com/orris-inc/f2fpay/internal/application/payment/paymentgateway"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
)

// Trade statuses reported in notifications.
const (
	TradeStatusWaitBuyerPay = "WAIT_BUYER_PAY"
	TradeStatusClosed       = "TRADE_CLOSED"
	TradeStatusSuccess      = "TRADE_SUCCESS"
	TradeStatusFinished     = "TRADE_FINISHED"
)

// VerifyNotification checks an asynchronous notification posted by the gateway.
// sign and sign_type are excluded from the signed content.
func (c *Client) VerifyNotification(_ context.Context, form url.Values) (*paymentgateway.RemoteResponse, error) {
	rejected := &paymentgateway.RemoteResponse{Succeeded: false}

	params := make(map[string]string, len(form))
	for k := range form {
		params[k] = form.Get(k)
	}

	if c.creds.Mode.IsTest() {
		c.logger.Infow("alipay notification received", "payload", params)
	}

	sign := params["sign"]
	if sign == "" {
		return rejected, fmt.Errorf("%w: missing sign", paymentgateway.ErrSignatureVerificationFailed)
	}
	if st := params["sign_type"]; st != "" && st != SignTypeRSA2 {
		return rejected, fmt.Errorf("%w: unsupported sign_type %q", paymentgateway.ErrSignatureVerificationFailed, st)
	}

	content := signContent(params, "sign", "sign_type")
	if err := c.signer.Verify([]byte(content), sign); err != nil {
		return rejected, fmt.Errorf("%w: %v", paymentgateway.ErrSignatureVerificationFailed, err)
	}

	if params["app_id"] != c.creds.AppID {
		return rejected, fmt.Errorf("%w: app_id %q does not match configured application",
			paymentgateway.ErrSignatureVerificationFailed, params["app_id"])
	}

	delete(params, "sign")
	delete(params, "sign_type")

	status := params["trade_status"]
	resp := &paymentgateway.RemoteResponse{
		Succeeded:           status == TradeStatusSuccess || status == TradeStatusFinished,
		OrderID:             params["out_trade_no"],
		RemoteTransactionID: params["trade_no"],
		TradeStatus:         status,
		NotifyID:            params["notify_id"],
		AppID:               params["app_id"],
		RawFields:           params,
	}

	if total := params["total_amount"]; total != "" {
		paid, err := vo.ParseMoney(total, params["trans_currency"])
		if err != nil {
			return rejected, fmt.Errorf("%w: invalid total_amount: %v", paymentgateway.ErrSignatureVerificationFailed, err)
		}
		resp.PaidAmount = &paid
	}

	return resp, nil
}
