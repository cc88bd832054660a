// Package alipay implements the face-to-face payment client for the Alipay OpenAPI gateway.
package alipay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/orris-inc/f2fpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/f2fpay/internal/domain/payment"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
	"github.com/orris-inc/f2fpay/internal/shared/biztime"
	"github.com/orris-inc/f2fpay/internal/shared/id"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

const (
	LiveGatewayURL    = "https://openapi.alipay.com/gateway.do"
	SandboxGatewayURL = "https://openapi.alipaydev.com/gateway.do"

	MethodPrecreate = "alipay.trade.precreate"
	MethodPay       = "alipay.trade.pay"
	MethodRefund    = "alipay.trade.refund"

	sceneBarCode = "bar_code"
)

// CallObserver receives the outcome of every gateway call.
type CallObserver interface {
	ObserveRemoteCall(method, outcome string, elapsed time.Duration)
}

// Client is a RemoteClient bound to one set of credentials.
type Client struct {
	http       *resty.Client
	creds      paymentgateway.GatewayCredentials
	signer     *Signer
	gatewayURL string
	observer   CallObserver
	logger     logger.Interface
}

var _ paymentgateway.RemoteClient = (*Client)(nil)

// NewClient creates a client. Calls are bounded by timeout and never retried.
func NewClient(creds paymentgateway.GatewayCredentials, timeout time.Duration, log logger.Interface) (*Client, error) {
	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)

	return newClient(httpClient, creds, log)
}

func newClient(httpClient *resty.Client, creds paymentgateway.GatewayCredentials, log logger.Interface) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gateway credentials: %w", err)
	}
	signer, err := NewSigner(creds.PrivateKey, creds.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway keys: %w", err)
	}

	return &Client{
		http:       httpClient,
		creds:      creds,
		signer:     signer,
		gatewayURL: resolveGatewayURL(creds),
		logger:     log.With("component", "alipay", "gateway_id", creds.GatewayID),
	}, nil
}

func resolveGatewayURL(creds paymentgateway.GatewayCredentials) string {
	if creds.GatewayURL != "" {
		return creds.GatewayURL
	}
	if creds.Mode.IsTest() {
		return SandboxGatewayURL
	}
	return LiveGatewayURL
}

// WithCredentials returns a client for another merchant configuration that
// shares the underlying HTTP transport.
func (c *Client) WithCredentials(creds paymentgateway.GatewayCredentials) (*Client, error) {
	derived, err := newClient(c.http, creds, c.logger)
	if err != nil {
		return nil, err
	}
	derived.observer = c.observer
	return derived, nil
}

// SetObserver sets the call observer (optional dependency injection)
func (c *Client) SetObserver(observer CallObserver) {
	c.observer = observer
}

func (c *Client) Credentials() paymentgateway.GatewayCredentials {
	return c.creds
}

type precreateBiz struct {
	OutTradeNo  string `json:"out_trade_no"`
	TotalAmount string `json:"total_amount"`
	Subject     string `json:"subject"`
}

type payBiz struct {
	OutTradeNo  string `json:"out_trade_no"`
	Scene       string `json:"scene"`
	AuthCode    string `json:"auth_code"`
	TotalAmount string `json:"total_amount"`
	Subject     string `json:"subject"`
}

type refundBiz struct {
	OutTradeNo   string `json:"out_trade_no"`
	TradeNo      string `json:"trade_no,omitempty"`
	RefundAmount string `json:"refund_amount"`
	OutRequestNo string `json:"out_request_no"`
}

// tradeResponse is the union of the response nodes this client reads.
type tradeResponse struct {
	Code        string `json:"code"`
	Msg         string `json:"msg"`
	SubCode     string `json:"sub_code"`
	SubMsg      string `json:"sub_msg"`
	OutTradeNo  string `json:"out_trade_no"`
	TradeNo     string `json:"trade_no"`
	QRCode      string `json:"qr_code"`
	TotalAmount string `json:"total_amount"`
	RefundFee   string `json:"refund_fee"`
}

func (c *Client) RequestQRCharge(ctx context.Context, req paymentgateway.ChargeRequest) (*paymentgateway.RemoteResponse, error) {
	biz := precreateBiz{
		OutTradeNo:  req.OrderID,
		TotalAmount: req.Amount.ProviderString(),
		Subject:     req.Subject,
	}

	resp, err := c.call(ctx, MethodPrecreate, req.OrderID, req.Amount.Currency(), biz, map[string]string{"notify_url": c.creds.NotifyURL})
	if err != nil {
		return nil, err
	}
	if resp.QRPayload == "" {
		return nil, &paymentgateway.RemoteCallError{
			Operation: MethodPrecreate,
			OrderID:   req.OrderID,
			Code:      resp.Code,
			Err:       errors.New("response has no qr_code"),
		}
	}
	return resp, nil
}

func (c *Client) CaptureBarcode(ctx context.Context, req paymentgateway.ChargeRequest) (*paymentgateway.RemoteResponse, error) {
	if strings.TrimSpace(req.AuthCode) == "" {
		return nil, &paymentgateway.RemoteCallError{
			Operation: MethodPay,
			OrderID:   req.OrderID,
			Err:       errors.New("auth code is required"),
		}
	}

	biz := payBiz{
		OutTradeNo:  req.OrderID,
		Scene:       sceneBarCode,
		AuthCode:    req.AuthCode,
		TotalAmount: req.Amount.ProviderString(),
		Subject:     req.Subject,
	}

	resp, err := c.call(ctx, MethodPay, req.OrderID, req.Amount.Currency(), biz, nil)
	if err != nil {
		return nil, err
	}
	if resp.PaidAmount == nil {
		paid := req.Amount
		resp.PaidAmount = &paid
	}
	resp.TradeStatus = TradeStatusSuccess
	return resp, nil
}

func (c *Client) Refund(ctx context.Context, p *payment.Payment, amount vo.Money) (*paymentgateway.RemoteResponse, error) {
	requestNo, err := id.NewRefundRequestNo(p.OrderID())
	if err != nil {
		return nil, fmt.Errorf("failed to derive refund request number: %w", err)
	}

	biz := refundBiz{
		OutTradeNo:   p.OrderID(),
		TradeNo:      p.RemoteID(),
		RefundAmount: amount.ProviderString(),
		OutRequestNo: requestNo,
	}

	return c.call(ctx, MethodRefund, p.OrderID(), amount.Currency(), biz, nil)
}

// call sends one signed request and returns the verified response node.
// Any failure, transport or provider-reported, is a *RemoteCallError.
func (c *Client) call(ctx context.Context, method, orderID, currency string, biz any, extra map[string]string) (*paymentgateway.RemoteResponse, error) {
	start := time.Now()
	resp, err := c.doCall(ctx, method, orderID, currency, biz, extra)

	outcome := "success"
	if err != nil {
		outcome = "failure"
		c.logger.Errorw("alipay call failed",
			"operation", method,
			"order_id", orderID,
			"error", err,
		)
	}
	if c.observer != nil {
		c.observer.ObserveRemoteCall(method, outcome, time.Since(start))
	}
	return resp, err
}

func (c *Client) doCall(ctx context.Context, method, orderID, currency string, biz any, extra map[string]string) (*paymentgateway.RemoteResponse, error) {
	fail := func(err error) error {
		return &paymentgateway.RemoteCallError{Operation: method, OrderID: orderID, Err: err}
	}

	bizContent, err := json.Marshal(biz)
	if err != nil {
		return nil, fail(fmt.Errorf("failed to encode biz_content: %w", err))
	}

	params := map[string]string{
		"app_id":      c.creds.AppID,
		"method":      method,
		"format":      "JSON",
		"charset":     "utf-8",
		"sign_type":   SignTypeRSA2,
		"timestamp":   biztime.FormatInBizTimezone(biztime.NowUTC(), biztime.ProviderLayout),
		"version":     "1.0",
		"biz_content": string(bizContent),
	}
	for k, v := range extra {
		if v != "" {
			params[k] = v
		}
	}

	sign, err := c.signer.SignParams(params)
	if err != nil {
		return nil, fail(err)
	}
	params["sign"] = sign

	if c.creds.Mode.IsTest() {
		c.logger.Debugw("alipay request", "operation", method, "order_id", orderID, "biz_content", string(bizContent))
	}

	httpResp, err := c.http.R().
		SetContext(ctx).
		SetFormData(params).
		Post(c.gatewayURL)
	if err != nil {
		return nil, fail(err)
	}
	if httpResp.StatusCode() != http.StatusOK {
		return nil, fail(fmt.Errorf("unexpected HTTP status %d", httpResp.StatusCode()))
	}

	node, err := c.verifiedNode(method, httpResp.Body())
	if err != nil {
		return nil, fail(err)
	}

	var tr tradeResponse
	if err := json.Unmarshal(node, &tr); err != nil {
		return nil, fail(fmt.Errorf("failed to decode response: %w", err))
	}

	if tr.Code != paymentgateway.ProviderSuccessCode {
		return nil, &paymentgateway.RemoteCallError{
			Operation:  method,
			OrderID:    orderID,
			Code:       tr.Code,
			Message:    tr.Msg,
			SubCode:    tr.SubCode,
			SubMessage: tr.SubMsg,
		}
	}

	resp, err := c.toRemoteResponse(tr, node, currency)
	if err != nil {
		return nil, fail(err)
	}
	return resp, nil
}

// verifiedNode extracts the <method>_response node and checks its signature
// over the exact bytes the provider sent. Error nodes may be unsigned.
func (c *Client) verifiedNode(method string, body []byte) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}

	nodeName := strings.ReplaceAll(method, ".", "_") + "_response"
	node, ok := envelope[nodeName]
	if !ok {
		node, ok = envelope["error_response"]
		if !ok {
			return nil, fmt.Errorf("response has no %s node", nodeName)
		}
	}

	var sign string
	if raw, ok := envelope["sign"]; ok {
		if err := json.Unmarshal(raw, &sign); err != nil {
			return nil, fmt.Errorf("invalid sign field: %w", err)
		}
	}

	if sign == "" {
		var probe struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(node, &probe); err == nil && probe.Code != paymentgateway.ProviderSuccessCode {
			return node, nil
		}
		return nil, fmt.Errorf("%w: response is not signed", paymentgateway.ErrSignatureVerificationFailed)
	}

	if err := c.signer.Verify(node, sign); err != nil {
		return nil, fmt.Errorf("%w: %v", paymentgateway.ErrSignatureVerificationFailed, err)
	}
	return node, nil
}

func (c *Client) toRemoteResponse(tr tradeResponse, node json.RawMessage, currency string) (*paymentgateway.RemoteResponse, error) {
	resp := &paymentgateway.RemoteResponse{
		Succeeded:           true,
		Code:                tr.Code,
		OrderID:             tr.OutTradeNo,
		RemoteTransactionID: tr.TradeNo,
		QRPayload:           tr.QRCode,
		AppID:               c.creds.AppID,
		RawFields:           flattenNode(node),
	}

	if tr.TotalAmount != "" {
		paid, err := vo.ParseMoney(tr.TotalAmount, currency)
		if err != nil {
			return nil, fmt.Errorf("invalid total_amount in response: %w", err)
		}
		resp.PaidAmount = &paid
	}
	return resp, nil
}

// flattenNode turns a response node into string fields; nested values keep their JSON text.
func flattenNode(node json.RawMessage) map[string]string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(node, &fields); err != nil {
		return map[string]string{}
	}

	out := make(map[string]string, len(fields))
	for k, v := range fields {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		out[k] = string(v)
	}
	return out
}
