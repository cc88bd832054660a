package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/f2fpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/f2fpay/internal/domain/payment"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
	"github.com/orris-inc/f2fpay/internal/infrastructure/auth"
	"github.com/orris-inc/f2fpay/internal/infrastructure/config"
	"github.com/orris-inc/f2fpay/internal/infrastructure/database"
	"github.com/orris-inc/f2fpay/internal/infrastructure/persistence/migrations"
	sharedConfig "github.com/orris-inc/f2fpay/internal/shared/config"
	"github.com/orris-inc/f2fpay/internal/shared/constants"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

// fakeGateway accepts every charge and refund and verifies notifications
// by the presence of sign=ok.
type fakeGateway struct {
	mu      sync.Mutex
	refunds []string
}

func (f *fakeGateway) RequestQRCharge(ctx context.Context, req paymentgateway.ChargeRequest) (*paymentgateway.RemoteResponse, error) {
	return &paymentgateway.RemoteResponse{
		Succeeded: true,
		Code:      paymentgateway.ProviderSuccessCode,
		OrderID:   req.OrderID,
		QRPayload: "https://qr.alipay.com/" + req.OrderID,
	}, nil
}

func (f *fakeGateway) CaptureBarcode(ctx context.Context, req paymentgateway.ChargeRequest) (*paymentgateway.RemoteResponse, error) {
	paid := req.Amount
	return &paymentgateway.RemoteResponse{
		Succeeded:           true,
		Code:                paymentgateway.ProviderSuccessCode,
		OrderID:             req.OrderID,
		RemoteTransactionID: "T-" + req.OrderID,
		TradeStatus:         "TRADE_SUCCESS",
		PaidAmount:          &paid,
	}, nil
}

func (f *fakeGateway) Refund(ctx context.Context, p *payment.Payment, amount vo.Money) (*paymentgateway.RemoteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunds = append(f.refunds, amount.ProviderString())
	return &paymentgateway.RemoteResponse{Succeeded: true, Code: paymentgateway.ProviderSuccessCode, OrderID: p.OrderID()}, nil
}

func (f *fakeGateway) VerifyNotification(ctx context.Context, form url.Values) (*paymentgateway.RemoteResponse, error) {
	if form.Get("sign") != "ok" {
		return &paymentgateway.RemoteResponse{}, fmt.Errorf("%w: bad sign", paymentgateway.ErrSignatureVerificationFailed)
	}
	paid := vo.MustParseMoney(form.Get("total_amount"), "CNY")
	return &paymentgateway.RemoteResponse{
		Succeeded:           true,
		OrderID:             form.Get("out_trade_no"),
		RemoteTransactionID: form.Get("trade_no"),
		TradeStatus:         form.Get("trade_status"),
		PaidAmount:          &paid,
		NotifyID:            form.Get("notify_id"),
		RawFields:           map[string]string{"trade_no": form.Get("trade_no")},
	}, nil
}

const testJWTSecret = "container-test-secret-0123456789"

func newTestContainer(t *testing.T) (*Container, *fakeGateway) {
	t.Helper()

	db, err := database.Open(&sharedConfig.DatabaseConfig{Driver: database.DriverSQLite, Database: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, migrations.MigratePaymentTables(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		Server: sharedConfig.ServerConfig{Mode: gin.TestMode},
		Auth: sharedConfig.AuthConfig{
			JWT: sharedConfig.JWTConfig{Secret: testJWTSecret, AccessExpMinutes: 60},
		},
		Alipay:    sharedConfig.AlipayConfig{GatewayID: "alipay_f2f", Mode: "test"},
		Site:      sharedConfig.SiteConfig{Name: "Test Shop"},
		RateLimit: sharedConfig.RateLimitConfig{ChargesPerMinute: 100},
		Metrics:   sharedConfig.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	gateway := &fakeGateway{}
	c, err := NewContainer(db, cfg, logger.NewNopLogger(), WithRemoteClient(gateway), WithRedis(rdb))
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)

	return c, gateway
}

func doJSON(t *testing.T, h nethttp.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func operatorToken(t *testing.T, role string) string {
	t.Helper()
	token, _, err := auth.NewJWTService(testJWTSecret, 60).Generate("op-1", role)
	require.NoError(t, err)
	return token
}

func TestContainer_QRCodeRefundFlow(t *testing.T) {
	c, gateway := newTestContainer(t)
	h := c.Engine()

	w := doJSON(t, h, nethttp.MethodPost, "/api/payments/qrcode", map[string]string{"order_id": "ORD-1", "amount": "100.00"}, "")
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	var qr struct {
		PaymentID uint   `json:"payment_id"`
		QRCode    string `json:"qr_code"`
		Reused    bool   `json:"reused"`
	}
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, &qr))
	assert.Equal(t, "https://qr.alipay.com/ORD-1", qr.QRCode)
	assert.False(t, qr.Reused)

	w = doJSON(t, h, nethttp.MethodPost, "/api/payments/qrcode", map[string]string{"order_id": "ORD-1", "amount": "100.00"}, "")
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reused":true`)

	w = doJSON(t, h, nethttp.MethodPost, "/api/payments/qrcode", map[string]string{"order_id": "ORD-1", "amount": "99.00"}, "")
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	refundPath := fmt.Sprintf("/api/admin/payments/%d/refund", qr.PaymentID)

	w = doJSON(t, h, nethttp.MethodPost, refundPath, map[string]string{"amount": "40.00"}, "")
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)

	w = doJSON(t, h, nethttp.MethodPost, refundPath, map[string]string{"amount": "40.00"}, operatorToken(t, "cashier"))
	assert.Equal(t, nethttp.StatusForbidden, w.Code)

	admin := operatorToken(t, constants.RoleAdmin)
	w = doJSON(t, h, nethttp.MethodPost, refundPath, map[string]string{"amount": "40.00"}, admin)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"state":"capture_partially_refunded"`)
	assert.Contains(t, w.Body.String(), `"balance":"60.00"`)

	w = doJSON(t, h, nethttp.MethodPost, refundPath, map[string]string{"amount": "60.01"}, admin)
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	w = doJSON(t, h, nethttp.MethodPost, refundPath, nil, admin)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"state":"capture_refunded"`)

	w = doJSON(t, h, nethttp.MethodPost, refundPath, nil, admin)
	assert.Equal(t, nethttp.StatusConflict, w.Code)

	assert.Equal(t, []string{"40.00", "60.00"}, gateway.refunds)

	w = doJSON(t, h, nethttp.MethodGet, "/api/payments/orders/ORD-1", nil, "")
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"refunded_amount":"100.00"`)
}

func TestContainer_BarcodeAndNotification(t *testing.T) {
	c, _ := newTestContainer(t)
	h := c.Engine()

	w := doJSON(t, h, nethttp.MethodPost, "/api/payments/barcode", map[string]string{
		"order_id":  "ORD-2",
		"auth_code": "287951669321423710",
		"amount":    "12.50",
	}, "")
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"remote_id":"T-ORD-2"`)
	assert.Contains(t, w.Body.String(), `"test":true`)

	notify := func(form url.Values) string {
		req := httptest.NewRequest(nethttp.MethodPost, "/payments/alipay/notify", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, nethttp.StatusOK, w.Code)
		return w.Body.String()
	}

	form := url.Values{}
	form.Set("notify_id", "n-1")
	form.Set("out_trade_no", "ORD-2")
	form.Set("trade_no", "T-ORD-2")
	form.Set("trade_status", "TRADE_SUCCESS")
	form.Set("total_amount", "12.50")

	form.Set("sign", "forged")
	assert.Equal(t, "fail", notify(form))

	form.Set("sign", "ok")
	assert.Equal(t, "success", notify(form))
	assert.Equal(t, "success", notify(form))

	mismatch := url.Values{}
	for k, v := range form {
		mismatch[k] = v
	}
	mismatch.Set("notify_id", "n-2")
	mismatch.Set("trade_no", "T-OTHER")
	assert.Equal(t, "fail", notify(mismatch))
}

func TestContainer_HealthAndMetrics(t *testing.T) {
	c, _ := newTestContainer(t)
	h := c.Engine()

	w := doJSON(t, h, nethttp.MethodGet, "/health", nil, "")
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"ok"`)

	w = doJSON(t, h, nethttp.MethodGet, "/metrics", nil, "")
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `f2fpay_http_requests_total{handler="/health"`)
}
