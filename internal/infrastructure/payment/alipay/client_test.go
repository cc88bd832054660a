package alipay

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/f2fpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/f2fpay/internal/domain/payment"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

const testAppID = "2021000000000001"

var (
	keysOnce     sync.Once
	merchantKey  *rsa.PrivateKey
	providerKey  *rsa.PrivateKey
	keysGenError error
)

func testKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keysOnce.Do(func() {
		merchantKey, keysGenError = rsa.GenerateKey(rand.Reader, 2048)
		if keysGenError != nil {
			return
		}
		providerKey, keysGenError = rsa.GenerateKey(rand.Reader, 2048)
	})
	require.NoError(t, keysGenError)
	return merchantKey, providerKey
}

func pkcs8Base64(t *testing.T, key *rsa.PrivateKey) string {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(der)
}

func publicPEM(t *testing.T, key *rsa.PublicKey) string {
	der, err := x509.MarshalPKIXPublicKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func rsaSign(t *testing.T, key *rsa.PrivateKey, content string) string {
	digest := sha256.Sum256([]byte(content))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(sig)
}

// fakeGateway answers every method with the node produced by respond,
// signed with the provider key. Requests with a bad signature get a 40002.
type fakeGateway struct {
	t        *testing.T
	provider *rsa.PrivateKey
	merchant *rsa.PublicKey
	respond  func(method string, biz map[string]string) map[string]any
	unsigned bool

	mu       sync.Mutex
	requests []url.Values
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	require.NoError(g.t, r.ParseForm())
	g.mu.Lock()
	g.requests = append(g.requests, r.PostForm)
	g.mu.Unlock()

	params := map[string]string{}
	for k := range r.PostForm {
		params[k] = r.PostForm.Get(k)
	}
	method := params["method"]
	nodeName := fmt.Sprintf("%s_response", replaceDots(method))

	sig, _ := base64.StdEncoding.DecodeString(params["sign"])
	digest := sha256.Sum256([]byte(signContent(params, "sign")))
	var node map[string]any
	if err := rsa.VerifyPKCS1v15(g.merchant, crypto.SHA256, digest[:], sig); err != nil {
		node = map[string]any{"code": "40002", "msg": "Invalid Arguments", "sub_code": "isv.invalid-signature", "sub_msg": "bad sign"}
	} else {
		var biz map[string]string
		require.NoError(g.t, json.Unmarshal([]byte(params["biz_content"]), &biz))
		node = g.respond(method, biz)
	}

	nodeJSON, err := json.Marshal(node)
	require.NoError(g.t, err)

	body := fmt.Sprintf(`{"%s":%s}`, nodeName, nodeJSON)
	if !g.unsigned {
		body = fmt.Sprintf(`{"%s":%s,"sign":"%s"}`, nodeName, nodeJSON, rsaSign(g.t, g.provider, string(nodeJSON)))
	}
	w.Header().Set("Content-Type", "application/json;charset=utf-8")
	_, _ = w.Write([]byte(body))
}

func (g *fakeGateway) lastRequest() url.Values {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

func replaceDots(s string) string {
	out := []byte(s)
	for i := range out {
		if out[i] == '.' {
			out[i] = '_'
		}
	}
	return string(out)
}

func newTestClient(t *testing.T, respond func(method string, biz map[string]string) map[string]any) (*Client, *fakeGateway) {
	t.Helper()
	merchant, provider := testKeys(t)

	gw := &fakeGateway{t: t, provider: provider, merchant: &merchant.PublicKey, respond: respond}
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)

	creds := paymentgateway.GatewayCredentials{
		GatewayID:  "alipay_f2f",
		AppID:      testAppID,
		PrivateKey: pkcs8Base64(t, merchant),
		PublicKey:  publicPEM(t, &provider.PublicKey),
		Mode:       vo.ModeTest,
		NotifyURL:  "https://shop.example.com/payments/alipay/notify",
		GatewayURL: srv.URL,
	}
	client, err := NewClient(creds, 5*time.Second, logger.NewNopLogger())
	require.NoError(t, err)
	return client, gw
}

func cny(s string) vo.Money {
	return vo.MustParseMoney(s, "CNY")
}

type recordingObserver struct {
	calls []string
}

func (o *recordingObserver) ObserveRemoteCall(method, outcome string, _ time.Duration) {
	o.calls = append(o.calls, method+":"+outcome)
}

// =============================================================================
// Precreate
// =============================================================================

func TestRequestQRCharge_Success(t *testing.T) {
	client, gw := newTestClient(t, func(method string, biz map[string]string) map[string]any {
		return map[string]any{"code": "10000", "msg": "Success", "out_trade_no": biz["out_trade_no"], "qr_code": "QR123"}
	})
	obs := &recordingObserver{}
	client.SetObserver(obs)

	resp, err := client.RequestQRCharge(context.Background(), paymentgateway.ChargeRequest{
		OrderID: "ORD-1",
		Amount:  cny("100"),
		Subject: "F2F Pay Order: ORD-1",
	})
	require.NoError(t, err)
	assert.True(t, resp.Succeeded)
	assert.Equal(t, "QR123", resp.QRPayload)
	assert.Equal(t, "ORD-1", resp.OrderID)
	assert.Equal(t, []string{MethodPrecreate + ":success"}, obs.calls)

	req := gw.lastRequest()
	assert.Equal(t, MethodPrecreate, req.Get("method"))
	assert.Equal(t, testAppID, req.Get("app_id"))
	assert.Equal(t, "RSA2", req.Get("sign_type"))
	assert.Equal(t, "https://shop.example.com/payments/alipay/notify", req.Get("notify_url"))
	assert.JSONEq(t, `{"out_trade_no":"ORD-1","total_amount":"100.00","subject":"F2F Pay Order: ORD-1"}`, req.Get("biz_content"))
	_, err = time.Parse("2006-01-02 15:04:05", req.Get("timestamp"))
	assert.NoError(t, err)
}

func TestRequestQRCharge_ProviderFailure(t *testing.T) {
	client, _ := newTestClient(t, func(string, map[string]string) map[string]any {
		return map[string]any{"code": "40004", "msg": "Business Failed", "sub_code": "ACQ.TRADE_HAS_SUCCESS", "sub_msg": "Trade has been paid"}
	})

	resp, err := client.RequestQRCharge(context.Background(), paymentgateway.ChargeRequest{OrderID: "ORD-2", Amount: cny("1.00")})
	assert.Nil(t, resp)
	require.ErrorIs(t, err, paymentgateway.ErrRemoteCallFailed)

	rce, ok := paymentgateway.AsRemoteCallError(err)
	require.True(t, ok)
	assert.Equal(t, "40004", rce.Code)
	assert.Equal(t, "ACQ.TRADE_HAS_SUCCESS", rce.SubCode)
	assert.Equal(t, "Trade has been paid (ACQ.TRADE_HAS_SUCCESS)", rce.UserMessage())
}

func TestRequestQRCharge_TamperedResponse(t *testing.T) {
	client, gw := newTestClient(t, func(string, map[string]string) map[string]any {
		return map[string]any{"code": "10000", "msg": "Success", "qr_code": "QR123"}
	})
	gw.unsigned = true

	_, err := client.RequestQRCharge(context.Background(), paymentgateway.ChargeRequest{OrderID: "ORD-3", Amount: cny("1.00")})
	assert.ErrorIs(t, err, paymentgateway.ErrRemoteCallFailed)
	assert.ErrorIs(t, err, paymentgateway.ErrSignatureVerificationFailed)
}

func TestRequestQRCharge_TransportError(t *testing.T) {
	client, _ := newTestClient(t, nil)
	client.gatewayURL = "http://127.0.0.1:1/gateway.do"

	_, err := client.RequestQRCharge(context.Background(), paymentgateway.ChargeRequest{OrderID: "ORD-4", Amount: cny("1.00")})
	assert.ErrorIs(t, err, paymentgateway.ErrRemoteCallFailed)
}

// =============================================================================
// Barcode pay
// =============================================================================

func TestCaptureBarcode(t *testing.T) {
	tests := []struct {
		name     string
		node     map[string]any
		wantErr  bool
		wantPaid string
	}{
		{
			name:     "paid",
			node:     map[string]any{"code": "10000", "msg": "Success", "trade_no": "TXN9", "out_trade_no": "ORD-9", "total_amount": "88.80"},
			wantPaid: "88.80",
		},
		{
			name:    "waiting for buyer is a failure",
			node:    map[string]any{"code": "10003", "msg": "order success pay inprocess"},
			wantErr: true,
		},
		{
			name:    "declined",
			node:    map[string]any{"code": "40004", "msg": "Business Failed", "sub_code": "ACQ.PAYMENT_AUTH_CODE_INVALID", "sub_msg": "auth code invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, gw := newTestClient(t, func(string, map[string]string) map[string]any { return tt.node })

			resp, err := client.CaptureBarcode(context.Background(), paymentgateway.ChargeRequest{
				OrderID:  "ORD-9",
				Amount:   cny("88.80"),
				AuthCode: "28763443825664394",
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, paymentgateway.ErrRemoteCallFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "TXN9", resp.RemoteTransactionID)
			require.NotNil(t, resp.PaidAmount)
			assert.True(t, resp.PaidAmount.Equals(cny(tt.wantPaid)))

			var biz map[string]string
			require.NoError(t, json.Unmarshal([]byte(gw.lastRequest().Get("biz_content")), &biz))
			assert.Equal(t, "bar_code", biz["scene"])
			assert.Equal(t, "28763443825664394", biz["auth_code"])
		})
	}
}

func TestCaptureBarcode_RequiresAuthCode(t *testing.T) {
	client, gw := newTestClient(t, nil)

	_, err := client.CaptureBarcode(context.Background(), paymentgateway.ChargeRequest{OrderID: "ORD-9", Amount: cny("1.00")})
	assert.ErrorIs(t, err, paymentgateway.ErrRemoteCallFailed)
	assert.Empty(t, gw.requests)
}

// =============================================================================
// Refund
// =============================================================================

func TestRefund_FreshRequestNumberPerCall(t *testing.T) {
	client, gw := newTestClient(t, func(_ string, biz map[string]string) map[string]any {
		return map[string]any{"code": "10000", "msg": "Success", "trade_no": "TXN1", "out_trade_no": biz["out_trade_no"], "refund_fee": biz["refund_amount"], "fund_change": "Y"}
	})

	p := payment.ReconstructPaymentWithParams(payment.PaymentReconstructParams{
		ID: 1, OrderID: "ORD-1", GatewayID: "alipay_f2f", State: vo.PaymentStateCaptureCompleted,
		Amount: cny("100.00"), RefundedAmount: cny("0"), RemoteID: "TXN1",
	})

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		resp, err := client.Refund(context.Background(), p, cny("40"))
		require.NoError(t, err)
		assert.Equal(t, "40.00", resp.RawFields["refund_fee"])

		var biz map[string]string
		require.NoError(t, json.Unmarshal([]byte(gw.lastRequest().Get("biz_content")), &biz))
		assert.Equal(t, "40.00", biz["refund_amount"])
		assert.Equal(t, "TXN1", biz["trade_no"])
		assert.Regexp(t, `^ORD-1_[0-9A-Za-z]{12}$`, biz["out_request_no"])
		seen[biz["out_request_no"]] = true
	}
	assert.Len(t, seen, 2)
}

// =============================================================================
// Credentials
// =============================================================================

func TestWithCredentials_RejectsWrongKeys(t *testing.T) {
	client, _ := newTestClient(t, nil)

	creds := client.Credentials()
	creds.PrivateKey = "bm90IGEga2V5"
	_, err := client.WithCredentials(creds)
	assert.Error(t, err)

	creds = client.Credentials()
	creds.AppID = "2021000000000002"
	other, err := client.WithCredentials(creds)
	require.NoError(t, err)
	assert.Equal(t, "2021000000000002", other.Credentials().AppID)
	assert.Equal(t, client.gatewayURL, other.gatewayURL)
}

func TestResolveGatewayURL(t *testing.T) {
	assert.Equal(t, SandboxGatewayURL, resolveGatewayURL(paymentgateway.GatewayCredentials{Mode: vo.ModeTest}))
	assert.Equal(t, LiveGatewayURL, resolveGatewayURL(paymentgateway.GatewayCredentials{Mode: vo.ModeLive}))
	assert.Equal(t, "http://local/gw", resolveGatewayURL(paymentgateway.GatewayCredentials{Mode: vo.ModeLive, GatewayURL: "http://local/gw"}))
}
