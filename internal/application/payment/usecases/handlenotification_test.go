package usecases

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/f2fpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/f2fpay/internal/domain/payment"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

// verifiedAs makes the mock client accept any form and return resp.
func verifiedAs(resp *paymentgateway.RemoteResponse) func(context.Context, url.Values) (*paymentgateway.RemoteResponse, error) {
	return func(context.Context, url.Values) (*paymentgateway.RemoteResponse, error) {
		copied := *resp
		return &copied, nil
	}
}

func newNotificationUseCase(f *reconcilerFixture) *HandleNotificationUseCase {
	return NewHandleNotificationUseCase(f.reconciler, f.client, logger.NewNopLogger())
}

func TestHandleNotification_DuplicateDelivery(t *testing.T) {
	f := newReconcilerFixture()
	resp := paidResponse("ORD-1", "TXN1", "100.00")
	resp.NotifyID = "N-1"
	f.client.VerifyNotificationFunc = verifiedAs(resp)
	uc := newNotificationUseCase(f)

	assert.Equal(t, AckSuccess, uc.Execute(context.Background(), url.Values{}))
	assert.Equal(t, AckSuccess, uc.Execute(context.Background(), url.Values{}))

	assert.Equal(t, 1, f.store.count())
	assert.Equal(t, 1, f.store.inserts)
	assert.Equal(t, 0, f.store.updates)
}

func TestHandleNotification_ConfirmsQRPayment(t *testing.T) {
	f := newReconcilerFixture()
	created := f.seedCaptured(t)
	f.client.VerifyNotificationFunc = verifiedAs(paidResponse("ORD-1", "TXN1", "100.00"))
	uc := newNotificationUseCase(f)

	require.Equal(t, AckSuccess, uc.Execute(context.Background(), url.Values{}))

	stored, err := f.store.FindByID(context.Background(), created.ID())
	require.NoError(t, err)
	assert.Equal(t, "TRADE_SUCCESS", stored.RemoteState())
	assert.Equal(t, "QR123", stored.QRPayload())
	assert.Equal(t, 1, f.store.count())
}

func TestHandleNotification_RefundEchoNeverMutates(t *testing.T) {
	tests := []struct {
		name string
		seed bool
		resp *paymentgateway.RemoteResponse
	}{
		{
			name: "echo for unknown order",
			resp: &paymentgateway.RemoteResponse{Succeeded: true, OrderID: "ORD-2", TradeStatus: "TRADE_SUCCESS",
				RawFields: map[string]string{"refund_fee": "10.00"}},
		},
		{
			name: "echo for recorded order with different amount",
			seed: true,
			resp: &paymentgateway.RemoteResponse{Succeeded: true, OrderID: "ORD-1", RemoteTransactionID: "TXN-OTHER",
				PaidAmount: moneyPtr(cny("1.00")), RawFields: map[string]string{"refund_fee": "40.00"}},
		},
		{
			name: "echo for closed trade",
			resp: &paymentgateway.RemoteResponse{Succeeded: false, OrderID: "ORD-3", TradeStatus: "TRADE_CLOSED",
				RawFields: map[string]string{"refund_fee": "5.00"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReconcilerFixture()
			if tt.seed {
				f.seedCaptured(t)
			}
			inserts := f.store.inserts
			f.client.VerifyNotificationFunc = verifiedAs(tt.resp)

			ack := newNotificationUseCase(f).Execute(context.Background(), url.Values{})

			assert.Equal(t, AckSuccess, ack)
			assert.Equal(t, inserts, f.store.inserts)
			assert.Equal(t, 0, f.store.updates)
		})
	}
}

func TestHandleNotification_SignatureGate(t *testing.T) {
	f := newReconcilerFixture()
	f.client.VerifyNotificationFunc = func(context.Context, url.Values) (*paymentgateway.RemoteResponse, error) {
		// A forged payload that would otherwise look paid.
		return paidResponse("ORD-1", "TXN1", "100.00"), paymentgateway.ErrSignatureVerificationFailed
	}
	observer := &recordingObserver{}
	uc := newNotificationUseCase(f)
	uc.SetObserver(observer)

	ack := uc.Execute(context.Background(), url.Values{"out_trade_no": {"ORD-1"}})

	assert.Equal(t, AckFail, ack)
	assert.Equal(t, 0, f.store.count())
	assert.Equal(t, []string{"unverified:fail"}, observer.outcomes)
}

func TestHandleNotification_FailureEvent(t *testing.T) {
	f := newReconcilerFixture()
	f.client.VerifyNotificationFunc = verifiedAs(&paymentgateway.RemoteResponse{
		Succeeded: false, OrderID: "ORD-1", TradeStatus: "TRADE_CLOSED",
	})

	assert.Equal(t, AckFail, newNotificationUseCase(f).Execute(context.Background(), url.Values{}))
	assert.Equal(t, 0, f.store.count())
}

func TestHandleNotification_ReconcileErrorFails(t *testing.T) {
	f := newReconcilerFixture()
	f.seedCaptured(t)
	f.client.VerifyNotificationFunc = verifiedAs(paidResponse("ORD-1", "TXN1", "99.00"))

	assert.Equal(t, AckFail, newNotificationUseCase(f).Execute(context.Background(), url.Values{}))
	assert.Equal(t, 1, f.store.count())
	assert.Equal(t, 0, f.store.updates)
}

func TestHandleNotification_Deduper(t *testing.T) {
	f := newReconcilerFixture()
	resp := paidResponse("ORD-1", "TXN1", "100.00")
	resp.NotifyID = "N-1"
	f.client.VerifyNotificationFunc = verifiedAs(resp)

	deduper := newMockDeduper()
	observer := &recordingObserver{}
	uc := newNotificationUseCase(f)
	uc.SetDeduper(deduper)
	uc.SetObserver(observer)

	assert.Equal(t, AckSuccess, uc.Execute(context.Background(), url.Values{}))
	assert.Equal(t, AckSuccess, uc.Execute(context.Background(), url.Values{}))
	assert.True(t, deduper.processed["N-1"])
	assert.Equal(t, []string{"payment:success", "duplicate:success"}, observer.outcomes)
}

func TestHandleNotification_DeduperOnlyMarksSuccess(t *testing.T) {
	f := newReconcilerFixture()
	resp := paidResponse("ORD-1", "TXN1", "100.00")
	resp.NotifyID = "N-2"
	f.client.VerifyNotificationFunc = verifiedAs(resp)
	f.store.InsertFunc = func(context.Context, *payment.Payment) error { return errors.New("disk full") }

	deduper := newMockDeduper()
	uc := newNotificationUseCase(f)
	uc.SetDeduper(deduper)

	assert.Equal(t, AckFail, uc.Execute(context.Background(), url.Values{}))
	assert.False(t, deduper.processed["N-2"])

	// The provider retries once the store recovers.
	f.store.InsertFunc = nil
	assert.Equal(t, AckSuccess, uc.Execute(context.Background(), url.Values{}))
	assert.True(t, deduper.processed["N-2"])
}

func TestHandleNotification_DeduperErrorFailsOpen(t *testing.T) {
	f := newReconcilerFixture()
	f.client.VerifyNotificationFunc = verifiedAs(paidResponse("ORD-1", "TXN1", "100.00"))
	deduper := newMockDeduper()
	deduper.IsProcessedFunc = func(context.Context, string) (bool, error) {
		return false, errors.New("redis: connection refused")
	}
	uc := newNotificationUseCase(f)
	uc.SetDeduper(deduper)

	assert.Equal(t, AckSuccess, uc.Execute(context.Background(), url.Values{}))
	assert.Equal(t, 1, f.store.count())
}

func TestAckToken_Literals(t *testing.T) {
	assert.Equal(t, "success", AckSuccess.String())
	assert.Equal(t, "fail", AckFail.String())
}
