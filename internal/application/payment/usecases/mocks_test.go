package usecases

import (
	"context"
	"net/url"
	"sync"

	"github.com/orris-inc/f2fpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/f2fpay/internal/domain/payment"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
)

// memoryStore is a PaymentStore with the same uniqueness and version rules as
// the gorm repository. The Func fields override individual operations.
type memoryStore struct {
	mu      sync.Mutex
	nextID  uint
	byID    map[uint]payment.PaymentReconstructParams
	inserts int
	updates int

	InsertFunc func(ctx context.Context, p *payment.Payment) error
	UpdateFunc func(ctx context.Context, p *payment.Payment) error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byID: make(map[uint]payment.PaymentReconstructParams)}
}

func snapshot(p *payment.Payment) payment.PaymentReconstructParams {
	return payment.PaymentReconstructParams{
		ID:             p.ID(),
		OrderID:        p.OrderID(),
		GatewayID:      p.GatewayID(),
		State:          p.State(),
		Amount:         p.Amount(),
		RefundedAmount: p.RefundedAmount(),
		RemoteID:       p.RemoteID(),
		RemoteState:    p.RemoteState(),
		QRPayload:      p.QRPayload(),
		Test:           p.IsTest(),
		RawFields:      p.RawFields(),
		Version:        p.Version(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}
}

func (m *memoryStore) FindByOrderID(_ context.Context, orderID string) (*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, params := range m.byID {
		if params.OrderID == orderID {
			return payment.ReconstructPaymentWithParams(params), nil
		}
	}
	return nil, nil
}

func (m *memoryStore) FindByID(_ context.Context, id uint) (*payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	params, ok := m.byID[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	return payment.ReconstructPaymentWithParams(params), nil
}

func (m *memoryStore) Insert(ctx context.Context, p *payment.Payment) error {
	if m.InsertFunc != nil {
		if err := m.InsertFunc(ctx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, params := range m.byID {
		if params.OrderID == p.OrderID() {
			return payment.ErrDuplicateOrder
		}
	}
	m.nextID++
	p.SetID(m.nextID)
	m.byID[p.ID()] = snapshot(p)
	m.inserts++
	return nil
}

func (m *memoryStore) Update(ctx context.Context, p *payment.Payment) error {
	if m.UpdateFunc != nil {
		if err := m.UpdateFunc(ctx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[p.ID()]
	if !ok || stored.Version != p.Version()-1 {
		return payment.ErrConcurrentModification
	}
	m.byID[p.ID()] = snapshot(p)
	m.updates++
	return nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type mockRemoteClient struct {
	RequestQRChargeFunc    func(ctx context.Context, req paymentgateway.ChargeRequest) (*paymentgateway.RemoteResponse, error)
	CaptureBarcodeFunc     func(ctx context.Context, req paymentgateway.ChargeRequest) (*paymentgateway.RemoteResponse, error)
	RefundFunc             func(ctx context.Context, p *payment.Payment, amount vo.Money) (*paymentgateway.RemoteResponse, error)
	VerifyNotificationFunc func(ctx context.Context, form url.Values) (*paymentgateway.RemoteResponse, error)

	qrCalls      int
	captureCalls int
	refundCalls  int
}

func (m *mockRemoteClient) RequestQRCharge(ctx context.Context, req paymentgateway.ChargeRequest) (*paymentgateway.RemoteResponse, error) {
	m.qrCalls++
	if m.RequestQRChargeFunc != nil {
		return m.RequestQRChargeFunc(ctx, req)
	}
	return &paymentgateway.RemoteResponse{Succeeded: true, Code: paymentgateway.ProviderSuccessCode, QRPayload: "QR"}, nil
}

func (m *mockRemoteClient) CaptureBarcode(ctx context.Context, req paymentgateway.ChargeRequest) (*paymentgateway.RemoteResponse, error) {
	m.captureCalls++
	if m.CaptureBarcodeFunc != nil {
		return m.CaptureBarcodeFunc(ctx, req)
	}
	paid := req.Amount
	return &paymentgateway.RemoteResponse{Succeeded: true, Code: paymentgateway.ProviderSuccessCode, PaidAmount: &paid}, nil
}

func (m *mockRemoteClient) Refund(ctx context.Context, p *payment.Payment, amount vo.Money) (*paymentgateway.RemoteResponse, error) {
	m.refundCalls++
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, p, amount)
	}
	return &paymentgateway.RemoteResponse{Succeeded: true, Code: paymentgateway.ProviderSuccessCode}, nil
}

func (m *mockRemoteClient) VerifyNotification(ctx context.Context, form url.Values) (*paymentgateway.RemoteResponse, error) {
	if m.VerifyNotificationFunc != nil {
		return m.VerifyNotificationFunc(ctx, form)
	}
	return &paymentgateway.RemoteResponse{Succeeded: false}, paymentgateway.ErrSignatureVerificationFailed
}

type mockLocker struct {
	LockFunc func(ctx context.Context, paymentID uint) (func(), error)
	unlocked int
}

func (m *mockLocker) Lock(ctx context.Context, paymentID uint) (func(), error) {
	if m.LockFunc != nil {
		return m.LockFunc(ctx, paymentID)
	}
	return func() { m.unlocked++ }, nil
}

type mockDeduper struct {
	mu        sync.Mutex
	processed map[string]bool

	IsProcessedFunc func(ctx context.Context, notifyID string) (bool, error)
}

func newMockDeduper() *mockDeduper {
	return &mockDeduper{processed: make(map[string]bool)}
}

func (m *mockDeduper) IsProcessed(ctx context.Context, notifyID string) (bool, error) {
	if m.IsProcessedFunc != nil {
		return m.IsProcessedFunc(ctx, notifyID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processed[notifyID], nil
}

func (m *mockDeduper) MarkProcessed(_ context.Context, notifyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed[notifyID] = true
	return nil
}

type mockAlerter struct {
	alerts chan RefundAlert
}

func newMockAlerter() *mockAlerter {
	return &mockAlerter{alerts: make(chan RefundAlert, 1)}
}

func (m *mockAlerter) AlertRefundNotRecorded(_ context.Context, alert RefundAlert) error {
	m.alerts <- alert
	return nil
}

type recordingTx struct {
	runs int
}

func (r *recordingTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.runs++
	return fn(ctx)
}

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) ObserveNotification(kind string, ack AckToken) {
	r.outcomes = append(r.outcomes, kind+":"+ack.String())
}
