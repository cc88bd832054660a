package payment

import (
	"fmt"
	"maps"
	"strings"
	"time"

	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
	"github.com/orris-inc/f2fpay/internal/shared/biztime"
)

// Payment is the local record of one successful charge for an order.
// remoteState holds the provider's trade status; qrPayload caches the code
// issued by precreate so repeated QR requests can be answered locally.
type Payment struct {
	id             uint
	orderID        string
	gatewayID      string
	state          vo.PaymentState
	amount         vo.Money
	refundedAmount vo.Money
	remoteID       string
	remoteState    string
	qrPayload      string
	test           bool
	rawFields      map[string]string

	version   int
	createdAt time.Time
	updatedAt time.Time
}

// CaptureParams describes a charge the provider has accepted.
type CaptureParams struct {
	OrderID     string
	GatewayID   string
	Amount      vo.Money
	RemoteID    string
	RemoteState string
	QRPayload   string
	Test        bool
	RawFields   map[string]string
}

// NewCapturedPayment creates a record in capture_completed.
func NewCapturedPayment(params CaptureParams) (*Payment, error) {
	if strings.TrimSpace(params.OrderID) == "" {
		return nil, fmt.Errorf("order ID is required")
	}
	if params.GatewayID == "" {
		return nil, fmt.Errorf("gateway ID is required")
	}
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	now := biztime.NowUTC()
	raw := make(map[string]string, len(params.RawFields))
	maps.Copy(raw, params.RawFields)

	return &Payment{
		orderID:        params.OrderID,
		gatewayID:      params.GatewayID,
		state:          vo.PaymentStateCaptureCompleted,
		amount:         params.Amount,
		refundedAmount: vo.ZeroMoney(params.Amount.Currency()),
		remoteID:       params.RemoteID,
		remoteState:    params.RemoteState,
		qrPayload:      params.QRPayload,
		test:           params.Test,
		rawFields:      raw,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Balance is the amount still available for refund.
func (p *Payment) Balance() vo.Money {
	balance, err := p.amount.Sub(p.refundedAmount)
	if err != nil {
		return vo.ZeroMoney(p.amount.Currency())
	}
	return balance
}

// CheckRefund validates a refund without changing the record.
func (p *Payment) CheckRefund(amount vo.Money) error {
	if !p.state.IsRefundable() {
		return fmt.Errorf("%w: %s", ErrInvalidState, p.state)
	}
	if !amount.IsPositive() {
		return ErrInvalidRefundAmount
	}
	cmp, err := amount.Cmp(p.Balance())
	if err != nil {
		return err
	}
	if cmp > 0 {
		return fmt.Errorf("%w: requested %s, balance %s", ErrExcessiveRefund, amount, p.Balance())
	}
	return nil
}

// ApplyRefund records a refund the provider has confirmed and moves the state
// to capture_partially_refunded or capture_refunded.
func (p *Payment) ApplyRefund(amount vo.Money) error {
	if err := p.CheckRefund(amount); err != nil {
		return err
	}

	refunded, err := p.refundedAmount.Add(amount)
	if err != nil {
		return err
	}

	p.refundedAmount = refunded
	if refunded.Equals(p.amount) {
		p.state = vo.PaymentStateCaptureRefunded
	} else {
		p.state = vo.PaymentStateCapturePartiallyRefunded
	}
	p.updatedAt = biztime.NowUTC()
	p.version++

	return nil
}

// ValidatePaidAmount checks an amount reported by the provider against the record.
func (p *Payment) ValidatePaidAmount(paid vo.Money) error {
	if !p.amount.Equals(paid) {
		return fmt.Errorf("%w: expected %s, got %s", ErrAmountMismatch, p.amount, paid)
	}
	return nil
}

// ConfirmRemote merges a later provider report for the same order into the
// record. A missing remote id is filled in; a different one is rejected.
// It reports whether anything changed.
func (p *Payment) ConfirmRemote(remoteID, remoteState string, rawFields map[string]string) (bool, error) {
	if remoteID != "" && p.remoteID != "" && remoteID != p.remoteID {
		return false, fmt.Errorf("%w: recorded %s, got %s", ErrRemoteIDMismatch, p.remoteID, remoteID)
	}

	changed := false
	if p.remoteID == "" && remoteID != "" {
		p.remoteID = remoteID
		changed = true
	}
	if remoteState != "" && remoteState != p.remoteState {
		p.remoteState = remoteState
		changed = true
	}
	for k, v := range rawFields {
		if cur, ok := p.rawFields[k]; ok && cur == v {
			continue
		}
		if p.rawFields == nil {
			p.rawFields = make(map[string]string, len(rawFields))
		}
		p.rawFields[k] = v
		changed = true
	}

	if changed {
		p.updatedAt = biztime.NowUTC()
		p.version++
	}
	return changed, nil
}

func (p *Payment) ID() uint {
	return p.id
}

func (p *Payment) OrderID() string {
	return p.orderID
}

func (p *Payment) GatewayID() string {
	return p.gatewayID
}

func (p *Payment) State() vo.PaymentState {
	return p.state
}

func (p *Payment) Amount() vo.Money {
	return p.amount
}

func (p *Payment) RefundedAmount() vo.Money {
	return p.refundedAmount
}

func (p *Payment) RemoteID() string {
	return p.remoteID
}

func (p *Payment) RemoteState() string {
	return p.remoteState
}

func (p *Payment) QRPayload() string {
	return p.qrPayload
}

func (p *Payment) IsTest() bool {
	return p.test
}

// RawFields returns a copy of the provider fields last seen for this payment.
func (p *Payment) RawFields() map[string]string {
	return maps.Clone(p.rawFields)
}

func (p *Payment) Version() int {
	return p.version
}

func (p *Payment) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Payment) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetID sets the payment ID after persistence (used by repository after Insert)
func (p *Payment) SetID(id uint) {
	p.id = id
}

// PaymentReconstructParams carries persisted state back into the aggregate.
type PaymentReconstructParams struct {
	ID             uint
	OrderID        string
	GatewayID      string
	State          vo.PaymentState
	Amount         vo.Money
	RefundedAmount vo.Money
	RemoteID       string
	RemoteState    string
	QRPayload      string
	Test           bool
	RawFields      map[string]string
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func ReconstructPaymentWithParams(params PaymentReconstructParams) *Payment {
	raw := params.RawFields
	if raw == nil {
		raw = make(map[string]string)
	}
	return &Payment{
		id:             params.ID,
		orderID:        params.OrderID,
		gatewayID:      params.GatewayID,
		state:          params.State,
		amount:         params.Amount,
		refundedAmount: params.RefundedAmount,
		remoteID:       params.RemoteID,
		remoteState:    params.RemoteState,
		qrPayload:      params.QRPayload,
		test:           params.Test,
		rawFields:      raw,
		version:        params.Version,
		createdAt:      params.CreatedAt,
		updatedAt:      params.UpdatedAt,
	}
}
