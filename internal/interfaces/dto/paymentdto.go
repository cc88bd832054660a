// Package dto holds the JSON shapes of the payment HTTP API.
package dto

import (
	"time"

	"github.com/orris-inc/f2fpay/internal/domain/payment"
)

// DefaultCurrency applies when a request omits currency.
const DefaultCurrency = "CNY"

type RequestQRCodeRequest struct {
	OrderID  string `json:"order_id" binding:"required,max=64" example:"ORD-20240301-0001"`
	Amount   string `json:"amount" binding:"required" example:"100.00"`
	Currency string `json:"currency" binding:"omitempty,len=3" example:"CNY"`
}

type RequestQRCodeResponse struct {
	PaymentID uint   `json:"payment_id"`
	OrderID   string `json:"order_id"`
	QRCode    string `json:"qr_code"`
	// Reused is true when the order already had a QR charge.
	Reused bool `json:"reused"`
}

type CaptureBarcodeRequest struct {
	OrderID  string `json:"order_id" binding:"required,max=64"`
	AuthCode string `json:"auth_code" binding:"required,max=32" example:"287951669321423710"`
	Amount   string `json:"amount" binding:"required" example:"100.00"`
	Currency string `json:"currency" binding:"omitempty,len=3"`
}

// RefundRequest refunds the remaining balance when Amount is empty.
type RefundRequest struct {
	Amount string `json:"amount" example:"40.00"`
}

type PaymentDTO struct {
	ID             uint      `json:"id"`
	OrderID        string    `json:"order_id"`
	GatewayID      string    `json:"gateway_id"`
	State          string    `json:"state"`
	Amount         string    `json:"amount"`
	RefundedAmount string    `json:"refunded_amount"`
	Balance        string    `json:"balance"`
	Currency       string    `json:"currency"`
	RemoteID       string    `json:"remote_id"`
	RemoteState    string    `json:"remote_state,omitempty"`
	Test           bool      `json:"test"`
	Version        int       `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ToPaymentDTO(p *payment.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}

	balance := p.Balance()
	return &PaymentDTO{
		ID:             p.ID(),
		OrderID:        p.OrderID(),
		GatewayID:      p.GatewayID(),
		State:          p.State().String(),
		Amount:         p.Amount().ProviderString(),
		RefundedAmount: p.RefundedAmount().ProviderString(),
		Balance:        balance.ProviderString(),
		Currency:       p.Amount().Currency(),
		RemoteID:       p.RemoteID(),
		RemoteState:    p.RemoteState(),
		Test:           p.IsTest(),
		Version:        p.Version(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}
}
