package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentModel struct {
	ID             uint            `gorm:"primaryKey"`
	OrderID        string          `gorm:"uniqueIndex;size:64;not null"`
	GatewayID      string          `gorm:"size:64;not null"`
	State          string          `gorm:"size:32;not null;index"`
	// Scale 2 is valueobjects.MaxMinorDigits.
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RefundedAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Currency       string          `gorm:"size:3;not null;default:'CNY'"`
	RemoteID       string          `gorm:"size:64;index"`
	RemoteState    string          `gorm:"size:32"`
	QRPayload      string          `gorm:"type:text"`
	Test           bool            `gorm:"not null;default:false"`
	RawFields      datatypes.JSON
	Version        int `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PaymentModel) TableName() string {
	return "payments"
}
