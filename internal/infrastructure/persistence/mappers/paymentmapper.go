package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/orris-inc/f2fpay/internal/domain/payment"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
	"github.com/orris-inc/f2fpay/internal/infrastructure/persistence/models"
)

func PaymentToModel(p *payment.Payment) (*models.PaymentModel, error) {
	model := &models.PaymentModel{
		ID:             p.ID(),
		OrderID:        p.OrderID(),
		GatewayID:      p.GatewayID(),
		State:          p.State().String(),
		Amount:         p.Amount().Amount(),
		RefundedAmount: p.RefundedAmount().Amount(),
		Currency:       p.Amount().Currency(),
		RemoteID:       p.RemoteID(),
		RemoteState:    p.RemoteState(),
		QRPayload:      p.QRPayload(),
		Test:           p.IsTest(),
		Version:        p.Version(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}

	if raw := p.RawFields(); len(raw) > 0 {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to encode raw fields: %w", err)
		}
		model.RawFields = datatypes.JSON(data)
	}

	return model, nil
}

func PaymentToDomain(model *models.PaymentModel) (*payment.Payment, error) {
	state := vo.PaymentState(model.State)
	if !state.IsValid() {
		return nil, fmt.Errorf("invalid payment state: %s", model.State)
	}

	amount, err := vo.NewMoney(model.Amount, model.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid payment amount: %w", err)
	}
	refunded, err := vo.NewMoney(model.RefundedAmount, model.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid refunded amount: %w", err)
	}

	raw := make(map[string]string)
	if len(model.RawFields) > 0 {
		if err := json.Unmarshal(model.RawFields, &raw); err != nil {
			return nil, fmt.Errorf("invalid raw fields: %w", err)
		}
	}

	return payment.ReconstructPaymentWithParams(payment.PaymentReconstructParams{
		ID:             model.ID,
		OrderID:        model.OrderID,
		GatewayID:      model.GatewayID,
		State:          state,
		Amount:         amount,
		RefundedAmount: refunded,
		RemoteID:       model.RemoteID,
		RemoteState:    model.RemoteState,
		QRPayload:      model.QRPayload,
		Test:           model.Test,
		RawFields:      raw,
		Version:        model.Version,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}), nil
}
