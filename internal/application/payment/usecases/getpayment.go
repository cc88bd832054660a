package usecases

import (
	"context"

	"github.com/orris-inc/f2fpay/internal/domain/payment"
)

type GetPaymentUseCase struct {
	store payment.PaymentStore
}

func NewGetPaymentUseCase(store payment.PaymentStore) *GetPaymentUseCase {
	return &GetPaymentUseCase{store: store}
}

func (uc *GetPaymentUseCase) ByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	p, err := uc.store.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, payment.ErrPaymentNotFound
	}
	return p, nil
}
