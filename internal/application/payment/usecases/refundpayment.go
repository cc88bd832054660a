package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/orris-inc/f2fpay/internal/domain/payment"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

type RefundPaymentCommand struct {
	PaymentID uint
	// Amount is a decimal string in the payment's currency; empty refunds the balance.
	Amount     string
	OperatorID string
}

type RefundPaymentUseCase struct {
	store      payment.PaymentStore
	reconciler *Reconciler
	logger     logger.Interface
}

func NewRefundPaymentUseCase(store payment.PaymentStore, reconciler *Reconciler, logger logger.Interface) *RefundPaymentUseCase {
	return &RefundPaymentUseCase{
		store:      store,
		reconciler: reconciler,
		logger:     logger,
	}
}

func (uc *RefundPaymentUseCase) Execute(ctx context.Context, cmd RefundPaymentCommand) (*payment.Payment, error) {
	p, err := uc.store.FindByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, err
	}

	var requested *vo.Money
	if amount := strings.TrimSpace(cmd.Amount); amount != "" {
		m, err := vo.ParseMoney(amount, p.Amount().Currency())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", payment.ErrInvalidRefundAmount, err)
		}
		requested = &m
	}

	uc.logger.Infow("refund requested",
		"payment_id", cmd.PaymentID,
		"order_id", p.OrderID(),
		"amount", cmd.Amount,
		"operator_id", cmd.OperatorID,
	)
	return uc.reconciler.ApplyRefund(ctx, p, requested)
}
