package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/f2fpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/f2fpay/internal/domain/payment"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

type RequestQRCodeCommand struct {
	OrderID string
	Amount  vo.Money
}

type RequestQRCodeResult struct {
	Payment   *payment.Payment
	QRPayload string
	// Reused is true when the payload came from an existing record.
	Reused bool
}

type RequestQRCodeUseCase struct {
	reconciler *Reconciler
	client     paymentgateway.RemoteClient
	site       SiteNameProvider
	mode       vo.Mode
	logger     logger.Interface
}

func NewRequestQRCodeUseCase(
	reconciler *Reconciler,
	client paymentgateway.RemoteClient,
	site SiteNameProvider,
	mode vo.Mode,
	logger logger.Interface,
) *RequestQRCodeUseCase {
	return &RequestQRCodeUseCase{
		reconciler: reconciler,
		client:     client,
		site:       site,
		mode:       mode,
		logger:     logger,
	}
}

// Execute returns the QR payload for an order, creating the charge at most once.
func (uc *RequestQRCodeUseCase) Execute(ctx context.Context, cmd RequestQRCodeCommand) (*RequestQRCodeResult, error) {
	existing, err := uc.reconciler.FindExistingPayment(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return reuseQRPayment(existing, cmd)
	}

	resp, err := uc.client.RequestQRCharge(ctx, paymentgateway.ChargeRequest{
		OrderID: cmd.OrderID,
		Amount:  cmd.Amount,
		Subject: chargeSubject(uc.site, cmd.OrderID),
		Mode:    uc.mode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request qr code: %w", err)
	}

	p, err := uc.reconciler.CreateFromRemoteResponse(ctx, resp, cmd.OrderID, &cmd.Amount)
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("qr code issued", "order_id", cmd.OrderID, "payment_id", p.ID())
	return &RequestQRCodeResult{Payment: p, QRPayload: p.QRPayload()}, nil
}

func reuseQRPayment(existing *payment.Payment, cmd RequestQRCodeCommand) (*RequestQRCodeResult, error) {
	if err := existing.ValidatePaidAmount(cmd.Amount); err != nil {
		return nil, err
	}
	if existing.QRPayload() == "" {
		return nil, fmt.Errorf("%w: order %s was not charged by qr code", payment.ErrDuplicateOrder, cmd.OrderID)
	}
	return &RequestQRCodeResult{Payment: existing, QRPayload: existing.QRPayload(), Reused: true}, nil
}

func chargeSubject(site SiteNameProvider, orderID string) string {
	return fmt.Sprintf("%s Order: %s", site.SiteName(), orderID)
}
