package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/f2fpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/f2fpay/internal/domain/payment"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

type CaptureBarcodeCommand struct {
	OrderID  string
	AuthCode string
	Amount   vo.Money
}

type CaptureBarcodeUseCase struct {
	reconciler *Reconciler
	client     paymentgateway.RemoteClient
	site       SiteNameProvider
	mode       vo.Mode
	logger     logger.Interface
}

func NewCaptureBarcodeUseCase(
	reconciler *Reconciler,
	client paymentgateway.RemoteClient,
	site SiteNameProvider,
	mode vo.Mode,
	logger logger.Interface,
) *CaptureBarcodeUseCase {
	return &CaptureBarcodeUseCase{
		reconciler: reconciler,
		client:     client,
		site:       site,
		mode:       mode,
		logger:     logger,
	}
}

// Execute charges the buyer's payment code. An order already charged by
// barcode is not charged again. An unpaid QR record does not count as a
// charge: the capture still goes to the provider and confirms that record.
func (uc *CaptureBarcodeUseCase) Execute(ctx context.Context, cmd CaptureBarcodeCommand) (*payment.Payment, error) {
	existing, err := uc.reconciler.FindExistingPayment(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := existing.ValidatePaidAmount(cmd.Amount); err != nil {
			return nil, err
		}
		switch {
		case existing.RemoteID() == "":
			uc.logger.Infow("order has an unpaid qr code, capturing barcode",
				"order_id", cmd.OrderID,
				"payment_id", existing.ID(),
			)
		case existing.QRPayload() != "":
			return nil, fmt.Errorf("%w: order %s was paid by qr code", payment.ErrDuplicateOrder, cmd.OrderID)
		default:
			uc.logger.Infow("order already paid, skipping capture", "order_id", cmd.OrderID, "payment_id", existing.ID())
			return existing, nil
		}
	}

	resp, err := uc.client.CaptureBarcode(ctx, paymentgateway.ChargeRequest{
		OrderID:  cmd.OrderID,
		Amount:   cmd.Amount,
		Subject:  chargeSubject(uc.site, cmd.OrderID),
		Mode:     uc.mode,
		AuthCode: cmd.AuthCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture barcode payment: %w", err)
	}

	p, err := uc.reconciler.CreateFromRemoteResponse(ctx, resp, cmd.OrderID, &cmd.Amount)
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("barcode payment captured", "order_id", cmd.OrderID, "payment_id", p.ID(), "remote_id", p.RemoteID())
	return p, nil
}
