package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orris-inc/f2fpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/f2fpay/internal/domain/payment"
	vo "github.com/orris-inc/f2fpay/internal/domain/payment/valueobjects"
	"github.com/orris-inc/f2fpay/internal/shared/biztime"
	"github.com/orris-inc/f2fpay/internal/shared/goroutine"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

// CallbackKind classifies a verified notification.
type CallbackKind string

const (
	CallbackPayment    CallbackKind = "payment"
	CallbackRefundEcho CallbackKind = "refund_echo"
	CallbackFailure    CallbackKind = "failure"
)

const alertTimeout = 30 * time.Second

// Reconciler turns provider answers into payment records. It is the only
// place records are created, and it applies refunds against their balance.
type Reconciler struct {
	store     payment.PaymentStore
	client    paymentgateway.RemoteClient
	locker    PaymentLocker
	alerter   ReconciliationAlerter // Optional
	tx        TxRunner              // Optional
	gatewayID string
	mode      vo.Mode
	logger    logger.Interface
}

func NewReconciler(
	store payment.PaymentStore,
	client paymentgateway.RemoteClient,
	locker PaymentLocker,
	gatewayID string,
	mode vo.Mode,
	logger logger.Interface,
) *Reconciler {
	return &Reconciler{
		store:     store,
		client:    client,
		locker:    locker,
		gatewayID: gatewayID,
		mode:      mode,
		logger:    logger,
	}
}

// SetAlerter sets the operator alerter (optional dependency injection)
func (r *Reconciler) SetAlerter(alerter ReconciliationAlerter) {
	r.alerter = alerter
}

// SetTxRunner makes create and confirm run inside a store transaction.
func (r *Reconciler) SetTxRunner(tx TxRunner) {
	r.tx = tx
}

// FindExistingPayment returns the record for an order, or nil when there is none.
func (r *Reconciler) FindExistingPayment(ctx context.Context, orderID string) (*payment.Payment, error) {
	p, err := r.store.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment for order %s: %w", orderID, err)
	}
	return p, nil
}

// CreateFromRemoteResponse records a successful charge. When the order already
// has a record it is confirmed instead, so repeated deliveries never insert twice.
func (r *Reconciler) CreateFromRemoteResponse(
	ctx context.Context,
	resp *paymentgateway.RemoteResponse,
	orderID string,
	expected *vo.Money,
) (*payment.Payment, error) {
	if resp == nil || !resp.Succeeded {
		return nil, fmt.Errorf("%w: response for order %s is not a successful charge", paymentgateway.ErrRemoteCallFailed, orderID)
	}

	amount, err := settledAmount(resp, expected)
	if err != nil {
		r.logger.Errorw("paid amount does not match order amount",
			"order_id", orderID,
			"remote_id", resp.RemoteTransactionID,
			"error", err,
		)
		return nil, err
	}

	var result *payment.Payment
	err = r.inTx(ctx, func(ctx context.Context) error {
		existing, err := r.FindExistingPayment(ctx, orderID)
		if err != nil {
			return err
		}
		if existing != nil {
			result, err = r.confirmExisting(ctx, existing, resp, amount)
			return err
		}

		p, err := payment.NewCapturedPayment(payment.CaptureParams{
			OrderID:     orderID,
			GatewayID:   r.gatewayID,
			Amount:      amount,
			RemoteID:    resp.RemoteTransactionID,
			RemoteState: resp.TradeStatus,
			QRPayload:   resp.QRPayload,
			Test:        r.mode.IsTest(),
			RawFields:   resp.RawFields,
		})
		if err != nil {
			return err
		}

		if err := r.store.Insert(ctx, p); err != nil {
			if errors.Is(err, payment.ErrDuplicateOrder) {
				return &lostInsertRace{err: err}
			}
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		r.logger.Infow("payment recorded",
			"payment_id", p.ID(),
			"order_id", orderID,
			"remote_id", p.RemoteID(),
			"amount", p.Amount().String(),
		)
		result = p
		return nil
	})

	var race *lostInsertRace
	if errors.As(err, &race) {
		return r.recoverInsertRace(ctx, race.err, resp, orderID, amount)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lostInsertRace marks an insert rejected because another writer recorded the
// order first. It aborts the transaction so the winner is read afresh.
type lostInsertRace struct {
	err error
}

func (e *lostInsertRace) Error() string { return e.err.Error() }

func (e *lostInsertRace) Unwrap() error { return e.err }

// recoverInsertRace confirms the winner's record in a new transaction. The
// losing transaction's snapshot predates the winner's commit and cannot see it.
func (r *Reconciler) recoverInsertRace(
	ctx context.Context,
	insertErr error,
	resp *paymentgateway.RemoteResponse,
	orderID string,
	amount vo.Money,
) (*payment.Payment, error) {
	var result *payment.Payment
	err := r.inTx(ctx, func(ctx context.Context) error {
		winner, err := r.FindExistingPayment(ctx, orderID)
		if err != nil {
			return err
		}
		if winner == nil {
			return insertErr
		}
		result, err = r.confirmExisting(ctx, winner, resp, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// settledAmount picks the record amount. Both amounts present must agree.
func settledAmount(resp *paymentgateway.RemoteResponse, expected *vo.Money) (vo.Money, error) {
	switch {
	case expected != nil && resp.PaidAmount != nil:
		if !expected.Equals(*resp.PaidAmount) {
			return vo.Money{}, fmt.Errorf("%w: expected %s, provider reported %s",
				payment.ErrAmountMismatch, expected, resp.PaidAmount)
		}
		return *expected, nil
	case expected != nil:
		return *expected, nil
	case resp.PaidAmount != nil:
		return *resp.PaidAmount, nil
	default:
		return vo.Money{}, fmt.Errorf("%w: no amount available", payment.ErrAmountMismatch)
	}
}

func (r *Reconciler) confirmExisting(
	ctx context.Context,
	p *payment.Payment,
	resp *paymentgateway.RemoteResponse,
	amount vo.Money,
) (*payment.Payment, error) {
	if err := p.ValidatePaidAmount(amount); err != nil {
		r.logger.Errorw("provider amount disagrees with recorded payment",
			"payment_id", p.ID(),
			"order_id", p.OrderID(),
			"error", err,
		)
		return nil, err
	}

	changed, err := p.ConfirmRemote(resp.RemoteTransactionID, resp.TradeStatus, resp.RawFields)
	if err != nil {
		r.logger.Errorw("provider transaction does not match recorded payment",
			"payment_id", p.ID(),
			"order_id", p.OrderID(),
			"error", err,
		)
		return nil, err
	}
	if !changed {
		r.logger.Infow("payment already recorded", "payment_id", p.ID(), "order_id", p.OrderID())
		return p, nil
	}

	if err := r.store.Update(ctx, p); err != nil {
		if errors.Is(err, payment.ErrConcurrentModification) {
			// Another delivery confirmed it first.
			return r.store.FindByID(ctx, p.ID())
		}
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	r.logger.Infow("payment confirmed",
		"payment_id", p.ID(),
		"order_id", p.OrderID(),
		"remote_id", p.RemoteID(),
		"remote_state", p.RemoteState(),
	)
	return p, nil
}

// ApplyRefund refunds requested, or the whole balance when requested is nil.
// The record is only changed after the provider accepted the refund.
func (r *Reconciler) ApplyRefund(ctx context.Context, p *payment.Payment, requested *vo.Money) (*payment.Payment, error) {
	unlock, err := r.locker.Lock(ctx, p.ID())
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := r.store.FindByID(ctx, p.ID())
	if err != nil {
		return nil, err
	}

	amount := current.Balance()
	if requested != nil {
		amount = *requested
	}
	if err := current.CheckRefund(amount); err != nil {
		return nil, err
	}

	refundedBefore := current.RefundedAmount()
	if _, err := r.client.Refund(ctx, current, amount); err != nil {
		r.logger.Errorw("refund rejected",
			"operation", "refund",
			"payment_id", current.ID(),
			"order_id", current.OrderID(),
			"amount", amount.String(),
			"error", err,
		)
		return nil, err
	}

	if err := current.ApplyRefund(amount); err != nil {
		r.refundNotRecorded(current, amount, refundedBefore, err)
		return nil, err
	}
	if err := r.store.Update(ctx, current); err != nil {
		r.refundNotRecorded(current, amount, refundedBefore, err)
		return nil, fmt.Errorf("refund accepted by provider but not recorded: %w", err)
	}

	r.logger.Infow("refund applied",
		"payment_id", current.ID(),
		"order_id", current.OrderID(),
		"amount", amount.String(),
		"refunded", current.RefundedAmount().String(),
		"state", current.State(),
	)
	return current, nil
}

// refundNotRecorded reports money that left the merchant without a local trace.
func (r *Reconciler) refundNotRecorded(p *payment.Payment, amount, refundedBefore vo.Money, cause error) {
	r.logger.Errorw("CRITICAL: refund accepted by provider but not recorded, manual reconciliation required",
		"payment_id", p.ID(),
		"order_id", p.OrderID(),
		"remote_id", p.RemoteID(),
		"amount", amount.String(),
		"refunded_before", refundedBefore.String(),
		"error", cause,
	)
	if r.alerter == nil {
		return
	}

	alert := RefundAlert{
		PaymentID:  p.ID(),
		OrderID:    p.OrderID(),
		RemoteID:   p.RemoteID(),
		Amount:     amount,
		Refunded:   refundedBefore,
		Error:      cause.Error(),
		OccurredAt: biztime.NowUTC(),
	}
	goroutine.SafeGoWithTimeout(r.logger, "refund-reconciliation-alert", alertTimeout, func(ctx context.Context) {
		if err := r.alerter.AlertRefundNotRecorded(ctx, alert); err != nil {
			r.logger.Warnw("failed to send reconciliation alert", "order_id", alert.OrderID, "error", err)
		}
	})
}

// ClassifyCallback tells payment events from refund echoes on the shared channel.
func (r *Reconciler) ClassifyCallback(resp *paymentgateway.RemoteResponse) CallbackKind {
	switch {
	case resp.IsRefundEcho():
		return CallbackRefundEcho
	case resp.Succeeded:
		return CallbackPayment
	default:
		return CallbackFailure
	}
}

func (r *Reconciler) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.tx == nil {
		return fn(ctx)
	}
	return r.tx.RunInTransaction(ctx, fn)
}
