package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/f2fpay/internal/domain/payment"
	"github.com/orris-inc/f2fpay/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/f2fpay/internal/infrastructure/persistence/models"
	"github.com/orris-inc/f2fpay/internal/shared/db"
	apperrors "github.com/orris-inc/f2fpay/internal/shared/errors"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

// PaymentRepository is the gorm PaymentStore.
type PaymentRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

var _ payment.PaymentStore = (*PaymentRepository)(nil)

func NewPaymentRepository(db *gorm.DB, logger logger.Interface) *PaymentRepository {
	return &PaymentRepository{db: db, logger: logger}
}

func (r *PaymentRepository) Insert(ctx context.Context, p *payment.Payment) error {
	model, err := mappers.PaymentToModel(p)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateError(err) {
			return fmt.Errorf("%w: %s", payment.ErrDuplicateOrder, p.OrderID())
		}
		r.logger.Errorw("failed to create payment", "order_id", p.OrderID(), "error", err)
		return fmt.Errorf("failed to create payment: %w", err)
	}

	// Write back the auto-generated ID to the domain object
	p.SetID(model.ID)

	return nil
}

// Update writes the aggregate when the stored version is the one it was loaded at.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	model, err := mappers.PaymentToModel(p)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"state":           model.State,
			"refunded_amount": model.RefundedAmount,
			"remote_id":       model.RemoteID,
			"remote_state":    model.RemoteState,
			"raw_fields":      model.RawFields,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update payment", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: payment %d version %d", payment.ErrConcurrentModification, model.ID, model.Version-1)
	}

	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uint) (*payment.Payment, error) {
	var model models.PaymentModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return mappers.PaymentToDomain(&model)
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	var model models.PaymentModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by order_id: %w", err)
	}

	return mappers.PaymentToDomain(&model)
}
