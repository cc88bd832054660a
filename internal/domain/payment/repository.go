package payment

import "context"

// PaymentStore persists payment records. The order id is unique: Insert returns
// ErrDuplicateOrder when a record for the same order already landed, and Update
// returns ErrConcurrentModification when the stored version moved on.
type PaymentStore interface {
	// FindByOrderID returns nil, nil when no record exists.
	FindByOrderID(ctx context.Context, orderID string) (*Payment, error)
	// FindByID returns ErrPaymentNotFound when no record exists.
	FindByID(ctx context.Context, id uint) (*Payment, error)
	Insert(ctx context.Context, p *Payment) error
	Update(ctx context.Context, p *Payment) error
}
