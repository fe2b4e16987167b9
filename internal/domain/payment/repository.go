package payment

import (
	"context"
	"time"
)

type Repository interface {
	// ListByUser returns payments where the user is either party.
	ListByUser(ctx context.Context, userID string) ([]Payment, error)
	GetByID(ctx context.Context, paymentID string) (Payment, bool, error)
	Create(ctx context.Context, p Payment) error
	MarkPaid(ctx context.Context, paymentID string, paidAt time.Time, method string) error
}
