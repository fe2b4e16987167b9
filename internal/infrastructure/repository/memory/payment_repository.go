package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/payment"
)

type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]payment.Payment
}

func NewPaymentRepository(seed []payment.Payment) *PaymentRepository {
	payments := make(map[string]payment.Payment, len(seed))
	for _, p := range seed {
		payments[p.ID] = p
	}
	return &PaymentRepository{payments: payments}
}

func (r *PaymentRepository) ListByUser(_ context.Context, userID string) ([]payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []payment.Payment
	for _, p := range r.payments {
		if p.FromUser == userID || p.ToUser == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PaymentRepository) GetByID(_ context.Context, paymentID string) (payment.Payment, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[paymentID]
	return p, ok, nil
}

func (r *PaymentRepository) Create(_ context.Context, p payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.payments[p.ID]; exists {
		return fmt.Errorf("payment %s already exists", p.ID)
	}
	r.payments[p.ID] = p
	return nil
}

func (r *PaymentRepository) MarkPaid(_ context.Context, paymentID string, paidAt time.Time, method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[paymentID]
	if !ok {
		return fmt.Errorf("payment %s not found", paymentID)
	}
	p.Status = payment.StatusPaid
	p.PaidAt = &paidAt
	p.Method = method
	r.payments[paymentID] = p
	return nil
}
