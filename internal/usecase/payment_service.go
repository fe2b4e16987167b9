package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/payment"
	"github.com/arieljmnz/quiniela-backend/internal/domain/user"
	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
)

// PaymentService is a thin ledger over debts between users. Overdue is
// derived from the due date at read time and never stored.
type PaymentService struct {
	paymentRepo payment.Repository
	logger      *logging.Logger
	now         func() time.Time
}

func NewPaymentService(paymentRepo payment.Repository, logger *logging.Logger) *PaymentService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		logger:      logger,
		now:         time.Now,
	}
}

type PaymentView struct {
	payment.Payment
	Overdue bool `json:"overdue"`
}

type UserPaymentsOutput struct {
	PaymentsDue       []PaymentView `json:"paymentsDue"`
	PaymentsToReceive []PaymentView `json:"paymentsToReceive"`
	TotalOwed         float64       `json:"totalOwed"`
	TotalToReceive    float64       `json:"totalToReceive"`
}

// UserPayments splits a user's ledger into what they owe and what they are
// owed, newest first. Totals count pending entries only. Callers only see
// their own ledger unless they are admins.
func (s *PaymentService) UserPayments(ctx context.Context, principal user.Principal, userID string) (UserPaymentsOutput, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PaymentService.UserPayments")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = principal.UserID
	}
	if userID != principal.UserID && !principal.IsAdmin() {
		return UserPaymentsOutput{}, fmt.Errorf("%w: cannot read another user's payments", ErrUnauthorized)
	}

	payments, err := s.paymentRepo.ListByUser(ctx, userID)
	if err != nil {
		return UserPaymentsOutput{}, fmt.Errorf("list payments for user %s: %w", userID, err)
	}
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})

	now := s.now()
	out := UserPaymentsOutput{
		PaymentsDue:       make([]PaymentView, 0, len(payments)),
		PaymentsToReceive: make([]PaymentView, 0, len(payments)),
	}
	for _, p := range payments {
		view := PaymentView{Payment: p, Overdue: p.IsOverdue(now)}
		switch {
		case p.FromUser == userID:
			out.PaymentsDue = append(out.PaymentsDue, view)
			if p.Status == payment.StatusPending {
				out.TotalOwed += p.Amount
			}
		case p.ToUser == userID:
			out.PaymentsToReceive = append(out.PaymentsToReceive, view)
			if p.Status == payment.StatusPending {
				out.TotalToReceive += p.Amount
			}
		}
	}
	return out, nil
}

// MarkPaymentAsPaid settles a pending debt, stamping the paid time and the
// method the payer used. Only the owing user or an admin may settle it, and
// settling twice is rejected.
func (s *PaymentService) MarkPaymentAsPaid(ctx context.Context, principal user.Principal, paymentID, method string) (payment.Payment, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PaymentService.MarkPaymentAsPaid")
	defer span.End()

	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return payment.Payment{}, fmt.Errorf("%w: payment id is required", ErrInvalidInput)
	}

	p, found, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return payment.Payment{}, fmt.Errorf("get payment %s: %w", paymentID, err)
	}
	if !found {
		return payment.Payment{}, fmt.Errorf("%w: payment %s", ErrNotFound, paymentID)
	}
	if p.FromUser != principal.UserID && !principal.IsAdmin() {
		return payment.Payment{}, fmt.Errorf("%w: only the owing user can settle payment %s", ErrUnauthorized, paymentID)
	}
	if p.Status == payment.StatusPaid {
		return payment.Payment{}, fmt.Errorf("%w: payment %s is already settled", ErrInvalidInput, paymentID)
	}

	method = strings.TrimSpace(method)
	if method == "" {
		method = "manual"
	}

	paidAt := s.now().UTC()
	if err := s.paymentRepo.MarkPaid(ctx, paymentID, paidAt, method); err != nil {
		return payment.Payment{}, fmt.Errorf("mark payment %s paid: %w", paymentID, err)
	}
	p.Status = payment.StatusPaid
	p.PaidAt = &paidAt
	p.Method = method
	s.logger.InfoContext(ctx, "payment settled", "payment_id", paymentID, "from_user", p.FromUser, "to_user", p.ToUser, "amount", p.Amount, "method", method)
	return p, nil
}
