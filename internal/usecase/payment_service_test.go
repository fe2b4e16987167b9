package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/payment"
	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
)

func seedPayment(t *testing.T, repo *stubPaymentRepo, p payment.Payment) {
	t.Helper()
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed payment %s: %v", p.ID, err)
	}
}

func TestUserPaymentsSplitsDirectionsAndTotals(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)
	payments := newStubPaymentRepo()
	seedPayment(t, payments, payment.Payment{ID: "pay-1", FromUser: "u-1", ToUser: "u-admin", Amount: 100, Status: payment.StatusPending, DueDate: now.Add(-time.Hour), CreatedAt: now.Add(-72 * time.Hour)})
	seedPayment(t, payments, payment.Payment{ID: "pay-2", FromUser: "u-1", ToUser: "u-admin", Amount: 100, Status: payment.StatusPending, DueDate: now.Add(time.Hour), CreatedAt: now.Add(-time.Hour)})
	seedPayment(t, payments, payment.Payment{ID: "pay-3", FromUser: "u-1", ToUser: "u-admin", Amount: 50, Status: payment.StatusPaid, DueDate: now.Add(-time.Hour), CreatedAt: now.Add(-48 * time.Hour)})
	seedPayment(t, payments, payment.Payment{ID: "pay-4", FromUser: "u-admin", ToUser: "u-1", Amount: 300, Status: payment.StatusPending, DueDate: now.Add(24 * time.Hour), CreatedAt: now.Add(-24 * time.Hour)})
	seedPayment(t, payments, payment.Payment{ID: "pay-5", FromUser: "u-2", ToUser: "u-admin", Amount: 100, Status: payment.StatusPending, DueDate: now, CreatedAt: now})

	svc := NewPaymentService(payments, logging.NewNop())
	svc.now = func() time.Time { return now }

	out, err := svc.UserPayments(context.Background(), memberPrincipal("u-1"), "")
	if err != nil {
		t.Fatalf("user payments: %v", err)
	}
	if len(out.PaymentsDue) != 3 {
		t.Fatalf("expected 3 payments due got %d", len(out.PaymentsDue))
	}
	if len(out.PaymentsToReceive) != 1 {
		t.Fatalf("expected 1 payment to receive got %d", len(out.PaymentsToReceive))
	}
	if out.PaymentsDue[0].ID != "pay-2" {
		t.Fatalf("expected newest payment first, got %q", out.PaymentsDue[0].ID)
	}
	// Settled entries never count toward totals.
	if out.TotalOwed != 200 || out.TotalToReceive != 300 {
		t.Fatalf("unexpected totals owed=%f toReceive=%f", out.TotalOwed, out.TotalToReceive)
	}

	var sawOverdue bool
	for _, view := range out.PaymentsDue {
		if view.ID == "pay-1" && view.Overdue {
			sawOverdue = true
		}
		if view.ID == "pay-3" && view.Overdue {
			t.Fatalf("settled payment must never be overdue")
		}
	}
	if !sawOverdue {
		t.Fatalf("expected pay-1 flagged overdue")
	}
}

func TestUserPaymentsAuthorization(t *testing.T) {
	t.Parallel()

	payments := newStubPaymentRepo()
	seedPayment(t, payments, payment.Payment{ID: "pay-1", FromUser: "u-2", ToUser: "u-admin", Amount: 100, Status: payment.StatusPending})
	svc := NewPaymentService(payments, logging.NewNop())

	if _, err := svc.UserPayments(context.Background(), memberPrincipal("u-1"), "u-2"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized got %v", err)
	}
	out, err := svc.UserPayments(context.Background(), adminPrincipal(), "u-2")
	if err != nil {
		t.Fatalf("admin read: %v", err)
	}
	if len(out.PaymentsDue) != 1 {
		t.Fatalf("expected admin to see the ledger, got %d entries", len(out.PaymentsDue))
	}
}

func TestMarkPaymentAsPaid(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)
	payments := newStubPaymentRepo()
	seedPayment(t, payments, payment.Payment{ID: "pay-1", FromUser: "u-1", ToUser: "u-admin", Amount: 100, Status: payment.StatusPending, DueDate: now})

	svc := NewPaymentService(payments, logging.NewNop())
	svc.now = func() time.Time { return now }

	// The receiving party cannot settle someone else's debt.
	if _, err := svc.MarkPaymentAsPaid(context.Background(), memberPrincipal("u-2"), "pay-1", "transfer"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized got %v", err)
	}

	settled, err := svc.MarkPaymentAsPaid(context.Background(), memberPrincipal("u-1"), "pay-1", "transfer")
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if settled.Status != payment.StatusPaid || settled.PaidAt == nil || settled.Method != "transfer" {
		t.Fatalf("expected settled payment, got %+v", settled)
	}

	if _, err := svc.MarkPaymentAsPaid(context.Background(), memberPrincipal("u-1"), "pay-1", "transfer"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput on double settle got %v", err)
	}
	if _, err := svc.MarkPaymentAsPaid(context.Background(), adminPrincipal(), "ghost", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}
