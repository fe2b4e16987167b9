package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/arieljmnz/quiniela-backend/internal/domain/payment"
	qb "github.com/arieljmnz/quiniela-backend/internal/platform/querybuilder"
)

type paymentTableModel struct {
	ID        string     `db:"id"`
	FromUser  string     `db:"from_user"`
	ToUser    string     `db:"to_user"`
	PoolID    string     `db:"pool_id"`
	Amount    float64    `db:"amount"`
	Reason    string     `db:"reason"`
	DueDate   time.Time  `db:"due_date"`
	Status    string     `db:"status"`
	PaidAt    *time.Time `db:"paid_at"`
	Method    string     `db:"method"`
	CreatedAt time.Time  `db:"created_at"`
}

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]payment.Payment, error) {
	query, args, err := qb.Select("*").From("payments").
		Where(qb.Expr("(from_user = ? OR to_user = ?)", userID, userID)).
		OrderBy("created_at DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select payments query: %w", err)
	}

	var rows []paymentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select payments for user %s: %w", userID, err)
	}

	out := make([]payment.Payment, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapPaymentRow(row))
	}
	return out, nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, paymentID string) (payment.Payment, bool, error) {
	query, args, err := qb.Select("*").From("payments").Where(qb.Eq("id", paymentID)).Limit(1).ToSQL()
	if err != nil {
		return payment.Payment{}, false, fmt.Errorf("build select payment query: %w", err)
	}

	var row paymentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return payment.Payment{}, false, nil
		}
		return payment.Payment{}, false, fmt.Errorf("select payment %s: %w", paymentID, err)
	}
	return mapPaymentRow(row), true, nil
}

func (r *PaymentRepository) Create(ctx context.Context, p payment.Payment) error {
	row := paymentTableModel{
		ID:        p.ID,
		FromUser:  p.FromUser,
		ToUser:    p.ToUser,
		PoolID:    p.PoolID,
		Amount:    p.Amount,
		Reason:    p.Reason,
		DueDate:   p.DueDate,
		Status:    p.Status,
		PaidAt:    p.PaidAt,
		Method:    p.Method,
		CreatedAt: p.CreatedAt,
	}
	query, args, err := qb.InsertModel("payments", row, "")
	if err != nil {
		return fmt.Errorf("build insert payment query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert payment %s: %w", p.ID, err)
	}
	return nil
}

func (r *PaymentRepository) MarkPaid(ctx context.Context, paymentID string, paidAt time.Time, method string) error {
	query, args, err := qb.Update("payments").
		Set("status", payment.StatusPaid).
		Set("paid_at", paidAt).
		Set("method", method).
		Where(qb.Eq("id", paymentID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark payment paid query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark payment %s paid: %w", paymentID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark payment paid rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("payment %s not found", paymentID)
	}
	return nil
}

func mapPaymentRow(row paymentTableModel) payment.Payment {
	return payment.Payment{
		ID:        row.ID,
		FromUser:  row.FromUser,
		ToUser:    row.ToUser,
		PoolID:    row.PoolID,
		Amount:    row.Amount,
		Reason:    row.Reason,
		DueDate:   row.DueDate,
		Status:    row.Status,
		PaidAt:    row.PaidAt,
		Method:    row.Method,
		CreatedAt: row.CreatedAt,
	}
}
