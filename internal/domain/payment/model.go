package payment

import "time"

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Payment is one debt between two users, typically an entry fee owed to the
// quiniela organizer. DueDate drives the overdue flag computed on read; the
// stored row never flips to overdue.
type Payment struct {
	ID        string     `db:"id" json:"id"`
	FromUser  string     `db:"from_user" json:"fromUser"`
	ToUser    string     `db:"to_user" json:"toUser"`
	PoolID    string     `db:"pool_id" json:"poolId,omitempty"`
	Amount    float64    `db:"amount" json:"amount"`
	Reason    string     `db:"reason" json:"reason"`
	DueDate   time.Time  `db:"due_date" json:"dueDate"`
	Status    string     `db:"status" json:"status"`
	PaidAt    *time.Time `db:"paid_at" json:"paidAt,omitempty"`
	Method    string     `db:"method" json:"method,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}

// IsOverdue reports whether the debt is still pending past its due date.
func (p Payment) IsOverdue(now time.Time) bool {
	return p.Status == StatusPending && now.After(p.DueDate)
}
