package pool

import "context"

// Repository exposes quiniela reads plus the few writes the admin flow needs.
// List returns pools newest-created first.
type Repository interface {
	List(ctx context.Context) ([]Pool, error)
	GetByID(ctx context.Context, poolID string) (Pool, bool, error)
	Create(ctx context.Context, p Pool) error
	UpdateStatus(ctx context.Context, poolID, status string) error
	AddParticipant(ctx context.Context, poolID, userID string) error
}
