package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/arieljmnz/quiniela-backend/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]user.User
	order []string
}

func NewUserRepository(seed []user.User) *UserRepository {
	users := make(map[string]user.User, len(seed))
	order := make([]string, 0, len(seed))
	for _, item := range seed {
		if _, exists := users[item.ID]; !exists {
			order = append(order, item.ID)
		}
		users[item.ID] = item
	}
	return &UserRepository{users: users, order: order}
}

func (r *UserRepository) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.order))
	for _, userID := range r.order {
		out = append(out, r.users[userID])
	}
	return out, nil
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	return u, ok, nil
}

// GetByEmail resolves the user behind a verified token subject.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	sort.Strings(ids)
	for _, userID := range ids {
		if r.users[userID].Email == email {
			return r.users[userID], true, nil
		}
	}
	return user.User{}, false, nil
}
