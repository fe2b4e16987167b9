package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/arieljmnz/quiniela-backend/internal/domain/pool"
)

type PoolRepository struct {
	mu    sync.RWMutex
	pools map[string]pool.Pool
}

func NewPoolRepository(seed []pool.Pool) *PoolRepository {
	pools := make(map[string]pool.Pool, len(seed))
	for _, p := range seed {
		pools[p.ID] = clonePool(p)
	}
	return &PoolRepository{pools: pools}
}

func (r *PoolRepository) List(_ context.Context) ([]pool.Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pool.Pool, 0, len(r.pools))
	for _, p := range r.pools {
		out = append(out, clonePool(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PoolRepository) GetByID(_ context.Context, poolID string) (pool.Pool, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pools[poolID]
	if !ok {
		return pool.Pool{}, false, nil
	}
	return clonePool(p), true, nil
}

func (r *PoolRepository) Create(_ context.Context, p pool.Pool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pools[p.ID]; exists {
		return fmt.Errorf("pool %s already exists", p.ID)
	}
	r.pools[p.ID] = clonePool(p)
	return nil
}

func (r *PoolRepository) UpdateStatus(_ context.Context, poolID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[poolID]
	if !ok {
		return fmt.Errorf("pool %s not found", poolID)
	}
	p.Status = status
	r.pools[poolID] = p
	return nil
}

func (r *PoolRepository) AddParticipant(_ context.Context, poolID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[poolID]
	if !ok {
		return fmt.Errorf("pool %s not found", poolID)
	}
	if p.HasParticipant(userID) {
		return nil
	}
	p.Participants = append(p.Participants, userID)
	r.pools[poolID] = p
	return nil
}

func clonePool(p pool.Pool) pool.Pool {
	out := p
	out.MatchIDs = append([]string(nil), p.MatchIDs...)
	out.Participants = append([]string(nil), p.Participants...)
	return out
}
