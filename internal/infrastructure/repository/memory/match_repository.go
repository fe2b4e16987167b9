package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/arieljmnz/quiniela-backend/internal/domain/match"
)

type MatchRepository struct {
	mu      sync.RWMutex
	matches map[string]match.Match
	byRef   map[int64]string
}

func NewMatchRepository(seed []match.Match) *MatchRepository {
	r := &MatchRepository{
		matches: make(map[string]match.Match, len(seed)),
		byRef:   make(map[int64]string, len(seed)),
	}
	for _, m := range seed {
		r.matches[m.ID] = m
		if m.FixtureRefID > 0 {
			r.byRef[m.FixtureRefID] = m.ID
		}
	}
	return r
}

func (r *MatchRepository) List(_ context.Context) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.matches))
	for _, m := range r.matches {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MatchRepository) ListByIDs(_ context.Context, matchIDs []string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(matchIDs))
	for _, matchID := range matchIDs {
		if m, ok := r.matches[matchID]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matches[matchID]
	return m, ok, nil
}

func (r *MatchRepository) Create(_ context.Context, m match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.matches[m.ID]; exists {
		return fmt.Errorf("match %s already exists", m.ID)
	}
	r.matches[m.ID] = m
	if m.FixtureRefID > 0 {
		r.byRef[m.FixtureRefID] = m.ID
	}
	return nil
}

func (r *MatchRepository) Upsert(_ context.Context, m match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.FixtureRefID > 0 {
		if existingID, ok := r.byRef[m.FixtureRefID]; ok {
			m.ID = existingID
		} else {
			r.byRef[m.FixtureRefID] = m.ID
		}
	}
	r.matches[m.ID] = m
	return nil
}

func (r *MatchRepository) RecordResult(_ context.Context, matchID string, homeScore, awayScore int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[matchID]
	if !ok {
		return fmt.Errorf("match %s not found", matchID)
	}
	m.HomeScore = &homeScore
	m.AwayScore = &awayScore
	m.Status = match.StatusFinished
	r.matches[matchID] = m
	return nil
}
