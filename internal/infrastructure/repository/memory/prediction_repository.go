package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/arieljmnz/quiniela-backend/internal/domain/prediction"
)

type PredictionRepository struct {
	mu          sync.RWMutex
	predictions map[string]prediction.Prediction
	byPick      map[string]string
}

func NewPredictionRepository(seed []prediction.Prediction) *PredictionRepository {
	r := &PredictionRepository{
		predictions: make(map[string]prediction.Prediction, len(seed)),
		byPick:      make(map[string]string, len(seed)),
	}
	for _, p := range seed {
		r.predictions[p.ID] = p
		r.byPick[pickKey(p.UserID, p.PoolID, p.MatchID)] = p.ID
	}
	return r
}

func (r *PredictionRepository) ListByPool(_ context.Context, poolID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []prediction.Prediction
	for _, p := range r.predictions {
		if p.PoolID == poolID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PredictionRepository) ListByUser(_ context.Context, userID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []prediction.Prediction
	for _, p := range r.predictions {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PredictionRepository) ListByMatch(_ context.Context, matchID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []prediction.Prediction
	for _, p := range r.predictions {
		if p.MatchID == matchID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PredictionRepository) GetByUserPoolMatch(_ context.Context, userID, poolID, matchID string) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	predictionID, ok := r.byPick[pickKey(userID, poolID, matchID)]
	if !ok {
		return prediction.Prediction{}, false, nil
	}
	p, ok := r.predictions[predictionID]
	return p, ok, nil
}

func (r *PredictionRepository) Upsert(_ context.Context, p prediction.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pickKey(p.UserID, p.PoolID, p.MatchID)
	if existingID, ok := r.byPick[key]; ok {
		p.ID = existingID
	} else {
		r.byPick[key] = p.ID
	}
	r.predictions[p.ID] = p
	return nil
}

func (r *PredictionRepository) SetPoints(_ context.Context, predictionID string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.predictions[predictionID]
	if !ok {
		return fmt.Errorf("prediction %s not found", predictionID)
	}
	p.Points = points
	p.Scored = true
	r.predictions[predictionID] = p
	return nil
}

func pickKey(userID, poolID, matchID string) string {
	return userID + "|" + poolID + "|" + matchID
}
