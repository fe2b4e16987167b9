package prediction

import "context"

type Repository interface {
	ListByPool(ctx context.Context, poolID string) ([]Prediction, error)
	ListByUser(ctx context.Context, userID string) ([]Prediction, error)
	ListByMatch(ctx context.Context, matchID string) ([]Prediction, error)
	// GetByUserPoolMatch resolves the one prediction a user may hold for a
	// match inside a given pool. The same match can appear in several pools,
	// each carrying its own prediction.
	GetByUserPoolMatch(ctx context.Context, userID, poolID, matchID string) (Prediction, bool, error)
	Upsert(ctx context.Context, p Prediction) error
	SetPoints(ctx context.Context, predictionID string, points int) error
}
