package match

import "context"

type Repository interface {
	List(ctx context.Context) ([]Match, error)
	ListByIDs(ctx context.Context, matchIDs []string) ([]Match, error)
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	Create(ctx context.Context, m Match) error
	// Upsert keys on FixtureRefID when it is set, else on ID.
	Upsert(ctx context.Context, m Match) error
	RecordResult(ctx context.Context, matchID string, homeScore, awayScore int) error
}
