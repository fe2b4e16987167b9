package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/arieljmnz/quiniela-backend/internal/domain/prediction"
	qb "github.com/arieljmnz/quiniela-backend/internal/platform/querybuilder"
)

type predictionTableModel struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	PoolID    string    `db:"pool_id"`
	MatchID   string    `db:"match_id"`
	HomeScore int       `db:"home_score"`
	AwayScore int       `db:"away_score"`
	Points    int       `db:"points"`
	Scored    bool      `db:"scored"`
	CreatedAt time.Time `db:"created_at"`
}

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) ListByPool(ctx context.Context, poolID string) ([]prediction.Prediction, error) {
	return r.listWhere(ctx, qb.Eq("pool_id", poolID))
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	return r.listWhere(ctx, qb.Eq("user_id", userID))
}

func (r *PredictionRepository) ListByMatch(ctx context.Context, matchID string) ([]prediction.Prediction, error) {
	return r.listWhere(ctx, qb.Eq("match_id", matchID))
}

func (r *PredictionRepository) listWhere(ctx context.Context, condition qb.Condition) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(condition).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select predictions: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapPredictionRow(row))
	}
	return out, nil
}

func (r *PredictionRepository) GetByUserPoolMatch(ctx context.Context, userID, poolID, matchID string) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(qb.Eq("user_id", userID), qb.Eq("pool_id", poolID), qb.Eq("match_id", matchID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build select prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("select prediction: %w", err)
	}
	return mapPredictionRow(row), true, nil
}

func (r *PredictionRepository) Upsert(ctx context.Context, p prediction.Prediction) error {
	row := predictionTableModel{
		ID:        p.ID,
		UserID:    p.UserID,
		PoolID:    p.PoolID,
		MatchID:   p.MatchID,
		HomeScore: p.HomeScore,
		AwayScore: p.AwayScore,
		Points:    p.Points,
		Scored:    p.Scored,
		CreatedAt: p.CreatedAt,
	}
	suffix := `ON CONFLICT (user_id, pool_id, match_id) DO UPDATE SET
		home_score = EXCLUDED.home_score,
		away_score = EXCLUDED.away_score`
	query, args, err := qb.InsertModel("predictions", row, suffix)
	if err != nil {
		return fmt.Errorf("build upsert prediction query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert prediction %s: %w", p.ID, err)
	}
	return nil
}

func (r *PredictionRepository) SetPoints(ctx context.Context, predictionID string, points int) error {
	query, args, err := qb.Update("predictions").
		Set("points", points).
		Set("scored", true).
		Where(qb.Eq("id", predictionID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set points query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set points for prediction %s: %w", predictionID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set points rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("prediction %s not found", predictionID)
	}
	return nil
}

func mapPredictionRow(row predictionTableModel) prediction.Prediction {
	return prediction.Prediction{
		ID:        row.ID,
		UserID:    row.UserID,
		PoolID:    row.PoolID,
		MatchID:   row.MatchID,
		HomeScore: row.HomeScore,
		AwayScore: row.AwayScore,
		Points:    row.Points,
		Scored:    row.Scored,
		CreatedAt: row.CreatedAt,
	}
}
