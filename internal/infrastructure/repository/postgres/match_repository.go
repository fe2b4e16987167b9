package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/arieljmnz/quiniela-backend/internal/domain/match"
	qb "github.com/arieljmnz/quiniela-backend/internal/platform/querybuilder"
)

type matchTableModel struct {
	ID           string        `db:"id"`
	HomeTeam     string        `db:"home_team"`
	AwayTeam     string        `db:"away_team"`
	League       string        `db:"league"`
	KickoffAt    time.Time     `db:"kickoff_at"`
	Status       string        `db:"status"`
	HomeScore    sql.NullInt64 `db:"home_score"`
	AwayScore    sql.NullInt64 `db:"away_score"`
	FixtureRefID sql.NullInt64 `db:"fixture_ref_id"`
	Source       string        `db:"source"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) List(ctx context.Context) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").OrderBy("kickoff_at", "id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}
	return mapMatchRows(rows), nil
}

func (r *MatchRepository) ListByIDs(ctx context.Context, matchIDs []string) ([]match.Match, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	ids := make([]any, 0, len(matchIDs))
	for _, matchID := range matchIDs {
		ids = append(ids, matchID)
	}

	query, args, err := qb.Select("*").From("matches").
		Where(qb.In("id", ids)).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by ids query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches by ids: %w", err)
	}
	return mapMatchRows(rows), nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").Where(qb.Eq("id", matchID)).Limit(1).ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match %s: %w", matchID, err)
	}
	return mapMatchRow(row), true, nil
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) error {
	query, args, err := qb.InsertModel("matches", matchToRow(m), "")
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert match %s: %w", m.ID, err)
	}
	return nil
}

func (r *MatchRepository) Upsert(ctx context.Context, m match.Match) error {
	suffix := `ON CONFLICT (id) DO UPDATE SET
		home_team = EXCLUDED.home_team,
		away_team = EXCLUDED.away_team,
		league = EXCLUDED.league,
		kickoff_at = EXCLUDED.kickoff_at,
		status = EXCLUDED.status,
		home_score = EXCLUDED.home_score,
		away_score = EXCLUDED.away_score,
		source = EXCLUDED.source,
		updated_at = NOW()`
	query, args, err := qb.InsertModel("matches", matchToRow(m), suffix)
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match %s: %w", m.ID, err)
	}
	return nil
}

func (r *MatchRepository) RecordResult(ctx context.Context, matchID string, homeScore, awayScore int) error {
	query, args, err := qb.Update("matches").
		Set("home_score", homeScore).
		Set("away_score", awayScore).
		Set("status", match.StatusFinished).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build record result query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("record result for match %s: %w", matchID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("record result rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("match %s not found", matchID)
	}
	return nil
}

func matchToRow(m match.Match) matchTableModel {
	return matchTableModel{
		ID:           m.ID,
		HomeTeam:     m.HomeTeam,
		AwayTeam:     m.AwayTeam,
		League:       m.League,
		KickoffAt:    m.KickoffAt,
		Status:       m.Status,
		HomeScore:    intPtrToNull(m.HomeScore),
		AwayScore:    intPtrToNull(m.AwayScore),
		FixtureRefID: sql.NullInt64{Int64: m.FixtureRefID, Valid: m.FixtureRefID > 0},
		Source:       m.Source,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

func mapMatchRow(row matchTableModel) match.Match {
	refID := int64(0)
	if row.FixtureRefID.Valid {
		refID = row.FixtureRefID.Int64
	}
	return match.Match{
		ID:           row.ID,
		HomeTeam:     row.HomeTeam,
		AwayTeam:     row.AwayTeam,
		League:       row.League,
		KickoffAt:    row.KickoffAt,
		Status:       row.Status,
		HomeScore:    nullIntPtr(row.HomeScore),
		AwayScore:    nullIntPtr(row.AwayScore),
		FixtureRefID: refID,
		Source:       row.Source,
	}
}

func mapMatchRows(rows []matchTableModel) []match.Match {
	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapMatchRow(row))
	}
	return out
}
