package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/arieljmnz/quiniela-backend/internal/domain/pool"
	qb "github.com/arieljmnz/quiniela-backend/internal/platform/querybuilder"
)

type poolTableModel struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Week         int            `db:"week"`
	Year         int            `db:"year"`
	MatchIDs     pq.StringArray `db:"match_ids"`
	EntryFee     float64        `db:"entry_fee"`
	DeadlineAt   time.Time      `db:"deadline_at"`
	Status       string         `db:"status"`
	CreatedBy    string         `db:"created_by"`
	Participants pq.StringArray `db:"participants"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type PoolRepository struct {
	db *sqlx.DB
}

func NewPoolRepository(db *sqlx.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

func (r *PoolRepository) List(ctx context.Context) ([]pool.Pool, error) {
	query, args, err := qb.Select("*").From("quinielas").OrderBy("created_at DESC", "id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select quinielas query: %w", err)
	}

	var rows []poolTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select quinielas: %w", err)
	}

	out := make([]pool.Pool, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapPoolRow(row))
	}
	return out, nil
}

func (r *PoolRepository) GetByID(ctx context.Context, poolID string) (pool.Pool, bool, error) {
	query, args, err := qb.Select("*").From("quinielas").Where(qb.Eq("id", poolID)).Limit(1).ToSQL()
	if err != nil {
		return pool.Pool{}, false, fmt.Errorf("build select quiniela query: %w", err)
	}

	var row poolTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pool.Pool{}, false, nil
		}
		return pool.Pool{}, false, fmt.Errorf("select quiniela %s: %w", poolID, err)
	}
	return mapPoolRow(row), true, nil
}

func (r *PoolRepository) Create(ctx context.Context, p pool.Pool) error {
	row := poolTableModel{
		ID:           p.ID,
		Title:        p.Title,
		Week:         p.Week,
		Year:         p.Year,
		MatchIDs:     pq.StringArray(p.MatchIDs),
		EntryFee:     p.EntryFee,
		DeadlineAt:   p.DeadlineAt,
		Status:       p.Status,
		CreatedBy:    p.CreatedBy,
		Participants: pq.StringArray(p.Participants),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.CreatedAt,
	}
	query, args, err := qb.InsertModel("quinielas", row, "")
	if err != nil {
		return fmt.Errorf("build insert quiniela query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert quiniela %s: %w", p.ID, err)
	}
	return nil
}

func (r *PoolRepository) UpdateStatus(ctx context.Context, poolID, status string) error {
	query, args, err := qb.Update("quinielas").
		Set("status", status).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", poolID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update quiniela status query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update quiniela %s status: %w", poolID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quiniela status rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("quiniela %s not found", poolID)
	}
	return nil
}

func (r *PoolRepository) AddParticipant(ctx context.Context, poolID, userID string) error {
	query, args, err := qb.Update("quinielas").
		SetExpr("participants", "array_append(participants, ?)", userID).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", poolID),
			qb.Expr("NOT (participants @> ARRAY[?])", userID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build add participant query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add participant to quiniela %s: %w", poolID, err)
	}
	return nil
}

func mapPoolRow(row poolTableModel) pool.Pool {
	return pool.Pool{
		ID:           row.ID,
		Title:        row.Title,
		Week:         row.Week,
		Year:         row.Year,
		MatchIDs:     []string(row.MatchIDs),
		EntryFee:     row.EntryFee,
		DeadlineAt:   row.DeadlineAt,
		Status:       row.Status,
		CreatedBy:    row.CreatedBy,
		Participants: []string(row.Participants),
		CreatedAt:    row.CreatedAt,
	}
}
