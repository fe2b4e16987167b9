package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/match"
	"github.com/arieljmnz/quiniela-backend/internal/domain/payment"
	"github.com/arieljmnz/quiniela-backend/internal/domain/pool"
	"github.com/arieljmnz/quiniela-backend/internal/domain/user"
	"github.com/arieljmnz/quiniela-backend/internal/platform/id"
	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
)

// PoolService manages the weekly quiniela lifecycle. Status transitions only
// ever move forward: open pools close once their deadline passes and closed
// pools finish once every match has a final score. Both transitions are
// applied lazily on read.
type PoolService struct {
	poolRepo    pool.Repository
	matchRepo   match.Repository
	paymentRepo payment.Repository
	ids         id.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewPoolService(
	poolRepo pool.Repository,
	matchRepo match.Repository,
	paymentRepo payment.Repository,
	ids id.Generator,
	logger *logging.Logger,
) *PoolService {
	if ids == nil {
		ids = id.NewRandomGenerator("q")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PoolService{
		poolRepo:    poolRepo,
		matchRepo:   matchRepo,
		paymentRepo: paymentRepo,
		ids:         ids,
		logger:      logger,
		now:         time.Now,
	}
}

type CreatePoolInput struct {
	Title      string
	MatchIDs   []string
	EntryFee   float64
	DeadlineAt time.Time
}

func (s *PoolService) CreatePool(ctx context.Context, principal user.Principal, input CreatePoolInput) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.CreatePool")
	defer span.End()

	if !principal.IsAdmin() {
		return pool.Pool{}, fmt.Errorf("%w: creating quinielas requires the admin role", ErrUnauthorized)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return pool.Pool{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(input.MatchIDs) == 0 {
		return pool.Pool{}, fmt.Errorf("%w: at least one match is required", ErrInvalidInput)
	}
	if input.EntryFee < 0 {
		return pool.Pool{}, fmt.Errorf("%w: entry fee must not be negative", ErrInvalidInput)
	}
	if input.DeadlineAt.IsZero() {
		return pool.Pool{}, fmt.Errorf("%w: deadline is required", ErrInvalidInput)
	}

	matchIDs := make([]string, 0, len(input.MatchIDs))
	seen := make(map[string]struct{}, len(input.MatchIDs))
	for _, matchID := range input.MatchIDs {
		matchID = strings.TrimSpace(matchID)
		if matchID == "" {
			return pool.Pool{}, fmt.Errorf("%w: match ids must not be blank", ErrInvalidInput)
		}
		if _, dup := seen[matchID]; dup {
			continue
		}
		seen[matchID] = struct{}{}
		matchIDs = append(matchIDs, matchID)
	}
	found, err := s.matchRepo.ListByIDs(ctx, matchIDs)
	if err != nil {
		return pool.Pool{}, fmt.Errorf("resolve pool matches: %w", err)
	}
	if len(found) != len(matchIDs) {
		return pool.Pool{}, fmt.Errorf("%w: one or more match ids do not exist", ErrNotFound)
	}

	poolID, err := s.ids.NewID()
	if err != nil {
		return pool.Pool{}, fmt.Errorf("generate pool id: %w", err)
	}
	now := s.now().UTC()
	year, week := input.DeadlineAt.UTC().ISOWeek()
	created := pool.Pool{
		ID:         poolID,
		Title:      title,
		Week:       week,
		Year:       year,
		MatchIDs:   matchIDs,
		EntryFee:   input.EntryFee,
		DeadlineAt: input.DeadlineAt.UTC(),
		Status:     pool.StatusOpen,
		CreatedBy:  principal.UserID,
		CreatedAt:  now,
	}
	if err := s.poolRepo.Create(ctx, created); err != nil {
		return pool.Pool{}, fmt.Errorf("create pool: %w", err)
	}
	s.logger.InfoContext(ctx, "quiniela created", "pool_id", created.ID, "week", week, "year", year, "matches", len(matchIDs))
	return created, nil
}

// ListPools returns every pool newest first with lifecycle transitions
// applied.
func (s *PoolService) ListPools(ctx context.Context) ([]pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.ListPools")
	defer span.End()

	pools, err := s.poolRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	for idx := range pools {
		refreshed, err := s.refreshStatus(ctx, pools[idx])
		if err != nil {
			return nil, err
		}
		pools[idx] = refreshed
	}
	sort.SliceStable(pools, func(i, j int) bool {
		return pools[i].CreatedAt.After(pools[j].CreatedAt)
	})
	return pools, nil
}

type PoolDetail struct {
	Pool    pool.Pool     `json:"pool"`
	Matches []match.Match `json:"matches"`
}

func (s *PoolService) GetPool(ctx context.Context, poolID string) (PoolDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.GetPool")
	defer span.End()

	poolID = strings.TrimSpace(poolID)
	if poolID == "" {
		return PoolDetail{}, fmt.Errorf("%w: pool id is required", ErrInvalidInput)
	}
	p, found, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return PoolDetail{}, fmt.Errorf("get pool %s: %w", poolID, err)
	}
	if !found {
		return PoolDetail{}, fmt.Errorf("%w: pool %s", ErrNotFound, poolID)
	}
	p, err = s.refreshStatus(ctx, p)
	if err != nil {
		return PoolDetail{}, err
	}
	matches, err := s.matchRepo.ListByIDs(ctx, p.MatchIDs)
	if err != nil {
		return PoolDetail{}, fmt.Errorf("list pool matches: %w", err)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].KickoffAt.Before(matches[j].KickoffAt)
	})
	return PoolDetail{Pool: p, Matches: matches}, nil
}

// JoinPool registers the caller as a participant and opens a pending entry
// fee due at the pool deadline.
func (s *PoolService) JoinPool(ctx context.Context, principal user.Principal, poolID string) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.JoinPool")
	defer span.End()

	poolID = strings.TrimSpace(poolID)
	if poolID == "" {
		return pool.Pool{}, fmt.Errorf("%w: pool id is required", ErrInvalidInput)
	}
	p, found, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return pool.Pool{}, fmt.Errorf("get pool %s: %w", poolID, err)
	}
	if !found {
		return pool.Pool{}, fmt.Errorf("%w: pool %s", ErrNotFound, poolID)
	}
	p, err = s.refreshStatus(ctx, p)
	if err != nil {
		return pool.Pool{}, err
	}
	if p.Status != pool.StatusOpen {
		return pool.Pool{}, fmt.Errorf("%w: pool %s is %s", ErrInvalidInput, poolID, p.Status)
	}
	if p.HasParticipant(principal.UserID) {
		return p, nil
	}

	if err := s.poolRepo.AddParticipant(ctx, poolID, principal.UserID); err != nil {
		return pool.Pool{}, fmt.Errorf("add participant: %w", err)
	}
	p.Participants = append(p.Participants, principal.UserID)

	if p.EntryFee > 0 && s.paymentRepo != nil {
		paymentID, err := s.ids.NewID()
		if err != nil {
			return pool.Pool{}, fmt.Errorf("generate payment id: %w", err)
		}
		fee := payment.Payment{
			ID:        paymentID,
			FromUser:  principal.UserID,
			ToUser:    p.CreatedBy,
			PoolID:    poolID,
			Amount:    p.EntryFee,
			Reason:    fmt.Sprintf("entry fee for %s", p.Title),
			DueDate:   p.DeadlineAt,
			Status:    payment.StatusPending,
			CreatedAt: s.now().UTC(),
		}
		if err := s.paymentRepo.Create(ctx, fee); err != nil {
			return pool.Pool{}, fmt.Errorf("create entry fee payment: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "user joined quiniela", "pool_id", poolID, "user_id", principal.UserID)
	return p, nil
}

// ClosePool forces an open pool closed ahead of its deadline. Admin only.
func (s *PoolService) ClosePool(ctx context.Context, principal user.Principal, poolID string) (pool.Pool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PoolService.ClosePool")
	defer span.End()

	if !principal.IsAdmin() {
		return pool.Pool{}, fmt.Errorf("%w: closing quinielas requires the admin role", ErrUnauthorized)
	}
	poolID = strings.TrimSpace(poolID)
	p, found, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return pool.Pool{}, fmt.Errorf("get pool %s: %w", poolID, err)
	}
	if !found {
		return pool.Pool{}, fmt.Errorf("%w: pool %s", ErrNotFound, poolID)
	}
	if !pool.CanTransition(p.Status, pool.StatusClosed) {
		return pool.Pool{}, fmt.Errorf("%w: pool %s cannot move from %s to %s", ErrInvalidInput, poolID, p.Status, pool.StatusClosed)
	}
	if err := s.poolRepo.UpdateStatus(ctx, poolID, pool.StatusClosed); err != nil {
		return pool.Pool{}, fmt.Errorf("close pool %s: %w", poolID, err)
	}
	p.Status = pool.StatusClosed
	return p, nil
}

// refreshStatus applies the lazy lifecycle transitions and persists any move.
func (s *PoolService) refreshStatus(ctx context.Context, p pool.Pool) (pool.Pool, error) {
	p.Status = pool.NormalizeStatus(p.Status)

	if p.Status == pool.StatusOpen && p.DeadlinePassed(s.now()) {
		if err := s.poolRepo.UpdateStatus(ctx, p.ID, pool.StatusClosed); err != nil {
			return pool.Pool{}, fmt.Errorf("close pool %s past deadline: %w", p.ID, err)
		}
		p.Status = pool.StatusClosed
	}

	if p.Status == pool.StatusClosed && len(p.MatchIDs) > 0 {
		matches, err := s.matchRepo.ListByIDs(ctx, p.MatchIDs)
		if err != nil {
			return pool.Pool{}, fmt.Errorf("list pool matches: %w", err)
		}
		if len(matches) == len(p.MatchIDs) && allFinished(matches) {
			if err := s.poolRepo.UpdateStatus(ctx, p.ID, pool.StatusFinished); err != nil {
				return pool.Pool{}, fmt.Errorf("finish pool %s: %w", p.ID, err)
			}
			p.Status = pool.StatusFinished
		}
	}
	return p, nil
}

func allFinished(matches []match.Match) bool {
	for _, m := range matches {
		if !m.HasResult() {
			return false
		}
	}
	return true
}
