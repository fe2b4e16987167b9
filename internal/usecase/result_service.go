package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/match"
	"github.com/arieljmnz/quiniela-backend/internal/domain/prediction"
	"github.com/arieljmnz/quiniela-backend/internal/domain/user"
	"github.com/arieljmnz/quiniela-backend/internal/platform/cache"
	"github.com/arieljmnz/quiniela-backend/internal/platform/id"
	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
)

// ResultService covers admin match curation: manual match entry and final
// scores, settling every prediction placed on the match.
type ResultService struct {
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	cache          *cache.Store
	ids            id.Generator
	logger         *logging.Logger
}

func NewResultService(
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	cacheStore *cache.Store,
	logger *logging.Logger,
) *ResultService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		cache:          cacheStore,
		ids:            id.NewRandomGenerator("m"),
		logger:         logger,
	}
}

type CreateManualMatchInput struct {
	HomeTeam  string
	AwayTeam  string
	League    string
	KickoffAt time.Time
}

// CreateManualMatch registers a match outside the provider feed so admins
// can build pools from competitions the feed does not cover.
func (s *ResultService) CreateManualMatch(ctx context.Context, principal user.Principal, input CreateManualMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.CreateManualMatch")
	defer span.End()

	if !principal.IsAdmin() {
		return match.Match{}, fmt.Errorf("%w: creating matches requires the admin role", ErrUnauthorized)
	}
	input.HomeTeam = strings.TrimSpace(input.HomeTeam)
	input.AwayTeam = strings.TrimSpace(input.AwayTeam)
	input.League = strings.TrimSpace(input.League)
	if input.HomeTeam == "" || input.AwayTeam == "" {
		return match.Match{}, fmt.Errorf("%w: both team names are required", ErrInvalidInput)
	}
	if input.League == "" {
		return match.Match{}, fmt.Errorf("%w: league is required", ErrInvalidInput)
	}
	if input.KickoffAt.IsZero() {
		return match.Match{}, fmt.Errorf("%w: kickoff time is required", ErrInvalidInput)
	}

	matchID, err := s.ids.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}
	m := match.Match{
		ID:        matchID,
		HomeTeam:  input.HomeTeam,
		AwayTeam:  input.AwayTeam,
		League:    input.League,
		KickoffAt: input.KickoffAt.UTC(),
		Status:    match.StatusScheduled,
		Source:    match.SourceManual,
	}
	if err := s.matchRepo.Create(ctx, m); err != nil {
		return match.Match{}, fmt.Errorf("create manual match: %w", err)
	}
	s.logger.InfoContext(ctx, "manual match created", "match_id", matchID, "league", m.League)
	return m, nil
}

type RecordResultInput struct {
	MatchID   string
	HomeScore int
	AwayScore int
}

type RecordResultOutput struct {
	Match             match.Match `json:"match"`
	ScoredPredictions int         `json:"scoredPredictions"`
}

// RecordResult stores a final score and awards points to every prediction on
// the match. Only admins may record results.
func (s *ResultService) RecordResult(ctx context.Context, principal user.Principal, input RecordResultInput) (RecordResultOutput, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.RecordResult")
	defer span.End()

	if !principal.IsAdmin() {
		return RecordResultOutput{}, fmt.Errorf("%w: recording results requires the admin role", ErrUnauthorized)
	}
	matchID := strings.TrimSpace(input.MatchID)
	if matchID == "" {
		return RecordResultOutput{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return RecordResultOutput{}, fmt.Errorf("%w: scores must not be negative", ErrInvalidInput)
	}

	m, found, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return RecordResultOutput{}, fmt.Errorf("get match %s: %w", matchID, err)
	}
	if !found {
		return RecordResultOutput{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}

	if err := s.matchRepo.RecordResult(ctx, matchID, input.HomeScore, input.AwayScore); err != nil {
		return RecordResultOutput{}, fmt.Errorf("record result for match %s: %w", matchID, err)
	}
	m.HomeScore = &input.HomeScore
	m.AwayScore = &input.AwayScore
	m.Status = match.StatusFinished

	predictions, err := s.predictionRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return RecordResultOutput{}, fmt.Errorf("list predictions for match %s: %w", matchID, err)
	}
	scored := 0
	for _, p := range predictions {
		points := PredictionPoints(p.HomeScore, p.AwayScore, input.HomeScore, input.AwayScore)
		if err := s.predictionRepo.SetPoints(ctx, p.ID, points); err != nil {
			return RecordResultOutput{}, fmt.Errorf("set points for prediction %s: %w", p.ID, err)
		}
		scored++
	}

	if s.cache != nil {
		s.cache.DeletePrefix(ctx, "stats")
	}
	s.logger.InfoContext(ctx, "match result recorded",
		"match_id", matchID,
		"home_score", input.HomeScore,
		"away_score", input.AwayScore,
		"scored_predictions", scored,
	)
	return RecordResultOutput{Match: m, ScoredPredictions: scored}, nil
}
