package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/pool"
	"github.com/arieljmnz/quiniela-backend/internal/domain/prediction"
	"github.com/arieljmnz/quiniela-backend/internal/domain/user"
	"github.com/arieljmnz/quiniela-backend/internal/platform/id"
	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
)

// PredictionService accepts score calls while the pool is open and keeps
// everyone else's picks hidden until the deadline.
type PredictionService struct {
	predictionRepo prediction.Repository
	poolRepo       pool.Repository
	ids            id.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewPredictionService(
	predictionRepo prediction.Repository,
	poolRepo pool.Repository,
	ids id.Generator,
	logger *logging.Logger,
) *PredictionService {
	if ids == nil {
		ids = id.NewRandomGenerator("pred")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{
		predictionRepo: predictionRepo,
		poolRepo:       poolRepo,
		ids:            ids,
		logger:         logger,
		now:            time.Now,
	}
}

type SubmitPredictionInput struct {
	PoolID    string
	MatchID   string
	HomeScore int
	AwayScore int
}

// SubmitPrediction stores or replaces the caller's pick for one match.
// Resubmitting before the deadline overwrites the earlier pick.
func (s *PredictionService) SubmitPrediction(ctx context.Context, principal user.Principal, input SubmitPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SubmitPrediction")
	defer span.End()

	poolID := strings.TrimSpace(input.PoolID)
	matchID := strings.TrimSpace(input.MatchID)
	if poolID == "" || matchID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: pool id and match id are required", ErrInvalidInput)
	}
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: predicted scores must not be negative", ErrInvalidInput)
	}

	p, found, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get pool %s: %w", poolID, err)
	}
	if !found {
		return prediction.Prediction{}, fmt.Errorf("%w: pool %s", ErrNotFound, poolID)
	}
	if pool.NormalizeStatus(p.Status) != pool.StatusOpen || p.DeadlinePassed(s.now()) {
		return prediction.Prediction{}, fmt.Errorf("%w: pool %s is no longer accepting predictions", ErrInvalidInput, poolID)
	}
	if !p.HasParticipant(principal.UserID) {
		return prediction.Prediction{}, fmt.Errorf("%w: join the quiniela before predicting", ErrUnauthorized)
	}
	if !containsID(p.MatchIDs, matchID) {
		return prediction.Prediction{}, fmt.Errorf("%w: match %s is not part of pool %s", ErrInvalidInput, matchID, poolID)
	}

	stored := prediction.Prediction{
		UserID:    principal.UserID,
		PoolID:    poolID,
		MatchID:   matchID,
		HomeScore: input.HomeScore,
		AwayScore: input.AwayScore,
		CreatedAt: s.now().UTC(),
	}
	existing, found, err := s.predictionRepo.GetByUserPoolMatch(ctx, principal.UserID, poolID, matchID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get existing prediction: %w", err)
	}
	if found {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		predictionID, err := s.ids.NewID()
		if err != nil {
			return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
		}
		stored.ID = predictionID
	}
	if err := s.predictionRepo.Upsert(ctx, stored); err != nil {
		return prediction.Prediction{}, fmt.Errorf("store prediction: %w", err)
	}
	s.logger.InfoContext(ctx, "prediction submitted",
		"pool_id", poolID, "match_id", matchID, "user_id", principal.UserID)
	return stored, nil
}

// PoolPredictions lists picks for a pool. Before the deadline the caller only
// sees their own picks.
func (s *PredictionService) PoolPredictions(ctx context.Context, principal user.Principal, poolID string) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.PoolPredictions")
	defer span.End()

	poolID = strings.TrimSpace(poolID)
	if poolID == "" {
		return nil, fmt.Errorf("%w: pool id is required", ErrInvalidInput)
	}
	p, found, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("get pool %s: %w", poolID, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: pool %s", ErrNotFound, poolID)
	}

	predictions, err := s.predictionRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("list predictions for pool %s: %w", poolID, err)
	}
	if !p.DeadlinePassed(s.now()) {
		own := predictions[:0]
		for _, item := range predictions {
			if item.UserID == principal.UserID {
				own = append(own, item)
			}
		}
		predictions = own
	}
	sort.SliceStable(predictions, func(i, j int) bool {
		if predictions[i].UserID != predictions[j].UserID {
			return predictions[i].UserID < predictions[j].UserID
		}
		return predictions[i].MatchID < predictions[j].MatchID
	})
	return predictions, nil
}

// UserPredictions lists every pick the user has placed, newest first.
func (s *PredictionService) UserPredictions(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.UserPredictions")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	predictions, err := s.predictionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list predictions for user %s: %w", userID, err)
	}
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].CreatedAt.After(predictions[j].CreatedAt)
	})
	return predictions, nil
}

func containsID(ids []string, target string) bool {
	for _, candidate := range ids {
		if candidate == target {
			return true
		}
	}
	return false
}
