package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/arieljmnz/quiniela-backend/internal/domain/user"
	"github.com/arieljmnz/quiniela-backend/internal/platform/cache"
	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
)

const defaultRefreshWorkers = 8

// RefreshService drops and rebuilds the stats caches so the first reader
// after a settled week does not pay the aggregation cost.
type RefreshService struct {
	stats    *StatsService
	userRepo user.Repository
	cache    *cache.Store
	logger   *logging.Logger
}

func NewRefreshService(stats *StatsService, userRepo user.Repository, cacheStore *cache.Store, logger *logging.Logger) *RefreshService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RefreshService{
		stats:    stats,
		userRepo: userRepo,
		cache:    cacheStore,
		logger:   logger,
	}
}

type RefreshStatsResult struct {
	UserCount    int   `json:"user_count"`
	SuccessCount int   `json:"success_count"`
	FailedCount  int   `json:"failed_count"`
	WorkerCount  int   `json:"worker_count"`
	DurationMs   int64 `json:"duration_ms"`
}

// RefreshStats invalidates every stats cache entry and rebuilds the global
// aggregates plus each user's breakdown on a bounded worker pool.
func (s *RefreshService) RefreshStats(ctx context.Context, maxWorkers int) (RefreshStatsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshService.RefreshStats")
	defer span.End()

	if maxWorkers <= 0 {
		maxWorkers = defaultRefreshWorkers
	}
	started := time.Now()

	s.cache.DeletePrefix(ctx, "stats")
	if _, err := s.stats.GlobalStats(ctx); err != nil {
		return RefreshStatsResult{}, fmt.Errorf("rebuild global stats: %w", err)
	}
	if _, err := s.stats.PoolsHistory(ctx); err != nil {
		return RefreshStatsResult{}, fmt.Errorf("rebuild pools history: %w", err)
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return RefreshStatsResult{}, fmt.Errorf("list users: %w", err)
	}
	if maxWorkers > len(users) && len(users) > 0 {
		maxWorkers = len(users)
	}

	result := RefreshStatsResult{UserCount: len(users), WorkerCount: maxWorkers}
	if len(users) == 0 {
		result.DurationMs = time.Since(started).Milliseconds()
		return result, nil
	}

	workers, err := ants.NewPool(maxWorkers)
	if err != nil {
		return RefreshStatsResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	var wg sync.WaitGroup
	var success, failed atomic.Int64
	for _, u := range users {
		u := u
		wg.Add(1)
		submitErr := workers.Submit(func() {
			defer wg.Done()
			if _, err := s.stats.UserStats(ctx, u.ID); err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "refresh user stats failed", "user_id", u.ID, "error", err)
				return
			}
			success.Add(1)
		})
		if submitErr != nil {
			wg.Done()
			failed.Add(1)
			s.logger.WarnContext(ctx, "submit refresh task failed", "user_id", u.ID, "error", submitErr)
		}
	}
	wg.Wait()

	result.SuccessCount = int(success.Load())
	result.FailedCount = int(failed.Load())
	result.DurationMs = time.Since(started).Milliseconds()
	s.logger.InfoContext(ctx, "stats caches rebuilt",
		"users", result.UserCount, "success", result.SuccessCount, "failed", result.FailedCount, "workers", result.WorkerCount)
	return result, nil
}
