package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/user"
	"github.com/arieljmnz/quiniela-backend/internal/platform/cache"
	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
)

func TestRefreshStatsWarmsEveryUser(t *testing.T) {
	t.Parallel()

	users := &stubUserRepo{users: []user.User{
		{ID: "u-1", Name: "Ariel"},
		{ID: "u-2", Name: "Bruno"},
		{ID: "u-3", Name: "Carla"},
	}}
	store := cache.NewStore(time.Hour)
	stats := NewStatsService(users, newStubPoolRepo(), newStubPredictionRepo(), newStubPaymentRepo(), store, logging.NewNop())
	svc := NewRefreshService(stats, users, store, logging.NewNop())

	result, err := svc.RefreshStats(context.Background(), 2)
	if err != nil {
		t.Fatalf("refresh stats: %v", err)
	}
	if result.UserCount != 3 || result.SuccessCount != 3 || result.FailedCount != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.WorkerCount != 2 {
		t.Fatalf("expected 2 workers got %d", result.WorkerCount)
	}

	for _, userID := range []string{"u-1", "u-2", "u-3"} {
		if _, ok := store.Get(context.Background(), cache.Key("stats", "user", userID)); !ok {
			t.Fatalf("expected warmed cache for %s", userID)
		}
	}
	if _, ok := store.Get(context.Background(), cache.Key("stats", "global")); !ok {
		t.Fatalf("expected warmed global stats cache")
	}
}

func TestRefreshStatsEmptyUserSet(t *testing.T) {
	t.Parallel()

	users := &stubUserRepo{}
	store := cache.NewStore(time.Hour)
	stats := NewStatsService(users, newStubPoolRepo(), newStubPredictionRepo(), newStubPaymentRepo(), store, logging.NewNop())
	svc := NewRefreshService(stats, users, store, logging.NewNop())

	result, err := svc.RefreshStats(context.Background(), 0)
	if err != nil {
		t.Fatalf("refresh stats: %v", err)
	}
	if result.UserCount != 0 || result.SuccessCount != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}
