package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/payment"
	"github.com/arieljmnz/quiniela-backend/internal/domain/pool"
	"github.com/arieljmnz/quiniela-backend/internal/domain/prediction"
	"github.com/arieljmnz/quiniela-backend/internal/domain/user"
	"github.com/arieljmnz/quiniela-backend/internal/platform/cache"
	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users []user.User
}

func (s *stubUserRepo) List(context.Context) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]user.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			return u, true, nil
		}
	}
	return user.User{}, false, nil
}

func newStatsService(users *stubUserRepo, pools *stubPoolRepo, predictions *stubPredictionRepo) *StatsService {
	return NewStatsService(users, pools, predictions, newStubPaymentRepo(), cache.NewStore(time.Hour), logging.NewNop())
}

func scoredPrediction(id, userID, poolID, matchID string, points int, at time.Time) prediction.Prediction {
	return prediction.Prediction{
		ID: id, UserID: userID, PoolID: poolID, MatchID: matchID,
		Points: points, Scored: true, CreatedAt: at,
	}
}

func TestGlobalStatsRanksWithTies(t *testing.T) {
	t.Parallel()

	users := &stubUserRepo{users: []user.User{
		{ID: "u-admin", Name: "Organizer", Role: user.RoleAdmin},
		{ID: "u-1", Name: "Ariel"},
		{ID: "u-2", Name: "Bruno"},
		{ID: "u-3", Name: "Carla"},
	}}
	pools := newStubPoolRepo()
	predictions := newStubPredictionRepo()
	at := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	mustUpsert(t, predictions, scoredPrediction("p-1", "u-1", "q-1", "m-1", 5, at))
	mustUpsert(t, predictions, scoredPrediction("p-2", "u-1", "q-1", "m-2", 5, at))
	mustUpsert(t, predictions, scoredPrediction("p-3", "u-2", "q-1", "m-1", 5, at))
	mustUpsert(t, predictions, scoredPrediction("p-4", "u-2", "q-1", "m-2", 5, at))
	mustUpsert(t, predictions, scoredPrediction("p-5", "u-3", "q-1", "m-1", 2, at))

	svc := newStatsService(users, pools, predictions)
	stats, err := svc.GlobalStats(context.Background())
	if err != nil {
		t.Fatalf("global stats: %v", err)
	}
	if stats.TotalUsers != 3 || stats.TotalPredictions != 5 {
		t.Fatalf("unexpected totals %+v", stats)
	}
	if len(stats.Leaderboard) != 3 {
		t.Fatalf("expected the admin excluded from the leaderboard, got %d entries", len(stats.Leaderboard))
	}
	if stats.Leaderboard[0].Rank != 1 || stats.Leaderboard[1].Rank != 1 {
		t.Fatalf("expected shared rank 1 for the tie, got %d and %d", stats.Leaderboard[0].Rank, stats.Leaderboard[1].Rank)
	}
	if stats.Leaderboard[2].Rank != 3 {
		t.Fatalf("expected rank 3 after a two-way tie, got %d", stats.Leaderboard[2].Rank)
	}
	if len(stats.Leaders) != 2 {
		t.Fatalf("expected 2 tied leaders got %v", stats.Leaders)
	}
	if stats.Leaderboard[0].ExactHits != 2 {
		t.Fatalf("expected 2 exact hits for the top entry got %d", stats.Leaderboard[0].ExactHits)
	}
}

func TestGlobalStatsEmptyIsZeroNotNaN(t *testing.T) {
	t.Parallel()

	svc := newStatsService(&stubUserRepo{}, newStubPoolRepo(), newStubPredictionRepo())
	stats, err := svc.GlobalStats(context.Background())
	if err != nil {
		t.Fatalf("global stats: %v", err)
	}
	if stats.AveragePoints != 0 {
		t.Fatalf("expected zero average on empty data, got %f", stats.AveragePoints)
	}
	if len(stats.Leaders) != 0 {
		t.Fatalf("expected no leaders, got %v", stats.Leaders)
	}
}

func TestPoolsHistoryNamesTiedWinners(t *testing.T) {
	t.Parallel()

	users := &stubUserRepo{users: []user.User{
		{ID: "u-1", Name: "Ariel"},
		{ID: "u-2", Name: "Bruno"},
	}}
	pools := newStubPoolRepo()
	created := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	mustCreatePool(t, pools, pool.Pool{ID: "q-1", Title: "Jornada 7", Status: pool.StatusFinished, Participants: []string{"u-1", "u-2"}, CreatedAt: created})
	mustCreatePool(t, pools, pool.Pool{ID: "q-2", Title: "Jornada 8", Status: pool.StatusOpen, CreatedAt: created.Add(time.Hour)})

	predictions := newStubPredictionRepo()
	mustUpsert(t, predictions, scoredPrediction("p-1", "u-1", "q-1", "m-1", 5, created))
	mustUpsert(t, predictions, scoredPrediction("p-2", "u-2", "q-1", "m-2", 5, created))

	svc := newStatsService(users, pools, predictions)
	history, err := svc.PoolsHistory(context.Background())
	if err != nil {
		t.Fatalf("pools history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries got %d", len(history))
	}
	if history[0].PoolID != "q-2" {
		t.Fatalf("expected newest pool first, got %q", history[0].PoolID)
	}
	if len(history[0].Winners) != 0 {
		t.Fatalf("expected open pool without winners, got %v", history[0].Winners)
	}
	winners := history[1].Winners
	if len(winners) != 2 {
		t.Fatalf("expected a two-way tie got %v", winners)
	}
	if history[1].TopScore != 5 {
		t.Fatalf("expected top score 5, got %d", history[1].TopScore)
	}
	if history[1].Predictions != 2 {
		t.Fatalf("expected 2 predictions recorded, got %d", history[1].Predictions)
	}
	if winners[0].Name != "Ariel" || winners[1].Name != "Bruno" {
		t.Fatalf("expected winners resolved to names, got %v", winners)
	}
}

func TestPoolsHistoryRanksEveryPool(t *testing.T) {
	t.Parallel()

	users := &stubUserRepo{users: []user.User{
		{ID: "u-1", Name: "Ariel"},
		{ID: "u-2", Name: "Bruno"},
	}}
	pools := newStubPoolRepo()
	created := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	mustCreatePool(t, pools, pool.Pool{ID: "q-open", Title: "Jornada 9", Status: pool.StatusOpen, Participants: []string{"u-1", "u-2"}, CreatedAt: created.Add(time.Hour)})
	mustCreatePool(t, pools, pool.Pool{ID: "q-empty", Title: "Jornada 10", Status: pool.StatusOpen, CreatedAt: created})

	predictions := newStubPredictionRepo()
	mustUpsert(t, predictions, scoredPrediction("p-1", "u-2", "q-open", "m-1", 5, created))
	mustUpsert(t, predictions, scoredPrediction("p-2", "u-2", "q-open", "m-2", 2, created))
	mustUpsert(t, predictions, scoredPrediction("p-3", "u-1", "q-open", "m-1", 3, created))
	// not scored yet, still counts as a submitted prediction
	mustUpsert(t, predictions, prediction.Prediction{ID: "p-4", UserID: "u-1", PoolID: "q-open", MatchID: "m-2", CreatedAt: created})

	svc := newStatsService(users, pools, predictions)
	history, err := svc.PoolsHistory(context.Background())
	if err != nil {
		t.Fatalf("pools history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries got %d", len(history))
	}

	open := history[0]
	if open.PoolID != "q-open" {
		t.Fatalf("expected q-open first, got %q", open.PoolID)
	}
	if open.Predictions != 4 {
		t.Fatalf("expected 4 predictions, got %d", open.Predictions)
	}
	if open.TopScore != 7 {
		t.Fatalf("expected top score 7, got %d", open.TopScore)
	}
	if len(open.Standings) != 2 {
		t.Fatalf("expected 2 ranked users, got %v", open.Standings)
	}
	first, second := open.Standings[0], open.Standings[1]
	if first.UserID != "u-2" || first.TotalPoints != 7 || first.ExactHits != 1 || first.Name != "Bruno" {
		t.Fatalf("unexpected leader %+v", first)
	}
	if second.UserID != "u-1" || second.TotalPoints != 3 || second.ExactHits != 0 {
		t.Fatalf("unexpected runner-up %+v", second)
	}
	if len(open.Winners) != 0 {
		t.Fatalf("expected no winners while the pool is open, got %v", open.Winners)
	}

	empty := history[1]
	if empty.PoolID != "q-empty" {
		t.Fatalf("expected q-empty second, got %q", empty.PoolID)
	}
	if empty.Predictions != 0 || empty.TopScore != 0 || len(empty.Standings) != 0 {
		t.Fatalf("expected an empty ranking with top score 0, got %+v", empty)
	}
}

func TestUserStatsHistogramAndMonthlyBuckets(t *testing.T) {
	t.Parallel()

	users := &stubUserRepo{users: []user.User{{ID: "u-1", Name: "Ariel"}}}
	predictions := newStubPredictionRepo()
	dec := time.Date(2025, 12, 14, 20, 0, 0, 0, time.UTC)
	jan := time.Date(2026, 1, 4, 20, 0, 0, 0, time.UTC)
	mustUpsert(t, predictions, scoredPrediction("p-1", "u-1", "q-1", "m-1", 5, dec))
	mustUpsert(t, predictions, scoredPrediction("p-2", "u-1", "q-1", "m-2", 2, dec))
	mustUpsert(t, predictions, scoredPrediction("p-3", "u-1", "q-2", "m-3", 2, jan))
	mustUpsert(t, predictions, prediction.Prediction{ID: "p-4", UserID: "u-1", PoolID: "q-2", MatchID: "m-4", CreatedAt: jan})

	svc := newStatsService(users, newStubPoolRepo(), predictions)
	stats, err := svc.UserStats(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("user stats: %v", err)
	}
	if stats.Predictions != 4 || stats.Scored != 3 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.TotalPoints != 9 || stats.ExactHits != 1 {
		t.Fatalf("unexpected points %+v", stats)
	}
	for _, value := range PointScale {
		if _, ok := stats.Histogram[value]; !ok {
			t.Fatalf("expected histogram bucket for %d points", value)
		}
	}
	if stats.Histogram[2] != 2 || stats.Histogram[5] != 1 || stats.Histogram[0] != 0 {
		t.Fatalf("unexpected histogram %v", stats.Histogram)
	}
	if len(stats.Monthly) != 2 {
		t.Fatalf("expected 2 monthly buckets got %d", len(stats.Monthly))
	}
	if stats.Monthly[0].Month != (MonthKey{Year: 2025, Month: time.December}) {
		t.Fatalf("expected December 2025 first, got %+v", stats.Monthly[0].Month)
	}
	if stats.Monthly[1].Month != (MonthKey{Year: 2026, Month: time.January}) {
		t.Fatalf("expected January 2026 second, got %+v", stats.Monthly[1].Month)
	}
	if stats.Monthly[1].Predictions != 2 || stats.Monthly[1].Points != 2 {
		t.Fatalf("unexpected January bucket %+v", stats.Monthly[1])
	}
}

func TestUserStatsAccuracyOverMixedResults(t *testing.T) {
	t.Parallel()

	users := &stubUserRepo{users: []user.User{{ID: "u-1", Name: "Ariel"}}}
	pools := newStubPoolRepo()
	created := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	mustCreatePool(t, pools, pool.Pool{ID: "q-1", Title: "Jornada 7", Status: pool.StatusFinished, Participants: []string{"u-1"}, CreatedAt: created})

	predictions := newStubPredictionRepo()
	mustUpsert(t, predictions, scoredPrediction("p-1", "u-1", "q-1", "m-1", 5, created))
	mustUpsert(t, predictions, scoredPrediction("p-2", "u-1", "q-1", "m-2", 3, created))
	mustUpsert(t, predictions, scoredPrediction("p-3", "u-1", "q-1", "m-3", 0, created))

	payments := newStubPaymentRepo()
	mustCreatePayment(t, payments, payment.Payment{ID: "pay-1", FromUser: "u-admin", ToUser: "u-1", Amount: 150, Status: payment.StatusPaid})
	mustCreatePayment(t, payments, payment.Payment{ID: "pay-2", FromUser: "u-1", ToUser: "u-admin", Amount: 100, Status: payment.StatusPaid})
	mustCreatePayment(t, payments, payment.Payment{ID: "pay-3", FromUser: "u-admin", ToUser: "u-1", Amount: 80, Status: payment.StatusPending})

	svc := NewStatsService(users, pools, predictions, payments, cache.NewStore(time.Hour), logging.NewNop())
	stats, err := svc.UserStats(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("user stats: %v", err)
	}
	if stats.TotalPoints != 8 || stats.CorrectHits != 2 || stats.ExactHits != 1 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if diff := stats.Accuracy - 200.0/3.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected accuracy 66.67, got %f", stats.Accuracy)
	}
	if stats.PoolsPlayed != 1 || stats.PoolsWon != 1 || stats.WinRate != 100 {
		t.Fatalf("unexpected pool record %+v", stats)
	}
	if stats.TotalWinnings != 150 {
		t.Fatalf("expected winnings to count only settled incoming payments, got %f", stats.TotalWinnings)
	}
	if stats.BestPool == nil || stats.BestPool.PoolID != "q-1" || stats.BestPool.Points != 8 {
		t.Fatalf("unexpected best pool %+v", stats.BestPool)
	}
	if stats.WorstPool == nil || stats.WorstPool.Points != 8 {
		t.Fatalf("expected the single pool to be both best and worst, got %+v", stats.WorstPool)
	}
}

func TestUserStatsUnknownUser(t *testing.T) {
	t.Parallel()

	svc := newStatsService(&stubUserRepo{}, newStubPoolRepo(), newStubPredictionRepo())
	if _, err := svc.UserStats(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestCompareUsers(t *testing.T) {
	t.Parallel()

	users := &stubUserRepo{users: []user.User{
		{ID: "u-1", Name: "Ariel"},
		{ID: "u-2", Name: "Bruno"},
	}}
	predictions := newStubPredictionRepo()
	at := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	mustUpsert(t, predictions, scoredPrediction("p-1", "u-1", "q-1", "m-1", 5, at))
	mustUpsert(t, predictions, scoredPrediction("p-2", "u-2", "q-1", "m-1", 2, at))
	mustUpsert(t, predictions, scoredPrediction("p-3", "u-2", "q-1", "m-2", 0, at))

	svc := newStatsService(users, newStubPoolRepo(), predictions)

	comparison, err := svc.CompareUsers(context.Background(), []string{"u-1", "u-2", "ghost"})
	if err != nil {
		t.Fatalf("compare users: %v", err)
	}
	if len(comparison.Users) != 2 {
		t.Fatalf("expected 2 resolved users got %d", len(comparison.Users))
	}
	if len(comparison.Skipped) != 1 || comparison.Skipped[0] != "ghost" {
		t.Fatalf("expected ghost skipped, got %v", comparison.Skipped)
	}
	if len(comparison.Metrics) != 5 {
		t.Fatalf("expected 5 metric rankings got %d", len(comparison.Metrics))
	}
	for _, m := range comparison.Metrics {
		if len(m.Ranking) != 2 {
			t.Fatalf("expected 2 entries in %s ranking got %d", m.Metric, len(m.Ranking))
		}
		switch m.Metric {
		case "totalPoints", "accuracy", "exactScores", "averagePoints":
			if m.Ranking[0].UserID != "u-1" {
				t.Fatalf("expected u-1 on top of %s, got %q", m.Metric, m.Ranking[0].UserID)
			}
		case "quinielasWon":
			if m.Ranking[0].UserID != "u-1" {
				t.Fatalf("expected tie on quinielasWon to keep input order, got %q", m.Ranking[0].UserID)
			}
		}
	}
	if top := comparison.Metrics[0].Ranking[0]; top.Value != 5 {
		t.Fatalf("expected totalPoints value 5 got %f", top.Value)
	}

	if _, err := svc.CompareUsers(context.Background(), []string{"u-1", "u-1"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a single distinct id got %v", err)
	}
}
