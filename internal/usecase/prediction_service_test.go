package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/pool"
	"github.com/arieljmnz/quiniela-backend/internal/domain/prediction"
	"github.com/arieljmnz/quiniela-backend/internal/platform/logging"
)

func openPool(deadline time.Time, participants ...string) pool.Pool {
	return pool.Pool{
		ID:           "q-1",
		Title:        "Jornada 8",
		Status:       pool.StatusOpen,
		MatchIDs:     []string{"match-1", "match-2"},
		DeadlineAt:   deadline,
		Participants: participants,
	}
}

func newPredictionService(pools *stubPoolRepo, predictions *stubPredictionRepo, now time.Time) *PredictionService {
	svc := NewPredictionService(predictions, pools, &staticIDGenerator{}, logging.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestSubmitPrediction(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	pools := newStubPoolRepo()
	mustCreatePool(t, pools, openPool(now.Add(time.Hour), "u-1"))
	predictions := newStubPredictionRepo()
	svc := newPredictionService(pools, predictions, now)

	submitted, err := svc.SubmitPrediction(context.Background(), memberPrincipal("u-1"), SubmitPredictionInput{
		PoolID: "q-1", MatchID: "match-1", HomeScore: 2, AwayScore: 1,
	})
	if err != nil {
		t.Fatalf("submit prediction: %v", err)
	}
	if submitted.ID == "" {
		t.Fatalf("expected an assigned prediction id")
	}
	if submitted.Points != 0 || submitted.Scored {
		t.Fatalf("expected new prediction unscored, got %+v", submitted)
	}

	// resubmission overwrites the earlier pick and keeps its id
	replaced, err := svc.SubmitPrediction(context.Background(), memberPrincipal("u-1"), SubmitPredictionInput{
		PoolID: "q-1", MatchID: "match-1", HomeScore: 0, AwayScore: 0,
	})
	if err != nil {
		t.Fatalf("resubmit prediction: %v", err)
	}
	if replaced.ID != submitted.ID {
		t.Fatalf("expected resubmission to keep id %q, got %q", submitted.ID, replaced.ID)
	}
	stored, _, _ := predictions.GetByUserPoolMatch(context.Background(), "u-1", "q-1", "match-1")
	if stored.HomeScore != 0 || stored.AwayScore != 0 {
		t.Fatalf("expected stored pick replaced, got %+v", stored)
	}
}

func TestSubmitPredictionKeepsPicksPerPool(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	pools := newStubPoolRepo()
	first := openPool(now.Add(time.Hour), "u-1")
	second := openPool(now.Add(time.Hour), "u-1")
	second.ID = "q-2"
	second.Title = "Jornada 8 amigos"
	mustCreatePool(t, pools, first)
	mustCreatePool(t, pools, second)
	predictions := newStubPredictionRepo()
	svc := newPredictionService(pools, predictions, now)

	// same match in both pools, each pool holds its own pick
	if _, err := svc.SubmitPrediction(context.Background(), memberPrincipal("u-1"), SubmitPredictionInput{
		PoolID: "q-1", MatchID: "match-1", HomeScore: 2, AwayScore: 0,
	}); err != nil {
		t.Fatalf("submit into first pool: %v", err)
	}
	if _, err := svc.SubmitPrediction(context.Background(), memberPrincipal("u-1"), SubmitPredictionInput{
		PoolID: "q-2", MatchID: "match-1", HomeScore: 1, AwayScore: 1,
	}); err != nil {
		t.Fatalf("submit into second pool: %v", err)
	}

	inFirst, ok, err := predictions.GetByUserPoolMatch(context.Background(), "u-1", "q-1", "match-1")
	if err != nil || !ok {
		t.Fatalf("expected pick in first pool, ok=%v err=%v", ok, err)
	}
	if inFirst.HomeScore != 2 || inFirst.AwayScore != 0 {
		t.Fatalf("first pool pick changed, got %+v", inFirst)
	}
	inSecond, ok, err := predictions.GetByUserPoolMatch(context.Background(), "u-1", "q-2", "match-1")
	if err != nil || !ok {
		t.Fatalf("expected pick in second pool, ok=%v err=%v", ok, err)
	}
	if inSecond.HomeScore != 1 || inSecond.AwayScore != 1 {
		t.Fatalf("second pool pick wrong, got %+v", inSecond)
	}
	if inFirst.ID == inSecond.ID {
		t.Fatalf("expected distinct predictions per pool, both got id %q", inFirst.ID)
	}
}

func TestSubmitPredictionGuards(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)

	t.Run("after deadline", func(t *testing.T) {
		t.Parallel()
		pools := newStubPoolRepo()
		mustCreatePool(t, pools, openPool(now.Add(-time.Minute), "u-1"))
		svc := newPredictionService(pools, newStubPredictionRepo(), now)
		_, err := svc.SubmitPrediction(context.Background(), memberPrincipal("u-1"), SubmitPredictionInput{PoolID: "q-1", MatchID: "match-1", HomeScore: 1, AwayScore: 0})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput got %v", err)
		}
	})

	t.Run("not a participant", func(t *testing.T) {
		t.Parallel()
		pools := newStubPoolRepo()
		mustCreatePool(t, pools, openPool(now.Add(time.Hour)))
		svc := newPredictionService(pools, newStubPredictionRepo(), now)
		_, err := svc.SubmitPrediction(context.Background(), memberPrincipal("u-1"), SubmitPredictionInput{PoolID: "q-1", MatchID: "match-1", HomeScore: 1, AwayScore: 0})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized got %v", err)
		}
	})

	t.Run("match outside pool", func(t *testing.T) {
		t.Parallel()
		pools := newStubPoolRepo()
		mustCreatePool(t, pools, openPool(now.Add(time.Hour), "u-1"))
		svc := newPredictionService(pools, newStubPredictionRepo(), now)
		_, err := svc.SubmitPrediction(context.Background(), memberPrincipal("u-1"), SubmitPredictionInput{PoolID: "q-1", MatchID: "stranger", HomeScore: 1, AwayScore: 0})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput got %v", err)
		}
	})

	t.Run("negative score", func(t *testing.T) {
		t.Parallel()
		pools := newStubPoolRepo()
		mustCreatePool(t, pools, openPool(now.Add(time.Hour), "u-1"))
		svc := newPredictionService(pools, newStubPredictionRepo(), now)
		_, err := svc.SubmitPrediction(context.Background(), memberPrincipal("u-1"), SubmitPredictionInput{PoolID: "q-1", MatchID: "match-1", HomeScore: -1, AwayScore: 0})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput got %v", err)
		}
	})

	t.Run("unknown pool", func(t *testing.T) {
		t.Parallel()
		svc := newPredictionService(newStubPoolRepo(), newStubPredictionRepo(), now)
		_, err := svc.SubmitPrediction(context.Background(), memberPrincipal("u-1"), SubmitPredictionInput{PoolID: "ghost", MatchID: "match-1", HomeScore: 1, AwayScore: 0})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound got %v", err)
		}
	})
}

func TestPoolPredictionsHiddenBeforeDeadline(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	pools := newStubPoolRepo()
	mustCreatePool(t, pools, openPool(now.Add(time.Hour), "u-1", "u-2"))
	predictions := newStubPredictionRepo()
	mustUpsert(t, predictions, prediction.Prediction{ID: "p-1", UserID: "u-1", PoolID: "q-1", MatchID: "match-1", HomeScore: 1})
	mustUpsert(t, predictions, prediction.Prediction{ID: "p-2", UserID: "u-2", PoolID: "q-1", MatchID: "match-1", HomeScore: 2})

	svc := newPredictionService(pools, predictions, now)

	visible, err := svc.PoolPredictions(context.Background(), memberPrincipal("u-1"), "q-1")
	if err != nil {
		t.Fatalf("pool predictions: %v", err)
	}
	if len(visible) != 1 || visible[0].UserID != "u-1" {
		t.Fatalf("expected only own picks before deadline, got %+v", visible)
	}

	svc.now = func() time.Time { return now.Add(2 * time.Hour) }
	visible, err = svc.PoolPredictions(context.Background(), memberPrincipal("u-1"), "q-1")
	if err != nil {
		t.Fatalf("pool predictions after deadline: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("expected every pick after the deadline, got %d", len(visible))
	}
}
