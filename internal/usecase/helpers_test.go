package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/match"
	"github.com/arieljmnz/quiniela-backend/internal/domain/payment"
	"github.com/arieljmnz/quiniela-backend/internal/domain/prediction"
)

func seedMatch(t *testing.T, repo *stubMatchRepo, matchID string) {
	t.Helper()
	err := repo.Create(context.Background(), match.Match{
		ID:        matchID,
		HomeTeam:  "Club America",
		AwayTeam:  "Chivas",
		League:    "Liga MX",
		KickoffAt: time.Date(2025, 9, 13, 21, 0, 0, 0, time.UTC),
		Status:    match.StatusScheduled,
		Source:    match.SourceManual,
	})
	if err != nil {
		t.Fatalf("seed match %s: %v", matchID, err)
	}
}

func mustUpsert(t *testing.T, repo *stubPredictionRepo, p prediction.Prediction) {
	t.Helper()
	if err := repo.Upsert(context.Background(), p); err != nil {
		t.Fatalf("seed prediction %s: %v", p.ID, err)
	}
}

func mustCreatePayment(t *testing.T, repo *stubPaymentRepo, p payment.Payment) {
	t.Helper()
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed payment %s: %v", p.ID, err)
	}
}
