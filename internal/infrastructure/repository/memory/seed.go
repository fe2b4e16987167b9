package memory

import (
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/match"
	"github.com/arieljmnz/quiniela-backend/internal/domain/payment"
	"github.com/arieljmnz/quiniela-backend/internal/domain/pool"
	"github.com/arieljmnz/quiniela-backend/internal/domain/prediction"
	"github.com/arieljmnz/quiniela-backend/internal/domain/user"
)

// SeedData is the demo dataset used when no database is configured: one
// finished quiniela with settled scores and one open quiniela waiting for
// picks.
type SeedData struct {
	Users       []user.User
	Matches     []match.Match
	Pools       []pool.Pool
	Predictions []prediction.Prediction
	Payments    []payment.Payment
}

func DefaultSeed(now time.Time) SeedData {
	now = now.UTC()
	lastWeek := now.AddDate(0, 0, -7)
	intp := func(v int) *int { return &v }

	users := []user.User{
		{ID: "user-admin", Name: "Ariel Jimenez", Email: "ariel@quiniela.mx", Role: user.RoleAdmin},
		{ID: "user-bruno", Name: "Bruno Diaz", Email: "bruno@quiniela.mx", Role: user.RoleUser},
		{ID: "user-carla", Name: "Carla Ortega", Email: "carla@quiniela.mx", Role: user.RoleUser},
		{ID: "user-diego", Name: "Diego Fuentes", Email: "diego@quiniela.mx", Role: user.RoleUser},
	}

	matches := []match.Match{
		{
			ID: "seed-m1", HomeTeam: "Club America", AwayTeam: "Chivas", League: "Liga MX",
			KickoffAt: lastWeek.Add(20 * time.Hour), Status: match.StatusFinished,
			HomeScore: intp(2), AwayScore: intp(1), Source: match.SourceManual,
		},
		{
			ID: "seed-m2", HomeTeam: "Cruz Azul", AwayTeam: "Pumas UNAM", League: "Liga MX",
			KickoffAt: lastWeek.Add(22 * time.Hour), Status: match.StatusFinished,
			HomeScore: intp(0), AwayScore: intp(0), Source: match.SourceManual,
		},
		{
			ID: "seed-m3", HomeTeam: "Monterrey", AwayTeam: "Tigres UANL", League: "Liga MX",
			KickoffAt: now.Add(48 * time.Hour), Status: match.StatusScheduled, Source: match.SourceManual,
		},
		{
			ID: "seed-m4", HomeTeam: "Toluca", AwayTeam: "Leon", League: "Liga MX",
			KickoffAt: now.Add(50 * time.Hour), Status: match.StatusScheduled, Source: match.SourceManual,
		},
	}

	deadlinePast := lastWeek.Add(18 * time.Hour)
	yearPast, weekPast := deadlinePast.ISOWeek()
	deadlineNext := now.Add(47 * time.Hour)
	yearNext, weekNext := deadlineNext.ISOWeek()

	pools := []pool.Pool{
		{
			ID: "seed-q1", Title: "Jornada pasada", Week: weekPast, Year: yearPast,
			MatchIDs: []string{"seed-m1", "seed-m2"}, EntryFee: 100,
			DeadlineAt: deadlinePast, Status: pool.StatusFinished, CreatedBy: "user-admin",
			Participants: []string{"user-bruno", "user-carla", "user-diego"},
			CreatedAt:    lastWeek,
		},
		{
			ID: "seed-q2", Title: "Jornada actual", Week: weekNext, Year: yearNext,
			MatchIDs: []string{"seed-m3", "seed-m4"}, EntryFee: 100,
			DeadlineAt: deadlineNext, Status: pool.StatusOpen, CreatedBy: "user-admin",
			Participants: []string{"user-bruno", "user-carla"},
			CreatedAt:    now.Add(-2 * time.Hour),
		},
	}

	predictions := []prediction.Prediction{
		{ID: "seed-p1", UserID: "user-bruno", PoolID: "seed-q1", MatchID: "seed-m1", HomeScore: 2, AwayScore: 1, Points: 5, Scored: true, CreatedAt: lastWeek},
		{ID: "seed-p2", UserID: "user-bruno", PoolID: "seed-q1", MatchID: "seed-m2", HomeScore: 1, AwayScore: 1, Points: 2, Scored: true, CreatedAt: lastWeek},
		{ID: "seed-p3", UserID: "user-carla", PoolID: "seed-q1", MatchID: "seed-m1", HomeScore: 1, AwayScore: 0, Points: 2, Scored: true, CreatedAt: lastWeek},
		{ID: "seed-p4", UserID: "user-carla", PoolID: "seed-q1", MatchID: "seed-m2", HomeScore: 0, AwayScore: 0, Points: 5, Scored: true, CreatedAt: lastWeek},
		{ID: "seed-p5", UserID: "user-diego", PoolID: "seed-q1", MatchID: "seed-m1", HomeScore: 0, AwayScore: 2, Points: 0, Scored: true, CreatedAt: lastWeek},
		{ID: "seed-p6", UserID: "user-bruno", PoolID: "seed-q2", MatchID: "seed-m3", HomeScore: 1, AwayScore: 1, CreatedAt: now.Add(-time.Hour)},
	}

	paidAt := lastWeek.Add(12 * time.Hour)
	payments := []payment.Payment{
		{ID: "seed-pay1", FromUser: "user-bruno", ToUser: "user-admin", PoolID: "seed-q1", Amount: 100, Reason: "entry fee for Jornada pasada", DueDate: deadlinePast, Status: payment.StatusPaid, PaidAt: &paidAt, Method: "transfer", CreatedAt: lastWeek},
		{ID: "seed-pay2", FromUser: "user-carla", ToUser: "user-admin", PoolID: "seed-q1", Amount: 100, Reason: "entry fee for Jornada pasada", DueDate: deadlinePast, Status: payment.StatusPaid, PaidAt: &paidAt, Method: "cash", CreatedAt: lastWeek},
		{ID: "seed-pay3", FromUser: "user-diego", ToUser: "user-admin", PoolID: "seed-q1", Amount: 100, Reason: "entry fee for Jornada pasada", DueDate: deadlinePast, Status: payment.StatusPending, CreatedAt: lastWeek},
		// Bruno and Carla tied at the top of seed-q1, so the prize splits.
		{ID: "seed-pay4a", FromUser: "user-admin", ToUser: "user-bruno", PoolID: "seed-q1", Amount: 150, Reason: "winnings for Jornada pasada", DueDate: deadlinePast.AddDate(0, 0, 7), Status: payment.StatusPending, CreatedAt: lastWeek.Add(26 * time.Hour)},
		{ID: "seed-pay4b", FromUser: "user-admin", ToUser: "user-carla", PoolID: "seed-q1", Amount: 150, Reason: "winnings for Jornada pasada", DueDate: deadlinePast.AddDate(0, 0, 7), Status: payment.StatusPending, CreatedAt: lastWeek.Add(26 * time.Hour)},
		{ID: "seed-pay5", FromUser: "user-bruno", ToUser: "user-admin", PoolID: "seed-q2", Amount: 100, Reason: "entry fee for Jornada actual", DueDate: deadlineNext, Status: payment.StatusPending, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "seed-pay6", FromUser: "user-carla", ToUser: "user-admin", PoolID: "seed-q2", Amount: 100, Reason: "entry fee for Jornada actual", DueDate: deadlineNext, Status: payment.StatusPending, CreatedAt: now.Add(-2 * time.Hour)},
	}

	return SeedData{
		Users:       users,
		Matches:     matches,
		Pools:       pools,
		Predictions: predictions,
		Payments:    payments,
	}
}
