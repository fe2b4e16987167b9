package apifootball

import (
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/match"
)

type sampleFixture struct {
	id        string
	home      string
	away      string
	league    string
	dayOffset int
	hour      int
}

var sampleFixtures = []sampleFixture{
	{id: "sample-ame-chi", home: "Club America", away: "Chivas", league: "Liga MX", dayOffset: 5, hour: 21},
	{id: "sample-cru-pum", home: "Cruz Azul", away: "Pumas UNAM", league: "Liga MX", dayOffset: 5, hour: 19},
	{id: "sample-mty-tig", home: "Monterrey", away: "Tigres UANL", league: "Liga MX", dayOffset: 6, hour: 20},
	{id: "sample-tol-leo", home: "Toluca", away: "Leon", league: "Liga MX", dayOffset: 4, hour: 19},
	{id: "sample-ars-liv", home: "Arsenal", away: "Liverpool", league: "Premier League", dayOffset: 5, hour: 15},
	{id: "sample-rma-bar", home: "Real Madrid", away: "Barcelona", league: "La Liga", dayOffset: 6, hour: 18},
}

// SampleMatches returns the static fallback fixtures placed inside the week
// containing now, so a pool built from them still has future kickoffs.
func SampleMatches(now time.Time) []match.Match {
	now = now.UTC()
	offset := int(now.Weekday()) - 1
	if now.Weekday() == time.Sunday {
		offset = 6
	}
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -offset)

	out := make([]match.Match, 0, len(sampleFixtures))
	for _, f := range sampleFixtures {
		out = append(out, match.Match{
			ID:        f.id,
			HomeTeam:  f.home,
			AwayTeam:  f.away,
			League:    f.league,
			KickoffAt: monday.AddDate(0, 0, f.dayOffset).Add(time.Duration(f.hour) * time.Hour),
			Status:    match.StatusScheduled,
			Source:    match.SourceSample,
		})
	}
	return out
}
