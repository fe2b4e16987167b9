package httpapi

import (
	"context"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/pool"
	"github.com/arieljmnz/quiniela-backend/internal/usecase"
)

type matchDTO struct {
	ID        string `json:"id"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	League    string `json:"league"`
	KickoffAt string `json:"kickoffAt"`
	Status    string `json:"status"`
	HomeScore *int   `json:"homeScore"`
	AwayScore *int   `json:"awayScore"`
	Source    string `json:"source"`
}

type weeklyMatchesDTO struct {
	Matches []matchDTO                  `json:"matches"`
	Origin  string                      `json:"origin"`
	From    string                      `json:"from"`
	To      string                      `json:"to"`
	Leagues []usecase.LeagueFetchStatus `json:"leagues"`
}

type leagueGroupDTO struct {
	League  string     `json:"league"`
	Matches []matchDTO `json:"matches"`
}

type groupedMatchesDTO struct {
	Groups []leagueGroupDTO `json:"groups"`
	Origin string           `json:"origin"`
	From   string           `json:"from"`
	To     string           `json:"to"`
}

type poolDTO struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Week         int      `json:"week"`
	Year         int      `json:"year"`
	MatchIDs     []string `json:"matchIds"`
	EntryFee     float64  `json:"entryFee"`
	DeadlineAt   string   `json:"deadlineAt"`
	Status       string   `json:"status"`
	CreatedBy    string   `json:"createdBy"`
	Participants []string `json:"participants"`
	CreatedAt    string   `json:"createdAt"`
}

type poolDetailDTO struct {
	Pool    poolDTO    `json:"pool"`
	Matches []matchDTO `json:"matches"`
}

func poolToDTO(ctx context.Context, p pool.Pool) poolDTO {
	return poolDTO{
		ID:           p.ID,
		Title:        p.Title,
		Week:         p.Week,
		Year:         p.Year,
		MatchIDs:     p.MatchIDs,
		EntryFee:     p.EntryFee,
		DeadlineAt:   p.DeadlineAt.UTC().Format(time.RFC3339),
		Status:       p.Status,
		CreatedBy:    p.CreatedBy,
		Participants: p.Participants,
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
