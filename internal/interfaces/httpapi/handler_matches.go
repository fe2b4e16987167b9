package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/domain/match"
	"github.com/arieljmnz/quiniela-backend/internal/usecase"
)

// weekOffsetFromRequest reads the optional ?offset= query parameter; 0 is
// the week containing today.
func weekOffsetFromRequest(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("offset"))
	if raw == "" {
		return 0, nil
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("%w: offset must be a non-negative integer", usecase.ErrInvalidInput)
	}
	return offset, nil
}

func (h *Handler) GetWeeklyMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeeklyMatches")
	defer span.End()

	offset, err := weekOffsetFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.ingestionService.WeeklyMatches(ctx, offset)
	if err != nil {
		h.logger.WarnContext(ctx, "get weekly matches failed", "offset", offset, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchDTO, 0, len(result.Matches))
	for _, m := range result.Matches {
		items = append(items, matchToDTO(ctx, m))
	}

	writeSuccess(ctx, w, http.StatusOK, weeklyMatchesDTO{
		Matches: items,
		Origin:  result.Origin,
		From:    result.From.Format("2006-01-02"),
		To:      result.To.Format("2006-01-02"),
		Leagues: result.Leagues,
	})
}

func (h *Handler) GetWeeklyMatchesGrouped(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeeklyMatchesGrouped")
	defer span.End()

	offset, err := weekOffsetFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.ingestionService.WeeklyMatches(ctx, offset)
	if err != nil {
		h.logger.WarnContext(ctx, "get weekly matches failed", "offset", offset, "error", err)
		writeError(ctx, w, err)
		return
	}

	groups := h.ingestionService.GroupByLeague(result.Matches)
	items := make([]leagueGroupDTO, 0, len(groups))
	for _, g := range groups {
		matches := make([]matchDTO, 0, len(g.Matches))
		for _, m := range g.Matches {
			matches = append(matches, matchToDTO(ctx, m))
		}
		items = append(items, leagueGroupDTO{League: g.League, Matches: matches})
	}

	writeSuccess(ctx, w, http.StatusOK, groupedMatchesDTO{
		Groups: items,
		Origin: result.Origin,
		From:   result.From.Format("2006-01-02"),
		To:     result.To.Format("2006-01-02"),
	})
}

func (h *Handler) GetProviderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetProviderStatus")
	defer span.End()

	status := h.ingestionService.ProviderStatus(ctx)
	writeSuccess(ctx, w, http.StatusOK, status)
}

type createMatchRequest struct {
	HomeTeam  string `json:"homeTeam" validate:"required,max=80"`
	AwayTeam  string `json:"awayTeam" validate:"required,max=80"`
	League    string `json:"league" validate:"required,max=80"`
	KickoffAt string `json:"kickoffAt" validate:"required"`
}

// CreateManualMatch registers a match outside the provider feed. Admin only,
// enforced in the usecase layer.
func (h *Handler) CreateManualMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateManualMatch")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createMatchRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	kickoffAt, err := time.Parse(time.RFC3339, req.KickoffAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: kickoffAt must be RFC3339", usecase.ErrInvalidInput))
		return
	}

	created, err := h.resultService.CreateManualMatch(ctx, principal, usecase.CreateManualMatchInput{
		HomeTeam:  req.HomeTeam,
		AwayTeam:  req.AwayTeam,
		League:    req.League,
		KickoffAt: kickoffAt,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create manual match failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(ctx, created))
}

func matchToDTO(ctx context.Context, m match.Match) matchDTO {
	return matchDTO{
		ID:        m.ID,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		League:    m.League,
		KickoffAt: m.KickoffAt.UTC().Format(time.RFC3339),
		Status:    m.Status,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
		Source:    m.Source,
	}
}
