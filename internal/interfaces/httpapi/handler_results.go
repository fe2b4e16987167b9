package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/arieljmnz/quiniela-backend/internal/usecase"
)

type recordResultRequest struct {
	HomeScore int `json:"homeScore" validate:"gte=0"`
	AwayScore int `json:"awayScore" validate:"gte=0"`
}

type recordResultDTO struct {
	Match             matchDTO `json:"match"`
	ScoredPredictions int      `json:"scoredPredictions"`
}

func (h *Handler) RecordMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMatchResult")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	var req recordResultRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.resultService.RecordResult(ctx, principal, usecase.RecordResultInput{
		MatchID:   matchID,
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record result failed", "match_id", matchID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, recordResultDTO{
		Match:             matchToDTO(ctx, result.Match),
		ScoredPredictions: result.ScoredPredictions,
	})
}
