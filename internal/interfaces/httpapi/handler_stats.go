package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/arieljmnz/quiniela-backend/internal/usecase"
)

func (h *Handler) GetGlobalStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGlobalStats")
	defer span.End()

	stats, err := h.statsService.GlobalStats(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get global stats failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}

func (h *Handler) GetPoolsHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPoolsHistory")
	defer span.End()

	history, err := h.statsService.PoolsHistory(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get pools history failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, history)
}

func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserStats")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	stats, err := h.statsService.UserStats(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user stats failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}

func (h *Handler) CompareUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompareUsers")
	defer span.End()

	raw := strings.TrimSpace(r.URL.Query().Get("users"))
	if raw == "" {
		writeError(ctx, w, fmt.Errorf("%w: users query parameter is required", usecase.ErrInvalidInput))
		return
	}
	userIDs := strings.Split(raw, ",")

	comparison, err := h.statsService.CompareUsers(ctx, userIDs)
	if err != nil {
		h.logger.WarnContext(ctx, "compare users failed", "users", raw, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, comparison)
}
