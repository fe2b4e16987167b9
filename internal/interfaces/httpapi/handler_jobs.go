package httpapi

import (
	"net/http"
)

type refreshStatsRequest struct {
	MaxWorkers int `json:"maxWorkers" validate:"gte=0,lte=64"`
}

func (h *Handler) RunRefreshStatsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshStatsJob")
	defer span.End()

	var req refreshStatsRequest
	if err := decodeJSONBody(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.refreshService.RefreshStats(ctx, req.MaxWorkers)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh stats job failed", "max_workers", req.MaxWorkers, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
