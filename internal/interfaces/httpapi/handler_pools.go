package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arieljmnz/quiniela-backend/internal/usecase"
)

type createPoolRequest struct {
	Title      string   `json:"title" validate:"required,max=120"`
	MatchIDs   []string `json:"matchIds" validate:"required,min=1,dive,required"`
	EntryFee   float64  `json:"entryFee" validate:"gte=0"`
	DeadlineAt string   `json:"deadlineAt" validate:"required"`
}

func (h *Handler) CreatePool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePool")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createPoolRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	deadline, err := time.Parse(time.RFC3339, strings.TrimSpace(req.DeadlineAt))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: deadlineAt must be RFC3339: %v", usecase.ErrInvalidInput, err))
		return
	}

	created, err := h.poolService.CreatePool(ctx, principal, usecase.CreatePoolInput{
		Title:      req.Title,
		MatchIDs:   req.MatchIDs,
		EntryFee:   req.EntryFee,
		DeadlineAt: deadline,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create pool failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, poolToDTO(ctx, created))
}

func (h *Handler) ListPools(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPools")
	defer span.End()

	pools, err := h.poolService.ListPools(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list pools failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]poolDTO, 0, len(pools))
	for _, p := range pools {
		items = append(items, poolToDTO(ctx, p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPool")
	defer span.End()

	poolID := strings.TrimSpace(r.PathValue("poolID"))
	detail, err := h.poolService.GetPool(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "get pool failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	matches := make([]matchDTO, 0, len(detail.Matches))
	for _, m := range detail.Matches {
		matches = append(matches, matchToDTO(ctx, m))
	}

	writeSuccess(ctx, w, http.StatusOK, poolDetailDTO{
		Pool:    poolToDTO(ctx, detail.Pool),
		Matches: matches,
	})
}

func (h *Handler) JoinPool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinPool")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	poolID := strings.TrimSpace(r.PathValue("poolID"))
	joined, err := h.poolService.JoinPool(ctx, principal, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "join pool failed", "pool_id", poolID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, poolToDTO(ctx, joined))
}

func (h *Handler) ClosePool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClosePool")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	poolID := strings.TrimSpace(r.PathValue("poolID"))
	closed, err := h.poolService.ClosePool(ctx, principal, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "close pool failed", "pool_id", poolID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, poolToDTO(ctx, closed))
}
