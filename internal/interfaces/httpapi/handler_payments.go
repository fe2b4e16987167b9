package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/arieljmnz/quiniela-backend/internal/usecase"
)

func (h *Handler) ListMyPayments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPayments")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	// Admins may inspect another user's ledger via ?user_id=.
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	output, err := h.paymentService.UserPayments(ctx, principal, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "list payments failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, output)
}

type markPaymentPaidRequest struct {
	Method string `json:"method" validate:"omitempty,max=40"`
}

func (h *Handler) MarkPaymentAsPaid(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MarkPaymentAsPaid")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req markPaymentPaidRequest
	if err := decodeJSONBody(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	paymentID := strings.TrimSpace(r.PathValue("paymentID"))
	settled, err := h.paymentService.MarkPaymentAsPaid(ctx, principal, paymentID, req.Method)
	if err != nil {
		h.logger.WarnContext(ctx, "mark payment paid failed", "payment_id", paymentID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settled)
}
