package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/arieljmnz/quiniela-backend/internal/usecase"
)

type Handler struct {
	ingestionService  *usecase.IngestionService
	poolService       *usecase.PoolService
	predictionService *usecase.PredictionService
	resultService     *usecase.ResultService
	statsService      *usecase.StatsService
	paymentService    *usecase.PaymentService
	refreshService    *usecase.RefreshService
	logger            *slog.Logger
	validator         *validator.Validate
}

func NewHandler(
	ingestionService *usecase.IngestionService,
	poolService *usecase.PoolService,
	predictionService *usecase.PredictionService,
	resultService *usecase.ResultService,
	statsService *usecase.StatsService,
	paymentService *usecase.PaymentService,
	refreshService *usecase.RefreshService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		ingestionService:  ingestionService,
		poolService:       poolService,
		predictionService: predictionService,
		resultService:     resultService,
		statsService:      statsService,
		paymentService:    paymentService,
		refreshService:    refreshService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSONBody decodes a request body into dst. An empty body is fine when
// allowEmpty is set, which the internal job routes rely on.
func decodeJSONBody(r *http.Request, dst any, allowEmpty bool) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
