package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/draft-auction/internal/platform/logging"
	"github.com/riskibarqy/draft-auction/internal/usecase"
)

type Handler struct {
	bidService        *usecase.BidService
	timerService      *usecase.ResponseTimerService
	settlementService *usecase.SettlementService
	complianceService *usecase.ComplianceService
	queryService      *usecase.QueryService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	bidService *usecase.BidService,
	timerService *usecase.ResponseTimerService,
	settlementService *usecase.SettlementService,
	complianceService *usecase.ComplianceService,
	queryService *usecase.QueryService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		bidService:        bidService,
		timerService:      timerService,
		settlementService: settlementService,
		complianceService: complianceService,
		queryService:      queryService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
