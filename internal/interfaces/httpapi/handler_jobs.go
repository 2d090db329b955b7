package httpapi

import (
	"net/http"
)

// The sweep endpoints mirror what the in-process scheduler runs on its tick.
// They exist so an external cron can drive expiry when the service runs with
// the scheduler disabled, and for operational replays. All are idempotent.

func (h *Handler) RunAuctionSweep(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunAuctionSweep")
	defer span.End()

	result, err := h.settlementService.SweepExpired(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "auction sweep failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunTimerSweep(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunTimerSweep")
	defer span.End()

	result, err := h.timerService.SweepExpired(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "timer sweep failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunComplianceSweep(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunComplianceSweep")
	defer span.End()

	result, err := h.complianceService.SweepPenalties(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "compliance sweep failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
