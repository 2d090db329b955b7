package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/draft-auction/internal/usecase"
)

type placeBidRequest struct {
	Amount   int64 `json:"amount" validate:"required,gt=0"`
	ProxyMax int64 `json:"proxy_max" validate:"omitempty,gt=0"`
	Quick    bool  `json:"quick"`
}

type bidResponse struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Amount   int64     `json:"amount"`
	Type     string    `json:"type"`
	PlacedAt time.Time `json:"placed_at"`
}

type placeBidResponse struct {
	Auction     auctionResponse `json:"auction"`
	SettledBid  bidResponse     `json:"settled_bid"`
	Opened      bool            `json:"opened"`
	WonViaProxy bool            `json:"won_via_proxy"`
}

// PlaceBid opens the item's auction with a first bid, or joins the open one.
// The proxy-bid battle is resolved inside the service; the response carries
// the settled outcome, which may name a different winner than the caller.
func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PlaceBid")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req placeBidRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.bidService.PlaceBid(ctx, usecase.PlaceBidInput{
		LeagueID: r.PathValue("leagueID"),
		ItemID:   r.PathValue("itemID"),
		UserID:   principal.UserID,
		Amount:   req.Amount,
		ProxyMax: req.ProxyMax,
		Quick:    req.Quick,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "place bid failed",
			"league_id", r.PathValue("leagueID"),
			"item_id", r.PathValue("itemID"),
			"user_id", principal.UserID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if result.Opened {
		status = http.StatusCreated
	}

	writeSuccess(ctx, w, status, placeBidResponse{
		Auction: auctionResponse{
			ID:               result.Auction.ID,
			LeagueID:         result.Auction.LeagueID,
			ItemID:           result.Auction.ItemID,
			Status:           string(result.Auction.Status),
			CurrentBidAmount: result.Auction.CurrentBidAmount,
			CurrentBidderID:  result.Auction.CurrentBidderID,
			StartedAt:        result.Auction.StartedAt,
			ScheduledEndAt:   result.Auction.ScheduledEndAt,
		},
		SettledBid: bidResponse{
			ID:       result.SettledBid.ID,
			UserID:   result.SettledBid.UserID,
			Amount:   result.SettledBid.Amount,
			Type:     string(result.SettledBid.Type),
			PlacedAt: result.SettledBid.PlacedAt,
		},
		Opened:      result.Opened,
		WonViaProxy: result.WonViaProxy,
	})
}
