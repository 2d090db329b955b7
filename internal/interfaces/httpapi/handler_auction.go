package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/draft-auction/internal/usecase"
)

type auctionResponse struct {
	ID               string     `json:"id"`
	LeagueID         string     `json:"league_id"`
	ItemID           string     `json:"item_id"`
	ItemName         string     `json:"item_name,omitempty"`
	Role             string     `json:"role,omitempty"`
	Status           string     `json:"status"`
	CurrentBidAmount int64      `json:"current_bid_amount"`
	CurrentBidderID  string     `json:"current_bidder_id"`
	StartedAt        time.Time  `json:"started_at"`
	ScheduledEndAt   time.Time  `json:"scheduled_end_at"`
	MyState          string     `json:"my_state,omitempty"`
	MyProxyMax       int64      `json:"my_proxy_max,omitempty"`
	TimerDeadline    *time.Time `json:"timer_deadline,omitempty"`
}

type assignmentResponse struct {
	ItemID     string    `json:"item_id"`
	Role       string    `json:"role"`
	Price      int64     `json:"price"`
	AssignedAt time.Time `json:"assigned_at"`
}

type roleCoverageResponse struct {
	Required int `json:"required"`
	Covered  int `json:"covered"`
}

type participantSummaryResponse struct {
	LeagueID      string                          `json:"league_id"`
	UserID        string                          `json:"user_id"`
	CurrentBudget int64                           `json:"current_budget"`
	LockedCredits int64                           `json:"locked_credits"`
	Available     int64                           `json:"available"`
	Assignments   []assignmentResponse            `json:"assignments"`
	Compliant     bool                            `json:"compliant"`
	ViolationFrom *time.Time                      `json:"violation_from,omitempty"`
	Penalties     int                             `json:"penalties_applied"`
	Coverage      map[string]roleCoverageResponse `json:"coverage"`
}

// Abandon gives up the caller's position in the auction: timer resolved,
// proxy deactivated, locked credits released. No cooldown on an explicit
// abandon; only the sweep imposes one.
func (h *Handler) Abandon(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Abandon")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	auctionID := r.PathValue("auctionID")
	if err := h.timerService.Abandon(ctx, auctionID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "abandon failed",
			"auction_id", auctionID,
			"user_id", principal.UserID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "abandoned"})
}

func (h *Handler) ListOpenAuctions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListOpenAuctions")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	views, err := h.queryService.ListOpenAuctions(ctx, r.PathValue("leagueID"), principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]auctionResponse, 0, len(views))
	for _, view := range views {
		out = append(out, auctionResponse{
			ID:               view.Auction.ID,
			LeagueID:         view.Auction.LeagueID,
			ItemID:           view.Auction.ItemID,
			ItemName:         view.ItemName,
			Role:             string(view.Role),
			Status:           string(view.Auction.Status),
			CurrentBidAmount: view.Auction.CurrentBidAmount,
			CurrentBidderID:  view.Auction.CurrentBidderID,
			StartedAt:        view.Auction.StartedAt,
			ScheduledEndAt:   view.Auction.ScheduledEndAt,
			MyState:          string(view.MyState),
			MyProxyMax:       view.MyProxyMax,
			TimerDeadline:    view.TimerDeadline,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetMyParticipantSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyParticipantSummary")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	summary, err := h.queryService.ParticipantSummary(ctx, r.PathValue("leagueID"), principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	assignments := make([]assignmentResponse, 0, len(summary.Assignments))
	for _, a := range summary.Assignments {
		assignments = append(assignments, assignmentResponse{
			ItemID:     a.ItemID,
			Role:       string(a.Role),
			Price:      a.Price,
			AssignedAt: a.AssignedAt,
		})
	}

	coverage := make(map[string]roleCoverageResponse, len(summary.Coverage))
	for role, c := range summary.Coverage {
		coverage[string(role)] = roleCoverageResponse{
			Required: c.Required,
			Covered:  c.Covered,
		}
	}

	writeSuccess(ctx, w, http.StatusOK, participantSummaryResponse{
		LeagueID:      summary.Participant.LeagueID,
		UserID:        summary.Participant.UserID,
		CurrentBudget: summary.Participant.CurrentBudget,
		LockedCredits: summary.Participant.LockedCredits,
		Available:     summary.Available,
		Assignments:   assignments,
		Compliant:     summary.Compliance.Compliant(),
		ViolationFrom: summary.Compliance.TimerStartAt,
		Penalties:     summary.Compliance.PenaltiesApplied,
		Coverage:      coverage,
	})
}
