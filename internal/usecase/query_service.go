package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
	"github.com/riskibarqy/draft-auction/internal/domain/compliance"
	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/participant"
	"github.com/riskibarqy/draft-auction/internal/platform/logging"
	"github.com/riskibarqy/draft-auction/internal/storage"
)

// AuctionView is one open auction decorated with item details and the
// requesting user's standing in it.
type AuctionView struct {
	Auction       auction.Auction
	ItemName      string
	Role          item.Role
	MyState       auction.UserState
	MyProxyMax    int64
	TimerDeadline *time.Time
}

// ParticipantSummary is the "my seat" view: balances, roster and compliance
// standing for one participant.
type ParticipantSummary struct {
	Participant participant.Participant
	Available   int64
	Assignments []participant.Assignment
	Compliance  compliance.Status
	Coverage    map[item.Role]compliance.RoleCoverage
}

// QueryService serves the read endpoints. It works off plain repository reads
// rather than transactions: the views are snapshots, not write decisions.
type QueryService struct {
	store      storage.Store
	compliance *ComplianceService
	logger     *logging.Logger
	now        func() time.Time
}

func NewQueryService(store storage.Store, complianceSvc *ComplianceService, logger *logging.Logger) *QueryService {
	if logger == nil {
		logger = logging.Default()
	}

	return &QueryService{
		store:      store,
		compliance: complianceSvc,
		logger:     logger,
		now:        time.Now,
	}
}

// ListOpenAuctions returns every open auction in the league, ordered by the
// repository, with the viewer's state, proxy ceiling and pending deadline.
func (s *QueryService) ListOpenAuctions(ctx context.Context, leagueID, viewerID string) ([]AuctionView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ListOpenAuctions")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	viewerID = strings.TrimSpace(viewerID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}

	r := s.store.Repos()
	if _, ok, err := r.Leagues().GetByID(ctx, leagueID); err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	} else if !ok {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	open, err := r.Auctions().ListOpenByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list open auctions: %w", err)
	}

	views := make([]AuctionView, 0, len(open))
	for _, a := range open {
		view := AuctionView{Auction: a}

		if it, ok, err := r.Items().GetByID(ctx, a.ItemID); err != nil {
			return nil, fmt.Errorf("get item: %w", err)
		} else if ok {
			view.ItemName = it.Name
			view.Role = it.Role
		}

		if viewerID != "" {
			if state, ok, err := r.Auctions().GetUserState(ctx, a.ID, viewerID); err != nil {
				return nil, fmt.Errorf("get user state: %w", err)
			} else if ok {
				view.MyState = state
			}
			if p, ok, err := r.Auctions().GetProxyBid(ctx, a.ID, viewerID); err != nil {
				return nil, fmt.Errorf("get proxy bid: %w", err)
			} else if ok && p.IsActive {
				view.MyProxyMax = p.MaxAmount
			}
			if t, ok, err := r.Timers().GetPending(ctx, a.ID, viewerID); err != nil {
				return nil, fmt.Errorf("get pending timer: %w", err)
			} else if ok {
				deadline := t.Deadline
				view.TimerDeadline = &deadline
			}
		}

		views = append(views, view)
	}

	return views, nil
}

// ParticipantSummary assembles balances, roster and compliance standing for
// the requesting user.
func (s *QueryService) ParticipantSummary(ctx context.Context, leagueID, userID string) (ParticipantSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ParticipantSummary")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if leagueID == "" || userID == "" {
		return ParticipantSummary{}, fmt.Errorf("%w: league_id and user_id are required", ErrInvalidInput)
	}

	r := s.store.Repos()
	l, ok, err := r.Leagues().GetByID(ctx, leagueID)
	if err != nil {
		return ParticipantSummary{}, fmt.Errorf("get league: %w", err)
	}
	if !ok {
		return ParticipantSummary{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	p, ok, err := r.Participants().Get(ctx, leagueID, userID)
	if err != nil {
		return ParticipantSummary{}, fmt.Errorf("get participant: %w", err)
	}
	if !ok {
		return ParticipantSummary{}, fmt.Errorf("%w: participant league=%s user=%s", ErrNotFound, leagueID, userID)
	}

	assignments, err := r.Participants().ListAssignmentsByUser(ctx, leagueID, userID)
	if err != nil {
		return ParticipantSummary{}, fmt.Errorf("list assignments: %w", err)
	}

	summary := ParticipantSummary{
		Participant: p,
		Available:   p.Available(),
		Assignments: assignments,
	}

	if s.compliance != nil {
		status, err := s.compliance.Status(ctx, leagueID, userID)
		if err != nil {
			return ParticipantSummary{}, err
		}
		summary.Compliance = status
	}

	assignedByRole := make(map[item.Role]int, len(assignments))
	for _, a := range assignments {
		assignedByRole[a.Role]++
	}
	leadingByRole := make(map[item.Role]int)
	leading, err := r.Auctions().ListLeadingByUser(ctx, leagueID, userID)
	if err != nil {
		return ParticipantSummary{}, fmt.Errorf("list leading auctions: %w", err)
	}
	for _, a := range leading {
		if it, ok, err := r.Items().GetByID(ctx, a.ItemID); err != nil {
			return ParticipantSummary{}, fmt.Errorf("get leading item: %w", err)
		} else if ok {
			leadingByRole[it.Role]++
		}
	}
	_, summary.Coverage = compliance.Evaluate(l, assignedByRole, leadingByRole)

	return summary, nil
}
