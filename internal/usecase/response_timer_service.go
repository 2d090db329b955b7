package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
	"github.com/riskibarqy/draft-auction/internal/domain/timer"
	"github.com/riskibarqy/draft-auction/internal/platform/logging"
	"github.com/riskibarqy/draft-auction/internal/storage"
)

// ResponseTimerService handles the outbid response window: explicit abandons,
// and the sweep that auto-abandons users whose window ran out.
type ResponseTimerService struct {
	store      storage.Store
	notifier   Notifier
	compliance *ComplianceService
	logger     *logging.Logger
	cooldown   time.Duration
	now        func() time.Time
}

func NewResponseTimerService(
	store storage.Store,
	notifier Notifier,
	complianceSvc *ComplianceService,
	cooldown time.Duration,
	logger *logging.Logger,
) *ResponseTimerService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cooldown <= 0 {
		cooldown = 48 * time.Hour
	}

	return &ResponseTimerService{
		store:      store,
		notifier:   notifier,
		compliance: complianceSvc,
		logger:     logger,
		cooldown:   cooldown,
		now:        time.Now,
	}
}

// Abandon records an explicit walk-away from an auction the user was outbid
// on. Their pending timer closes as action_taken, their proxy bid deactivates
// and their locked credits are rebuilt. Calling it twice is a no-op.
func (s *ResponseTimerService) Abandon(ctx context.Context, auctionID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResponseTimerService.Abandon")
	defer span.End()

	auctionID = strings.TrimSpace(auctionID)
	userID = strings.TrimSpace(userID)
	if auctionID == "" || userID == "" {
		return fmt.Errorf("%w: auction_id and user_id are required", ErrInvalidInput)
	}

	var effects []Effect

	err := s.store.WithinTx(ctx, func(ctx context.Context, r storage.Repos) error {
		effects = effects[:0]

		a, ok, err := r.Auctions().GetByID(ctx, auctionID)
		if err != nil {
			return fmt.Errorf("get auction: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: auction=%s", ErrNotFound, auctionID)
		}
		if !a.Status.IsOpen() {
			return fmt.Errorf("%w: auction %s is already settled", ErrInvalidInput, auctionID)
		}
		if a.CurrentBidderID == userID {
			return fmt.Errorf("%w: the highest bidder cannot abandon the auction", ErrInvalidInput)
		}

		state, hasState, err := r.Auctions().GetUserState(ctx, auctionID, userID)
		if err != nil {
			return fmt.Errorf("get user state: %w", err)
		}
		if hasState && state == auction.UserStateAbandoned {
			return nil
		}

		if err := r.Timers().MarkActionTaken(ctx, auctionID, userID); err != nil {
			return fmt.Errorf("mark action taken: %w", err)
		}
		if err := r.Auctions().SetUserState(ctx, auctionID, userID, auction.UserStateAbandoned); err != nil {
			return fmt.Errorf("set abandoned state: %w", err)
		}
		if err := r.Auctions().DeactivateProxyBid(ctx, auctionID, userID); err != nil {
			return fmt.Errorf("deactivate proxy bid: %w", err)
		}

		locked, err := lockedCreditsFromSource(ctx, r, a.LeagueID, userID)
		if err != nil {
			return err
		}
		p, ok, err := r.Participants().Get(ctx, a.LeagueID, userID)
		if err != nil {
			return fmt.Errorf("get participant: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: participant league=%s user=%s", ErrNotFound, a.LeagueID, userID)
		}
		if err := r.Participants().SetBalances(ctx, a.LeagueID, userID, p.CurrentBudget, locked); err != nil {
			return fmt.Errorf("set balances: %w", err)
		}

		effects = append(effects,
			publishEffect(s.notifier, s.logger, LeagueRoom(a.LeagueID), EventUserAbandoned, map[string]any{
				"auction_id": auctionID,
				"item_id":    a.ItemID,
				"user_id":    userID,
				"explicit":   true,
			}),
			s.compliance.ReevaluateEffect(a.LeagueID, userID),
		)

		return nil
	})
	if err != nil {
		return err
	}

	runEffects(ctx, effects)

	return nil
}

// SweepExpired auto-abandons every pending response timer past its deadline.
// The missed deadline also starts the 48 hour re-bid cooldown on that item.
func (s *ResponseTimerService) SweepExpired(ctx context.Context) (SweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResponseTimerService.SweepExpired")
	defer span.End()

	now := s.now().UTC()
	pending, err := s.store.Repos().Timers().ListExpiredPending(ctx, now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list expired timers: %w", err)
	}

	var result SweepResult
	for _, t := range pending {
		if err := s.expireOne(ctx, t.AuctionID, t.UserID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("auction %s user %s: %v", t.AuctionID, t.UserID, err))
			continue
		}
		result.Processed++
	}

	return result, nil
}

func (s *ResponseTimerService) expireOne(ctx context.Context, auctionID, userID string) error {
	var effects []Effect

	err := s.store.WithinTx(ctx, func(ctx context.Context, r storage.Repos) error {
		effects = effects[:0]

		t, ok, err := r.Timers().GetPending(ctx, auctionID, userID)
		if err != nil {
			return fmt.Errorf("get pending timer: %w", err)
		}
		if !ok {
			return nil
		}

		now := s.now().UTC()
		if !t.Expired(now) {
			return nil
		}

		a, ok, err := r.Auctions().GetByID(ctx, auctionID)
		if err != nil {
			return fmt.Errorf("get auction: %w", err)
		}
		if !ok || !a.Status.IsOpen() {
			// The auction settled before the window was swept; the timer is
			// moot and just needs closing out.
			if err := r.Timers().MarkActionTaken(ctx, auctionID, userID); err != nil {
				return fmt.Errorf("close stale timer: %w", err)
			}
			return nil
		}
		if a.CurrentBidderID == userID {
			// They regained the lead between notification and sweep.
			if err := r.Timers().MarkActionTaken(ctx, auctionID, userID); err != nil {
				return fmt.Errorf("close leader timer: %w", err)
			}
			return nil
		}

		if err := r.Timers().MarkDeadlineMissed(ctx, auctionID, userID); err != nil {
			return fmt.Errorf("mark deadline missed: %w", err)
		}
		if err := r.Auctions().SetUserState(ctx, auctionID, userID, auction.UserStateAbandoned); err != nil {
			return fmt.Errorf("set abandoned state: %w", err)
		}
		if err := r.Auctions().DeactivateProxyBid(ctx, auctionID, userID); err != nil {
			return fmt.Errorf("deactivate proxy bid: %w", err)
		}

		cd := timer.Cooldown{
			ItemID:      a.ItemID,
			UserID:      userID,
			AbandonedAt: now,
			EndsAt:      now.Add(s.cooldown),
		}
		if err := r.Cooldowns().Upsert(ctx, cd); err != nil {
			return fmt.Errorf("upsert cooldown: %w", err)
		}

		locked, err := lockedCreditsFromSource(ctx, r, a.LeagueID, userID)
		if err != nil {
			return err
		}
		p, ok, err := r.Participants().Get(ctx, a.LeagueID, userID)
		if err != nil {
			return fmt.Errorf("get participant: %w", err)
		}
		if ok {
			if err := r.Participants().SetBalances(ctx, a.LeagueID, userID, p.CurrentBudget, locked); err != nil {
				return fmt.Errorf("set balances: %w", err)
			}
		}

		effects = append(effects,
			publishEffect(s.notifier, s.logger, UserRoom(userID), EventUserAbandoned, map[string]any{
				"auction_id":   auctionID,
				"item_id":      a.ItemID,
				"cooldown_end": cd.EndsAt,
				"explicit":     false,
			}),
			publishEffect(s.notifier, s.logger, LeagueRoom(a.LeagueID), EventUserAbandoned, map[string]any{
				"auction_id": auctionID,
				"item_id":    a.ItemID,
				"user_id":    userID,
				"explicit":   false,
			}),
			s.compliance.ReevaluateEffect(a.LeagueID, userID),
		)

		return nil
	})
	if err != nil {
		return err
	}

	runEffects(ctx, effects)

	return nil
}
