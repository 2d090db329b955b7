package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/league"
	"github.com/riskibarqy/draft-auction/internal/domain/participant"
	"github.com/riskibarqy/draft-auction/internal/domain/timer"
	idgen "github.com/riskibarqy/draft-auction/internal/platform/id"
	"github.com/riskibarqy/draft-auction/internal/platform/logging"
	"github.com/riskibarqy/draft-auction/internal/storage"
)

// PlaceBidInput is the incoming payload for opening an auction or bidding on
// an open one. ProxyMax of zero means no proxy bid.
type PlaceBidInput struct {
	LeagueID string
	ItemID   string
	UserID   string
	Amount   int64
	ProxyMax int64
	Quick    bool
}

// PlaceBidResult reports the settled outcome of one bid operation.
type PlaceBidResult struct {
	Auction     auction.Auction
	SettledBid  auction.Bid
	Opened      bool
	WonViaProxy bool
}

type BidService struct {
	store          storage.Store
	notifier       Notifier
	compliance     *ComplianceService
	idGen          idgen.Generator
	logger         *logging.Logger
	responseWindow time.Duration
	now            func() time.Time
}

func NewBidService(
	store storage.Store,
	notifier Notifier,
	complianceSvc *ComplianceService,
	idGen idgen.Generator,
	responseWindow time.Duration,
	logger *logging.Logger,
) *BidService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if idGen == nil {
		idGen = idgen.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if responseWindow <= 0 {
		responseWindow = time.Hour
	}

	return &BidService{
		store:          store,
		notifier:       notifier,
		compliance:     complianceSvc,
		idGen:          idGen,
		logger:         logger,
		responseWindow: responseWindow,
		now:            time.Now,
	}
}

// PlaceBid validates and applies one bid inside a single serializable
// transaction: it opens the auction when the item has none, or runs proxy-bid
// battle resolution against the open one. Post-commit effects (notifications,
// response timers already written in-tx, compliance re-checks) run afterwards
// and never fail the bid.
func (s *BidService) PlaceBid(ctx context.Context, input PlaceBidInput) (PlaceBidResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BidService.PlaceBid")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.ItemID = strings.TrimSpace(input.ItemID)
	input.UserID = strings.TrimSpace(input.UserID)

	if input.LeagueID == "" || input.ItemID == "" || input.UserID == "" {
		return PlaceBidResult{}, fmt.Errorf("%w: league_id, item_id and user_id are required", ErrInvalidInput)
	}
	if input.Amount <= 0 {
		return PlaceBidResult{}, fmt.Errorf("%w: bid amount must be greater than zero", ErrInvalidInput)
	}
	if input.ProxyMax != 0 && input.ProxyMax < input.Amount {
		return PlaceBidResult{}, fmt.Errorf("%w: proxy max cannot be below the bid amount", ErrInvalidInput)
	}

	var (
		result  PlaceBidResult
		effects []Effect
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, r storage.Repos) error {
		effects = effects[:0]

		l, ok, err := r.Leagues().GetByID(ctx, input.LeagueID)
		if err != nil {
			return fmt.Errorf("get league: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: league=%s", ErrNotFound, input.LeagueID)
		}
		if !l.BiddingOpen() {
			return fmt.Errorf("%w: league %s is not in its bidding phase", ErrInvalidInput, l.ID)
		}

		it, ok, err := r.Items().GetByID(ctx, input.ItemID)
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: item=%s", ErrNotFound, input.ItemID)
		}
		if !l.RoleActive(it.Role) {
			return fmt.Errorf("%w: role %s is not active in this league", ErrInvalidInput, it.Role)
		}

		bidder, ok, err := r.Participants().Get(ctx, input.LeagueID, input.UserID)
		if err != nil {
			return fmt.Errorf("get participant: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: user %s is not a participant of league %s", ErrInvalidInput, input.UserID, input.LeagueID)
		}

		now := s.now().UTC()
		cooldown, ok, err := r.Cooldowns().Get(ctx, input.ItemID, input.UserID)
		if err != nil {
			return fmt.Errorf("get cooldown: %w", err)
		}
		if ok && cooldown.Active(now) {
			return fmt.Errorf("%w: cooldown on this item is active until %s", ErrInvalidInput, cooldown.EndsAt.Format(time.RFC3339))
		}

		open, exists, err := r.Auctions().GetOpenByItem(ctx, input.LeagueID, input.ItemID)
		if err != nil {
			return fmt.Errorf("get open auction: %w", err)
		}

		if !exists {
			result, effects, err = s.openAuction(ctx, r, l, it, bidder, input, now)
			return err
		}

		result, effects, err = s.bidOnAuction(ctx, r, l, it, bidder, open, input, now)
		return err
	})
	if err != nil {
		return PlaceBidResult{}, err
	}

	runEffects(ctx, effects)

	return result, nil
}

func (s *BidService) openAuction(
	ctx context.Context,
	r storage.Repos,
	l league.League,
	it item.Item,
	bidder participant.Participant,
	input PlaceBidInput,
	now time.Time,
) (PlaceBidResult, []Effect, error) {
	if _, assigned, err := r.Participants().AssignmentByItem(ctx, l.ID, it.ID); err != nil {
		return PlaceBidResult{}, nil, fmt.Errorf("check assignment: %w", err)
	} else if assigned {
		return PlaceBidResult{}, nil, fmt.Errorf("%w: item %s is already assigned", ErrInvalidInput, it.ID)
	}

	if minBid := l.MinimumBid(it); input.Amount < minBid {
		return PlaceBidResult{}, nil, fmt.Errorf("%w: bid %d is below the minimum of %d", ErrInvalidInput, input.Amount, minBid)
	}

	commitment := input.Amount
	if input.ProxyMax > commitment {
		commitment = input.ProxyMax
	}
	if err := s.validateCommitment(ctx, r, l, it, bidder, commitment, ""); err != nil {
		return PlaceBidResult{}, nil, err
	}

	auctionID, err := s.idGen.NewID()
	if err != nil {
		return PlaceBidResult{}, nil, fmt.Errorf("generate auction id: %w", err)
	}

	a := auction.Auction{
		ID:               auctionID,
		LeagueID:         l.ID,
		ItemID:           it.ID,
		Status:           auction.StatusActive,
		CurrentBidAmount: input.Amount,
		CurrentBidderID:  bidder.UserID,
		StartedAt:        now,
		ScheduledEndAt:   now.Add(l.TimerDuration),
	}
	if err := r.Auctions().Create(ctx, a); err != nil {
		if isDuplicateOpen(err) {
			return PlaceBidResult{}, nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return PlaceBidResult{}, nil, fmt.Errorf("create auction: %w", err)
	}

	bid, err := s.insertSettledBid(ctx, r, a.ID, bidder.UserID, input.Amount, bidType(input.Quick, false), now)
	if err != nil {
		return PlaceBidResult{}, nil, err
	}

	if input.ProxyMax > 0 {
		proxy := auction.ProxyBid{
			AuctionID: a.ID,
			UserID:    bidder.UserID,
			MaxAmount: input.ProxyMax,
			IsActive:  true,
			CreatedAt: now,
		}
		if err := r.Auctions().UpsertProxyBid(ctx, proxy); err != nil {
			return PlaceBidResult{}, nil, fmt.Errorf("upsert proxy bid: %w", err)
		}
	}

	if err := r.Auctions().SetUserState(ctx, a.ID, bidder.UserID, auction.UserStateLeading); err != nil {
		return PlaceBidResult{}, nil, fmt.Errorf("set user state: %w", err)
	}

	if err := s.recomputeLockedCredits(ctx, r, l.ID, bidder.UserID); err != nil {
		return PlaceBidResult{}, nil, err
	}

	effects := []Effect{
		publishEffect(s.notifier, s.logger, LeagueRoom(l.ID), EventAuctionOpened, map[string]any{
			"auction_id":    a.ID,
			"item_id":       it.ID,
			"item_name":     it.Name,
			"role":          it.Role,
			"amount":        a.CurrentBidAmount,
			"bidder_id":     a.CurrentBidderID,
			"scheduled_end": a.ScheduledEndAt,
		}),
		s.compliance.ReevaluateEffect(l.ID, bidder.UserID),
	}

	return PlaceBidResult{Auction: a, SettledBid: bid, Opened: true}, effects, nil
}

func (s *BidService) bidOnAuction(
	ctx context.Context,
	r storage.Repos,
	l league.League,
	it item.Item,
	bidder participant.Participant,
	a auction.Auction,
	input PlaceBidInput,
	now time.Time,
) (PlaceBidResult, []Effect, error) {
	if a.Status != auction.StatusActive {
		return PlaceBidResult{}, nil, fmt.Errorf("%w: auction %s is no longer active", ErrConflict, a.ID)
	}
	if a.Expired(now) {
		return PlaceBidResult{}, nil, fmt.Errorf("%w: auction %s has expired", ErrInvalidInput, a.ID)
	}
	if input.Amount <= a.CurrentBidAmount {
		return PlaceBidResult{}, nil, fmt.Errorf("%w: bid %d does not exceed the current bid of %d", ErrInvalidInput, input.Amount, a.CurrentBidAmount)
	}

	if a.CurrentBidderID == bidder.UserID {
		allowed, err := s.leaderMayRebid(ctx, r, a.ID, bidder.UserID)
		if err != nil {
			return PlaceBidResult{}, nil, err
		}
		if !allowed {
			return PlaceBidResult{}, nil, fmt.Errorf("%w: you are already the highest bidder", ErrInvalidInput)
		}
	}

	if input.ProxyMax > 0 {
		proxy := auction.ProxyBid{
			AuctionID: a.ID,
			UserID:    bidder.UserID,
			MaxAmount: input.ProxyMax,
			IsActive:  true,
			CreatedAt: now,
		}
		if err := r.Auctions().UpsertProxyBid(ctx, proxy); err != nil {
			return PlaceBidResult{}, nil, fmt.Errorf("upsert proxy bid: %w", err)
		}
	}

	proxies, err := r.Auctions().ListActiveProxyBids(ctx, a.ID)
	if err != nil {
		return PlaceBidResult{}, nil, fmt.Errorf("list active proxy bids: %w", err)
	}

	battle := auction.Simulate(auction.BattleBid{
		UserID:   bidder.UserID,
		Amount:   input.Amount,
		Type:     bidType(input.Quick, false),
		PlacedAt: now,
	}, a.CurrentBidAmount, proxies)

	// Role, slot and budget checks are evaluated against the eventual winner
	// of the battle, not the raw input. A losing submission locks nothing.
	if battle.WinnerID == bidder.UserID {
		commitment := input.Amount
		if input.ProxyMax > commitment {
			commitment = input.ProxyMax
		}
		if err := s.validateCommitment(ctx, r, l, it, bidder, commitment, a.ID); err != nil {
			return PlaceBidResult{}, nil, err
		}
	} else {
		winner, ok, err := r.Participants().Get(ctx, l.ID, battle.WinnerID)
		if err != nil {
			return PlaceBidResult{}, nil, fmt.Errorf("get winning participant: %w", err)
		}
		if !ok {
			return PlaceBidResult{}, nil, fmt.Errorf("%w: winning bidder %s is not a participant", ErrInvalidInput, battle.WinnerID)
		}
		winnerCommitment := battle.Amount
		if p, ok, err := r.Auctions().GetProxyBid(ctx, a.ID, battle.WinnerID); err != nil {
			return PlaceBidResult{}, nil, fmt.Errorf("get winner proxy bid: %w", err)
		} else if ok && p.IsActive && p.MaxAmount > winnerCommitment {
			winnerCommitment = p.MaxAmount
		}
		if err := s.validateCommitment(ctx, r, l, it, winner, winnerCommitment, a.ID); err != nil {
			return PlaceBidResult{}, nil, err
		}
	}

	previousLeaderID := a.CurrentBidderID

	settledType := bidType(input.Quick, battle.WonViaProxy)
	bid, err := s.insertSettledBid(ctx, r, a.ID, battle.WinnerID, battle.Amount, settledType, now)
	if err != nil {
		return PlaceBidResult{}, nil, err
	}

	if err := r.Auctions().SetCurrentBid(ctx, a.ID, battle.Amount, battle.WinnerID); err != nil {
		return PlaceBidResult{}, nil, fmt.Errorf("update current bid: %w", err)
	}
	a.CurrentBidAmount = battle.Amount
	a.CurrentBidderID = battle.WinnerID

	if err := r.Auctions().SetUserState(ctx, a.ID, battle.WinnerID, auction.UserStateLeading); err != nil {
		return PlaceBidResult{}, nil, fmt.Errorf("set winner state: %w", err)
	}

	// Deactivate every qualifying proxy that lost this battle, then recompute
	// credits from source rows for everyone the battle touched. Deltas are
	// never applied to locked_credits.
	recompute := map[string]struct{}{battle.WinnerID: {}, bidder.UserID: {}}
	for _, outbidID := range battle.OutbidUserIDs {
		if err := r.Auctions().DeactivateProxyBid(ctx, a.ID, outbidID); err != nil {
			return PlaceBidResult{}, nil, fmt.Errorf("deactivate proxy bid user=%s: %w", outbidID, err)
		}
		recompute[outbidID] = struct{}{}
	}
	if battle.WinnerID != bidder.UserID && input.ProxyMax > 0 {
		if err := r.Auctions().DeactivateProxyBid(ctx, a.ID, bidder.UserID); err != nil {
			return PlaceBidResult{}, nil, fmt.Errorf("deactivate losing proxy bid: %w", err)
		}
	}
	// A winner's own proxy below the settled amount no longer backs their
	// lead. Left active it would understate their locked credits, since the
	// recompute treats a backed lead as covered by the proxy max.
	if p, ok, err := r.Auctions().GetProxyBid(ctx, a.ID, battle.WinnerID); err != nil {
		return PlaceBidResult{}, nil, fmt.Errorf("get winner proxy bid: %w", err)
	} else if ok && p.IsActive && p.MaxAmount < battle.Amount {
		if err := r.Auctions().DeactivateProxyBid(ctx, a.ID, battle.WinnerID); err != nil {
			return PlaceBidResult{}, nil, fmt.Errorf("deactivate outgrown proxy bid: %w", err)
		}
	}
	if previousLeaderID != "" {
		recompute[previousLeaderID] = struct{}{}
	}
	for userID := range recompute {
		if err := s.recomputeLockedCredits(ctx, r, l.ID, userID); err != nil {
			return PlaceBidResult{}, nil, err
		}
	}

	// The submitter acted; any pending response window of theirs closes. The
	// new leader's pending timer (if any) is cancelled the same way.
	if err := r.Timers().MarkActionTaken(ctx, a.ID, bidder.UserID); err != nil {
		return PlaceBidResult{}, nil, fmt.Errorf("mark bidder timer: %w", err)
	}
	if err := r.Timers().MarkActionTaken(ctx, a.ID, battle.WinnerID); err != nil {
		return PlaceBidResult{}, nil, fmt.Errorf("mark winner timer: %w", err)
	}

	// Everyone the settlement surpassed gets a fresh response window. That
	// includes a submitter whose manual bid a proxy beat on the spot.
	surpassed := make([]string, 0, len(battle.OutbidUserIDs)+2)
	if previousLeaderID != "" && previousLeaderID != battle.WinnerID {
		surpassed = append(surpassed, previousLeaderID)
	}
	if bidder.UserID != battle.WinnerID && !containsString(surpassed, bidder.UserID) {
		surpassed = append(surpassed, bidder.UserID)
	}
	for _, outbidID := range battle.OutbidUserIDs {
		if outbidID != battle.WinnerID && !containsString(surpassed, outbidID) {
			surpassed = append(surpassed, outbidID)
		}
	}

	effects := []Effect{}
	for _, userID := range surpassed {
		if err := r.Auctions().SetUserState(ctx, a.ID, userID, auction.UserStateCanCounter); err != nil {
			return PlaceBidResult{}, nil, fmt.Errorf("set surpassed state: %w", err)
		}
		t := timer.ResponseTimer{
			AuctionID:  a.ID,
			UserID:     userID,
			NotifiedAt: now,
			Deadline:   now.Add(s.responseWindow),
			Status:     timer.StatusPending,
		}
		if err := r.Timers().UpsertPending(ctx, t); err != nil {
			return PlaceBidResult{}, nil, fmt.Errorf("upsert response timer: %w", err)
		}
		effects = append(effects, publishEffect(s.notifier, s.logger, UserRoom(userID), EventResponseTimer, map[string]any{
			"auction_id": a.ID,
			"item_id":    it.ID,
			"deadline":   t.Deadline,
		}))
	}

	budgets, err := s.budgetSnapshots(ctx, r, l.ID, recompute)
	if err != nil {
		return PlaceBidResult{}, nil, err
	}
	effects = append(effects, publishEffect(s.notifier, s.logger, LeagueRoom(l.ID), EventAuctionUpdated, map[string]any{
		"auction_id": a.ID,
		"item_id":    it.ID,
		"amount":     battle.Amount,
		"bidder_id":  battle.WinnerID,
		"bid_type":   settledType,
		"budgets":    budgets,
	}))

	for _, userID := range surpassed {
		effects = append(effects, publishEffect(s.notifier, s.logger, UserRoom(userID), EventBidSurpassed, map[string]any{
			"auction_id": a.ID,
			"item_id":    it.ID,
			"amount":     battle.Amount,
		}))
	}
	if battle.WonViaProxy && battle.WinnerID != bidder.UserID {
		effects = append(effects, publishEffect(s.notifier, s.logger, UserRoom(battle.WinnerID), EventProxyBidActivated, map[string]any{
			"auction_id": a.ID,
			"item_id":    it.ID,
			"amount":     battle.Amount,
		}))
	}

	if previousLeaderID != "" && previousLeaderID != battle.WinnerID {
		effects = append(effects, s.compliance.ReevaluateEffect(l.ID, previousLeaderID))
	}
	effects = append(effects, s.compliance.ReevaluateEffect(l.ID, battle.WinnerID))
	if bidder.UserID != battle.WinnerID && bidder.UserID != previousLeaderID {
		effects = append(effects, s.compliance.ReevaluateEffect(l.ID, bidder.UserID))
	}

	return PlaceBidResult{
		Auction:     a,
		SettledBid:  bid,
		WonViaProxy: battle.WonViaProxy,
	}, effects, nil
}

// leaderMayRebid allows the current highest bidder to raise only while a
// response window or counter state is open for them; otherwise they would be
// bidding against themselves.
func (s *BidService) leaderMayRebid(ctx context.Context, r storage.Repos, auctionID, userID string) (bool, error) {
	if _, ok, err := r.Timers().GetPending(ctx, auctionID, userID); err != nil {
		return false, fmt.Errorf("get pending timer: %w", err)
	} else if ok {
		return true, nil
	}
	state, ok, err := r.Auctions().GetUserState(ctx, auctionID, userID)
	if err != nil {
		return false, fmt.Errorf("get user state: %w", err)
	}
	return ok && state == auction.UserStateCanCounter, nil
}

func (s *BidService) insertSettledBid(
	ctx context.Context,
	r storage.Repos,
	auctionID, userID string,
	amount int64,
	t auction.BidType,
	now time.Time,
) (auction.Bid, error) {
	bidID, err := s.idGen.NewID()
	if err != nil {
		return auction.Bid{}, fmt.Errorf("generate bid id: %w", err)
	}

	bid := auction.Bid{
		ID:        bidID,
		AuctionID: auctionID,
		UserID:    userID,
		Amount:    amount,
		Type:      t,
		PlacedAt:  now,
	}
	if err := r.Auctions().InsertBid(ctx, bid); err != nil {
		return auction.Bid{}, fmt.Errorf("insert bid: %w", err)
	}

	return bid, nil
}

// validateCommitment checks budget, slot reserve and per-role ceiling for one
// participant taking a tentative win of `commitment` credits on `it`,
// ignoring whatever they already committed to auction excludeAuctionID.
func (s *BidService) validateCommitment(
	ctx context.Context,
	r storage.Repos,
	l league.League,
	it item.Item,
	p participant.Participant,
	commitment int64,
	excludeAuctionID string,
) error {
	lockedOthers, leadingByRole, err := s.openCommitments(ctx, r, l.ID, p.UserID, excludeAuctionID)
	if err != nil {
		return err
	}

	available := p.CurrentBudget - lockedOthers
	if commitment > available {
		return fmt.Errorf("%w: commitment %d exceeds available budget %d", ErrInvalidInput, commitment, available)
	}

	assignedByRole, err := r.Participants().CountAssignmentsByRole(ctx, l.ID, p.UserID)
	if err != nil {
		return fmt.Errorf("count assignments: %w", err)
	}

	assignedTotal := 0
	for _, n := range assignedByRole {
		assignedTotal += n
	}
	remaining := l.TotalSlots() - assignedTotal
	reserve := int64(0)
	if remaining > 1 {
		reserve = int64(remaining - 1)
	}
	if commitment > available-reserve {
		return fmt.Errorf("%w: commitment %d would leave fewer than %d credits for the remaining roster slots", ErrInvalidInput, commitment, reserve)
	}

	if assignedByRole[it.Role]+leadingByRole[it.Role]+1 > l.SlotsByRole[it.Role] {
		return fmt.Errorf("%w: slot ceiling for role %s reached", ErrInvalidInput, it.Role)
	}

	return nil
}

// openCommitments sums what the user has locked on open auctions other than
// excludeAuctionID, and counts the roles they currently lead elsewhere.
func (s *BidService) openCommitments(
	ctx context.Context,
	r storage.Repos,
	leagueID, userID, excludeAuctionID string,
) (int64, map[item.Role]int, error) {
	proxies, err := r.Auctions().ListActiveProxyBidsByUser(ctx, leagueID, userID)
	if err != nil {
		return 0, nil, fmt.Errorf("list proxy bids: %w", err)
	}
	proxyByAuction := make(map[string]int64, len(proxies))
	var locked int64
	for _, p := range proxies {
		if p.AuctionID == excludeAuctionID {
			continue
		}
		proxyByAuction[p.AuctionID] = p.MaxAmount
		locked += p.MaxAmount
	}

	leading, err := r.Auctions().ListLeadingByUser(ctx, leagueID, userID)
	if err != nil {
		return 0, nil, fmt.Errorf("list leading auctions: %w", err)
	}
	leadingByRole := make(map[item.Role]int)
	for _, a := range leading {
		if a.ID == excludeAuctionID {
			continue
		}
		if _, backed := proxyByAuction[a.ID]; !backed {
			locked += a.CurrentBidAmount
		}
		if it, ok, err := r.Items().GetByID(ctx, a.ItemID); err != nil {
			return 0, nil, fmt.Errorf("get leading item: %w", err)
		} else if ok {
			leadingByRole[it.Role]++
		}
	}

	return locked, leadingByRole, nil
}

// recomputeLockedCredits rebuilds locked_credits from source rows: the sum of
// the user's active proxy maxima across open auctions plus the amounts they
// are winning manually without a backing proxy bid.
func (s *BidService) recomputeLockedCredits(ctx context.Context, r storage.Repos, leagueID, userID string) error {
	locked, err := lockedCreditsFromSource(ctx, r, leagueID, userID)
	if err != nil {
		return err
	}

	p, ok, err := r.Participants().Get(ctx, leagueID, userID)
	if err != nil {
		return fmt.Errorf("get participant for recompute: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: participant league=%s user=%s", ErrNotFound, leagueID, userID)
	}

	if err := r.Participants().SetBalances(ctx, leagueID, userID, p.CurrentBudget, locked); err != nil {
		return fmt.Errorf("set balances: %w", err)
	}

	return nil
}

func (s *BidService) budgetSnapshots(ctx context.Context, r storage.Repos, leagueID string, userIDs map[string]struct{}) ([]map[string]any, error) {
	snapshots := make([]map[string]any, 0, len(userIDs))
	for userID := range userIDs {
		p, ok, err := r.Participants().Get(ctx, leagueID, userID)
		if err != nil {
			return nil, fmt.Errorf("get participant snapshot: %w", err)
		}
		if !ok {
			continue
		}
		snapshots = append(snapshots, map[string]any{
			"user_id":        p.UserID,
			"current_budget": p.CurrentBudget,
			"locked_credits": p.LockedCredits,
		})
	}

	return snapshots, nil
}

func bidType(quick, viaProxy bool) auction.BidType {
	if viaProxy {
		return auction.BidTypeAuto
	}
	if quick {
		return auction.BidTypeQuick
	}
	return auction.BidTypeManual
}

func isDuplicateOpen(err error) bool {
	return errors.Is(err, auction.ErrDuplicateOpen)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
