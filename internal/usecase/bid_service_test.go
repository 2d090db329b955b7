package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/league"
	"github.com/riskibarqy/draft-auction/internal/domain/timer"
	"github.com/riskibarqy/draft-auction/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/draft-auction/internal/platform/id"
	"github.com/riskibarqy/draft-auction/internal/storage"
)

type recordedEvent struct {
	Room    string
	Event   string
	Payload any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Publish(_ context.Context, room, event string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{Room: room, Event: event, Payload: payload})
	return nil
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, e := range n.events {
		if e.Event == event {
			total++
		}
	}
	return total
}

type testEnv struct {
	store    *memory.Store
	notifier *recordingNotifier
	bids     *BidService
	settle   *SettlementService
	timers   *ResponseTimerService
	comp     *ComplianceService
	now      time.Time
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	store.SeedLeagues(memory.SeedDraftLeague())
	store.SeedItems(memory.SeedDemoItems()...)
	store.SeedParticipants(memory.SeedDemoParticipants(memory.LeagueIDDraftDemo, 500, "alice", "bob", "carol")...)

	notifier := &recordingNotifier{}
	gen := idgen.NewRandomGenerator()

	comp := NewComplianceService(store, notifier, nil, nil, gen, time.Hour, 5, 5, nil)
	bids := NewBidService(store, notifier, comp, gen, time.Hour, nil)
	settle := NewSettlementService(store, notifier, comp, gen, 4, nil)
	timers := NewResponseTimerService(store, notifier, comp, 48*time.Hour, nil)

	env := &testEnv{
		store:    store,
		notifier: notifier,
		bids:     bids,
		settle:   settle,
		timers:   timers,
		comp:     comp,
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	clock := func() time.Time { return env.now }
	bids.now = clock
	settle.now = clock
	timers.now = clock
	comp.now = clock

	return env
}

func (e *testEnv) participant(t *testing.T, userID string) (int64, int64) {
	t.Helper()
	p, ok, err := e.store.Repos().Participants().Get(context.Background(), memory.LeagueIDDraftDemo, userID)
	if err != nil || !ok {
		t.Fatalf("get participant %s: ok=%v err=%v", userID, ok, err)
	}
	return p.CurrentBudget, p.LockedCredits
}

func TestPlaceBidOpensAuction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo,
		ItemID:   "item-fw-1",
		UserID:   "alice",
		Amount:   30,
	})
	if err != nil {
		t.Fatalf("PlaceBid: %v", err)
	}
	if !res.Opened {
		t.Fatalf("expected a new auction to open")
	}
	if res.Auction.CurrentBidAmount != 30 || res.Auction.CurrentBidderID != "alice" {
		t.Fatalf("unexpected auction state: %+v", res.Auction)
	}
	if got := res.Auction.ScheduledEndAt; !got.Equal(env.now.Add(time.Hour)) {
		t.Fatalf("scheduled end = %v, want %v", got, env.now.Add(time.Hour))
	}
	if res.SettledBid.Type != auction.BidTypeManual {
		t.Fatalf("bid type = %s, want manual", res.SettledBid.Type)
	}

	if _, locked := env.participant(t, "alice"); locked != 30 {
		t.Fatalf("alice locked = %d, want 30", locked)
	}

	state, ok, err := env.store.Repos().Auctions().GetUserState(ctx, res.Auction.ID, "alice")
	if err != nil || !ok || state != auction.UserStateLeading {
		t.Fatalf("alice state = %s (ok=%v err=%v), want leading", state, ok, err)
	}
	if env.notifier.count(EventAuctionOpened) != 1 {
		t.Fatalf("expected one auction-opened event")
	}
}

func TestPlaceBidBelowMinimumRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.bids.PlaceBid(context.Background(), PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo,
		ItemID:   "item-fw-1",
		UserID:   "alice",
		Amount:   29,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestPlaceBidOutsideBiddingPhaseRejected(t *testing.T) {
	env := newTestEnv(t)
	closed := memory.SeedDraftLeague()
	closed.ID = "closed-league"
	closed.Status = league.StatusMarketClosed
	env.store.SeedLeagues(closed)
	env.store.SeedParticipants(memory.SeedDemoParticipants("closed-league", 500, "alice")...)

	_, err := env.bids.PlaceBid(context.Background(), PlaceBidInput{
		LeagueID: "closed-league",
		ItemID:   "item-fw-1",
		UserID:   "alice",
		Amount:   30,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestPlaceBidUnknownLeague(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.bids.PlaceBid(context.Background(), PlaceBidInput{
		LeagueID: "nope",
		ItemID:   "item-fw-1",
		UserID:   "alice",
		Amount:   30,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestProxyDefendsLead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	opened, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo,
		ItemID:   "item-fw-1",
		UserID:   "alice",
		Amount:   30,
		ProxyMax: 60,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, locked := env.participant(t, "alice"); locked != 60 {
		t.Fatalf("alice locked = %d, want proxy max 60", locked)
	}

	env.advance(5 * time.Minute)
	res, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo,
		ItemID:   "item-fw-1",
		UserID:   "bob",
		Amount:   40,
	})
	if err != nil {
		t.Fatalf("bob bid: %v", err)
	}
	if res.Auction.CurrentBidderID != "alice" || res.Auction.CurrentBidAmount != 41 {
		t.Fatalf("auction = %s at %d, want alice at 41", res.Auction.CurrentBidderID, res.Auction.CurrentBidAmount)
	}
	if !res.WonViaProxy || res.SettledBid.Type != auction.BidTypeAuto {
		t.Fatalf("expected an auto settled bid, got %+v", res.SettledBid)
	}

	// Bob was outbid on the spot: he gets a counter window, locks nothing.
	if _, locked := env.participant(t, "bob"); locked != 0 {
		t.Fatalf("bob locked = %d, want 0", locked)
	}
	pending, ok, err := env.store.Repos().Timers().GetPending(ctx, opened.Auction.ID, "bob")
	if err != nil || !ok {
		t.Fatalf("bob pending timer missing: ok=%v err=%v", ok, err)
	}
	if !pending.Deadline.Equal(env.now.Add(time.Hour)) {
		t.Fatalf("bob deadline = %v, want %v", pending.Deadline, env.now.Add(time.Hour))
	}
	state, ok, _ := env.store.Repos().Auctions().GetUserState(ctx, opened.Auction.ID, "bob")
	if !ok || state != auction.UserStateCanCounter {
		t.Fatalf("bob state = %s, want can_counter", state)
	}
	if env.notifier.count(EventBidSurpassed) != 1 {
		t.Fatalf("expected one bid-surpassed event")
	}
}

func TestCounterBidAboveProxyTakesLead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 30, ProxyMax: 60,
	}); err != nil {
		t.Fatalf("open: %v", err)
	}

	env.advance(time.Minute)
	res, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "bob", Amount: 61,
	})
	if err != nil {
		t.Fatalf("bob bid: %v", err)
	}
	if res.Auction.CurrentBidderID != "bob" || res.Auction.CurrentBidAmount != 61 {
		t.Fatalf("auction = %s at %d, want bob at 61", res.Auction.CurrentBidderID, res.Auction.CurrentBidAmount)
	}
	if res.WonViaProxy {
		t.Fatalf("bob won manually, not via proxy")
	}

	// Alice keeps her (now trailing) proxy locked and gets a response window.
	if _, locked := env.participant(t, "alice"); locked != 60 {
		t.Fatalf("alice locked = %d, want 60", locked)
	}
	if _, locked := env.participant(t, "bob"); locked != 61 {
		t.Fatalf("bob locked = %d, want his manual lead 61", locked)
	}
	if _, ok, _ := env.store.Repos().Timers().GetPending(ctx, res.Auction.ID, "alice"); !ok {
		t.Fatalf("alice pending timer missing")
	}
}

func TestManualCounterAboveOwnProxyRelocksFullAmount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Alice's proxy tops out at 40, so bob's 50 passes her without a battle
	// and her proxy row stays active.
	opened, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 30, ProxyMax: 40,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	env.advance(time.Minute)
	if _, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "bob", Amount: 50,
	}); err != nil {
		t.Fatalf("bob bid: %v", err)
	}

	env.advance(time.Minute)
	res, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 55,
	})
	if err != nil {
		t.Fatalf("alice counter: %v", err)
	}
	if res.Auction.CurrentBidderID != "alice" || res.Auction.CurrentBidAmount != 55 {
		t.Fatalf("auction = %s at %d, want alice at 55", res.Auction.CurrentBidderID, res.Auction.CurrentBidAmount)
	}

	// The lead outgrew the proxy: the stale row must be deactivated and the
	// full 55 locked, not the proxy's 40.
	if p, ok, _ := env.store.Repos().Auctions().GetProxyBid(ctx, opened.Auction.ID, "alice"); ok && p.IsActive {
		t.Fatalf("alice proxy still active at max %d", p.MaxAmount)
	}
	if _, locked := env.participant(t, "alice"); locked != 55 {
		t.Fatalf("alice locked = %d, want 55", locked)
	}
	if _, locked := env.participant(t, "bob"); locked != 0 {
		t.Fatalf("bob locked = %d, want 0", locked)
	}
}

func TestLeaderCannotRaiseOwnBid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 30,
	}); err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 35,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestBidNotExceedingCurrentRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 40,
	}); err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "bob", Amount: 40,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCooldownBlocksBid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.store.WithinTx(ctx, func(ctx context.Context, r storage.Repos) error {
		return r.Cooldowns().Upsert(ctx, timer.Cooldown{
			ItemID:      "item-fw-1",
			UserID:      "alice",
			AbandonedAt: env.now.Add(-time.Hour),
			EndsAt:      env.now.Add(47 * time.Hour),
		})
	})
	if err != nil {
		t.Fatalf("seed cooldown: %v", err)
	}

	_, err = env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 30,
	})
	if !errors.Is(err, ErrInvalidInput) || !strings.Contains(err.Error(), "cooldown") {
		t.Fatalf("err = %v, want cooldown rejection", err)
	}
}

func TestSlotCeilingBlocksExtraRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.store.SeedItems(item.Item{ID: "item-gk-2", Name: "Backup Keeper", Role: item.RoleGoalkeeper, Quotation: 5})

	if _, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-gk-1", UserID: "alice", Amount: 10,
	}); err != nil {
		t.Fatalf("open keeper auction: %v", err)
	}

	// One goalkeeper slot: leading the first keeper blocks bidding a second.
	_, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-gk-2", UserID: "alice", Amount: 5,
	})
	if !errors.Is(err, ErrInvalidInput) || !strings.Contains(err.Error(), "slot ceiling") {
		t.Fatalf("err = %v, want slot ceiling rejection", err)
	}
}

func TestReserveRuleBlocksOverCommit(t *testing.T) {
	env := newTestEnv(t)

	// Budget 500, eleven empty slots: ten credits stay reserved.
	_, err := env.bids.PlaceBid(context.Background(), PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 491,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	if _, err := env.bids.PlaceBid(context.Background(), PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 490,
	}); err != nil {
		t.Fatalf("490 should clear the reserve: %v", err)
	}
}

func TestDuplicateOpenAuctionRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 30,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	err = env.store.WithinTx(ctx, func(ctx context.Context, r storage.Repos) error {
		dup := res.Auction
		dup.ID = "dup"
		return r.Auctions().Create(ctx, dup)
	})
	if !errors.Is(err, auction.ErrDuplicateOpen) {
		t.Fatalf("err = %v, want ErrDuplicateOpen", err)
	}
}

func TestLockedCreditsRecomputedNotDrifted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 30, ProxyMax: 60,
	}); err != nil {
		t.Fatalf("open forward: %v", err)
	}
	if _, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-mf-1", UserID: "alice", Amount: 25,
	}); err != nil {
		t.Fatalf("open midfield: %v", err)
	}

	// Proxy max on one auction plus a bare manual lead on the other.
	if _, locked := env.participant(t, "alice"); locked != 85 {
		t.Fatalf("alice locked = %d, want 85", locked)
	}

	env.advance(time.Minute)
	if _, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "bob", Amount: 61,
	}); err != nil {
		t.Fatalf("bob takes forward: %v", err)
	}

	// Alice lost the forward lead but her proxy row is still active, and her
	// midfield manual lead still counts. Repeated battles must land on the
	// same recomputed figure.
	if _, locked := env.participant(t, "alice"); locked != 85 {
		t.Fatalf("alice locked = %d after losing lead, want 85", locked)
	}
	if _, locked := env.participant(t, "bob"); locked != 61 {
		t.Fatalf("bob locked = %d, want 61", locked)
	}
}
