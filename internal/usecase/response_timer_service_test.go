package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
	"github.com/riskibarqy/draft-auction/internal/domain/timer"
	"github.com/riskibarqy/draft-auction/internal/infrastructure/repository/memory"
)

// displaceAlice opens an auction for alice and lets bob take the lead, which
// leaves alice holding a pending response timer.
func displaceAlice(t *testing.T, env *testEnv) string {
	t.Helper()
	ctx := context.Background()

	res, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 30,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	env.advance(time.Minute)
	if _, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "bob", Amount: 40,
	}); err != nil {
		t.Fatalf("bob bid: %v", err)
	}

	if _, ok, _ := env.store.Repos().Timers().GetPending(ctx, res.Auction.ID, "alice"); !ok {
		t.Fatalf("alice pending timer missing")
	}

	return res.Auction.ID
}

func TestExplicitAbandonIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auctionID := displaceAlice(t, env)

	if err := env.timers.Abandon(ctx, auctionID, "alice"); err != nil {
		t.Fatalf("abandon: %v", err)
	}

	if _, ok, _ := env.store.Repos().Timers().GetPending(ctx, auctionID, "alice"); ok {
		t.Fatalf("timer still pending after abandon")
	}
	state, ok, _ := env.store.Repos().Auctions().GetUserState(ctx, auctionID, "alice")
	if !ok || state != auction.UserStateAbandoned {
		t.Fatalf("alice state = %s, want abandoned", state)
	}

	// No cooldown for a voluntary walk-away.
	if _, ok, _ := env.store.Repos().Cooldowns().Get(ctx, "item-fw-1", "alice"); ok {
		t.Fatalf("unexpected cooldown after explicit abandon")
	}

	if err := env.timers.Abandon(ctx, auctionID, "alice"); err != nil {
		t.Fatalf("second abandon should be a no-op: %v", err)
	}
}

func TestLeaderCannotAbandon(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auctionID := displaceAlice(t, env)

	err := env.timers.Abandon(ctx, auctionID, "bob")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSweepAutoAbandonsMissedDeadline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auctionID := displaceAlice(t, env)

	env.advance(90 * time.Minute)
	sweep, err := env.timers.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if sweep.Processed != 1 {
		t.Fatalf("sweep processed %d, want 1", sweep.Processed)
	}

	if _, ok, _ := env.store.Repos().Timers().GetPending(ctx, auctionID, "alice"); ok {
		t.Fatalf("timer still pending after sweep")
	}
	state, ok, _ := env.store.Repos().Auctions().GetUserState(ctx, auctionID, "alice")
	if !ok || state != auction.UserStateAbandoned {
		t.Fatalf("alice state = %s, want abandoned", state)
	}

	cd, ok, err := env.store.Repos().Cooldowns().Get(ctx, "item-fw-1", "alice")
	if err != nil || !ok {
		t.Fatalf("cooldown missing: ok=%v err=%v", ok, err)
	}
	if !cd.EndsAt.Equal(env.now.Add(48 * time.Hour)) {
		t.Fatalf("cooldown ends %v, want %v", cd.EndsAt, env.now.Add(48*time.Hour))
	}

	// Personal notification plus the league-wide announcement.
	if got := env.notifier.count(EventUserAbandoned); got != 2 {
		t.Fatalf("user-abandoned events = %d, want 2", got)
	}

	// Nothing left for a second pass.
	sweep, err = env.timers.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if sweep.Processed != 0 {
		t.Fatalf("second sweep processed %d, want 0", sweep.Processed)
	}
}

func TestCooldownAfterAutoAbandonBlocksRebid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	displaceAlice(t, env)

	env.advance(90 * time.Minute)
	if _, err := env.timers.SweepExpired(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	_, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 50,
	})
	if !errors.Is(err, ErrInvalidInput) || !strings.Contains(err.Error(), "cooldown") {
		t.Fatalf("err = %v, want cooldown rejection", err)
	}
}

func TestTimerRefreshedInPlaceOnRepeatedOutbid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auctionID := displaceAlice(t, env)

	first, _, _ := env.store.Repos().Timers().GetPending(ctx, auctionID, "alice")

	// Alice counters, bob outbids again: her timer must refresh, not duplicate.
	env.advance(10 * time.Minute)
	if _, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "alice", Amount: 45,
	}); err != nil {
		t.Fatalf("alice counter: %v", err)
	}
	env.advance(10 * time.Minute)
	if _, err := env.bids.PlaceBid(ctx, PlaceBidInput{
		LeagueID: memory.LeagueIDDraftDemo, ItemID: "item-fw-1", UserID: "bob", Amount: 50,
	}); err != nil {
		t.Fatalf("bob outbids again: %v", err)
	}

	second, ok, err := env.store.Repos().Timers().GetPending(ctx, auctionID, "alice")
	if err != nil || !ok {
		t.Fatalf("refreshed timer missing: ok=%v err=%v", ok, err)
	}
	if second.Status != timer.StatusPending {
		t.Fatalf("status = %s, want pending", second.Status)
	}
	if !second.Deadline.After(first.Deadline) {
		t.Fatalf("deadline %v not refreshed past %v", second.Deadline, first.Deadline)
	}
}
