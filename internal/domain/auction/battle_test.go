package auction

import (
	"testing"
	"time"
)

func battleBid(userID string, amount int64, at int64) BattleBid {
	return BattleBid{
		UserID:   userID,
		Amount:   amount,
		Type:     BidTypeManual,
		PlacedAt: time.Unix(at, 0),
	}
}

func proxy(userID string, max int64, createdAt int64) ProxyBid {
	return ProxyBid{
		AuctionID: "auc-1",
		UserID:    userID,
		MaxAmount: max,
		IsActive:  true,
		CreatedAt: time.Unix(createdAt, 0),
	}
}

func TestSimulate_NoQualifyingProxy(t *testing.T) {
	result := Simulate(battleBid("u2", 40, 3000), 30, []ProxyBid{
		proxy("u1", 35, 1000),
	})

	if result.WinnerID != "u2" {
		t.Fatalf("expected winner u2, got %s", result.WinnerID)
	}
	if result.Amount != 40 {
		t.Fatalf("expected amount 40, got %d", result.Amount)
	}
	if !result.InitialBidderWonManually {
		t.Fatal("expected manual win flag")
	}
	if result.WonViaProxy {
		t.Fatal("did not expect proxy win flag")
	}
}

func TestSimulate_SingleProxyBeatsManual(t *testing.T) {
	// One proxy of max M against a manual bid of B (M > B) settles at min(B+1, M).
	result := Simulate(battleBid("u2", 40, 3000), 30, []ProxyBid{
		proxy("u1", 50, 1000),
	})

	if result.WinnerID != "u1" {
		t.Fatalf("expected winner u1, got %s", result.WinnerID)
	}
	if result.Amount != 41 {
		t.Fatalf("expected amount 41, got %d", result.Amount)
	}
	if !result.WonViaProxy {
		t.Fatal("expected proxy win flag")
	}
	if len(result.OutbidUserIDs) != 0 {
		t.Fatalf("expected no outbid proxies, got %v", result.OutbidUserIDs)
	}
}

func TestSimulate_SingleProxyMaxEqualsManualPlusOne(t *testing.T) {
	result := Simulate(battleBid("u2", 40, 3000), 30, []ProxyBid{
		proxy("u1", 41, 1000),
	})

	if result.WinnerID != "u1" || result.Amount != 41 {
		t.Fatalf("expected u1 at 41, got %s at %d", result.WinnerID, result.Amount)
	}
}

func TestSimulate_TieEarlierProxyWinsAtOwnMax(t *testing.T) {
	// Manual bid 40 by u2; proxy u1 max=40 created earlier -> u1 wins at 40.
	result := Simulate(battleBid("u2", 40, 3000), 30, []ProxyBid{
		proxy("u1", 40, 1000),
	})

	if result.WinnerID != "u1" {
		t.Fatalf("expected winner u1, got %s", result.WinnerID)
	}
	if result.Amount != 40 {
		t.Fatalf("expected amount 40, got %d", result.Amount)
	}
	if result.InitialBidderWonManually {
		t.Fatal("did not expect manual win flag")
	}
}

func TestSimulate_TieEarlierManualWins(t *testing.T) {
	// Manual bid 40 by u2 placed earlier; proxy u1 max=40 created later -> u2
	// wins at 40 with the manual flag set.
	result := Simulate(battleBid("u2", 40, 1000), 30, []ProxyBid{
		proxy("u1", 40, 2000),
	})

	if result.WinnerID != "u2" {
		t.Fatalf("expected winner u2, got %s", result.WinnerID)
	}
	if result.Amount != 40 {
		t.Fatalf("expected amount 40, got %d", result.Amount)
	}
	if !result.InitialBidderWonManually {
		t.Fatal("expected manual win flag")
	}
	if result.WonViaProxy {
		t.Fatal("did not expect proxy win flag")
	}
	if len(result.OutbidUserIDs) != 1 || result.OutbidUserIDs[0] != "u1" {
		t.Fatalf("expected u1 outbid, got %v", result.OutbidUserIDs)
	}
}

func TestSimulate_MultiProxyRanking(t *testing.T) {
	result := Simulate(battleBid("u4", 40, 5000), 30, []ProxyBid{
		proxy("u1", 80, 1000),
		proxy("u2", 60, 2000),
		proxy("u3", 45, 3000),
	})

	if result.WinnerID != "u1" {
		t.Fatalf("expected winner u1, got %s", result.WinnerID)
	}
	if result.Amount != 61 {
		t.Fatalf("expected amount 61 (second best 60 + 1), got %d", result.Amount)
	}
	if len(result.OutbidUserIDs) != 2 {
		t.Fatalf("expected 2 outbid proxies, got %v", result.OutbidUserIDs)
	}
}

func TestSimulate_TieAmongProxiesEarliestCommitWins(t *testing.T) {
	result := Simulate(battleBid("u3", 40, 5000), 30, []ProxyBid{
		proxy("u2", 70, 2000),
		proxy("u1", 70, 1000),
	})

	if result.WinnerID != "u1" {
		t.Fatalf("expected earliest proxy u1 to win, got %s", result.WinnerID)
	}
	if result.Amount != 70 {
		t.Fatalf("expected tie settled at own max 70, got %d", result.Amount)
	}
}

func TestSimulate_OwnProxyMergesAndKeepsPriority(t *testing.T) {
	// u2 re-bids manually while holding their own earlier proxy. The proxy's
	// earlier timestamp and higher max carry over to the manual entrant.
	result := Simulate(battleBid("u2", 40, 5000), 30, []ProxyBid{
		proxy("u2", 60, 1000),
		proxy("u1", 60, 2000),
	})

	if result.WinnerID != "u2" {
		t.Fatalf("expected winner u2, got %s", result.WinnerID)
	}
	if result.Amount != 60 {
		t.Fatalf("expected tie settled at own max 60, got %d", result.Amount)
	}
	if !result.WonViaProxy {
		t.Fatal("expected proxy win flag when own proxy raised the price")
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	bid := battleBid("u4", 40, 5000)
	proxies := []ProxyBid{
		proxy("u1", 80, 1000),
		proxy("u2", 60, 2000),
		proxy("u3", 45, 3000),
	}

	first := Simulate(bid, 30, proxies)
	for i := 0; i < 50; i++ {
		again := Simulate(bid, 30, proxies)
		if again.WinnerID != first.WinnerID || again.Amount != first.Amount {
			t.Fatalf("simulation diverged on run %d: %+v vs %+v", i, again, first)
		}
	}
}

func TestSimulate_InactiveProxiesIgnored(t *testing.T) {
	inactive := proxy("u1", 90, 1000)
	inactive.IsActive = false

	result := Simulate(battleBid("u2", 40, 5000), 30, []ProxyBid{inactive})

	if result.WinnerID != "u2" || result.Amount != 40 {
		t.Fatalf("expected u2 at 40, got %s at %d", result.WinnerID, result.Amount)
	}
}
