package auction

import (
	"sort"
	"time"
)

// BattleBid is the incoming manual bid competing in a battle.
type BattleBid struct {
	UserID   string
	Amount   int64
	Type     BidType
	PlacedAt time.Time
}

// BattleResult is the deterministic outcome of one proxy-bid battle.
type BattleResult struct {
	WinnerID string
	Amount   int64
	// WonViaProxy is true when the settled bid should be tagged auto: the
	// winner differs from the manual bidder, or the manual bidder's own proxy
	// raised the price beyond their submitted amount.
	WonViaProxy bool
	// InitialBidderWonManually is true when the manual bidder won at exactly
	// their submitted amount.
	InitialBidderWonManually bool
	// OutbidUserIDs lists every proxy holder who qualified for the battle and
	// lost. Their proxy rows must be deactivated and credits recomputed.
	OutbidUserIDs []string
}

type battleEntrant struct {
	userID   string
	max      int64
	priority time.Time
	manual   bool
}

// Simulate resolves one battle between a manual bid and the active proxy bids
// on an auction. It is a pure function: same inputs, same winner and amount.
//
// Ranking is by max amount descending, ties broken by earliest priority
// timestamp ascending: the first commitment holds priority. A proxy bid
// belonging to the manual bidder is merged into their entrant, keeping the
// proxy's earlier timestamp.
func Simulate(bid BattleBid, currentBid int64, proxies []ProxyBid) BattleResult {
	manual := battleEntrant{
		userID:   bid.UserID,
		max:      bid.Amount,
		priority: bid.PlacedAt,
		manual:   true,
	}

	merged := false
	entrants := make([]battleEntrant, 0, len(proxies)+1)
	for _, proxy := range proxies {
		if !proxy.IsActive || proxy.MaxAmount < bid.Amount {
			continue
		}
		if proxy.UserID == bid.UserID {
			merged = true
			if proxy.MaxAmount > manual.max {
				manual.max = proxy.MaxAmount
			}
			if proxy.CreatedAt.Before(manual.priority) {
				manual.priority = proxy.CreatedAt
			}
			continue
		}
		entrants = append(entrants, battleEntrant{
			userID:   proxy.UserID,
			max:      proxy.MaxAmount,
			priority: proxy.CreatedAt,
		})
	}
	entrants = append(entrants, manual)

	sort.SliceStable(entrants, func(i, j int) bool {
		if entrants[i].max != entrants[j].max {
			return entrants[i].max > entrants[j].max
		}
		return entrants[i].priority.Before(entrants[j].priority)
	})

	winner := entrants[0]
	result := BattleResult{WinnerID: winner.userID}

	switch {
	case len(entrants) == 1:
		if winner.manual {
			result.Amount = bid.Amount
		} else {
			result.Amount = minInt64(currentBid+1, winner.max)
		}
	case entrants[1].max == winner.max:
		// True tie on max: the earlier commitment wins and pays its own max.
		result.Amount = winner.max
	default:
		result.Amount = minInt64(entrants[1].max+1, winner.max)
	}

	for _, e := range entrants[1:] {
		if !e.manual {
			result.OutbidUserIDs = append(result.OutbidUserIDs, e.userID)
		}
	}

	result.WonViaProxy = !winner.manual || (merged && result.Amount > bid.Amount)
	result.InitialBidderWonManually = winner.manual && !result.WonViaProxy

	return result
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
