package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
)

type AuctionRepository struct {
	r repos
}

func (r *AuctionRepository) Create(_ context.Context, a auction.Auction) error {
	d, done := r.r.mutate()
	defer done()

	for _, existing := range d.auctions {
		if existing.LeagueID == a.LeagueID && existing.ItemID == a.ItemID && existing.Status.IsOpen() {
			return auction.ErrDuplicateOpen
		}
	}
	if _, exists := d.auctions[a.ID]; exists {
		return fmt.Errorf("auction %s already exists", a.ID)
	}
	d.auctions[a.ID] = a
	d.auctionOrder = append(d.auctionOrder, a.ID)

	return nil
}

func (r *AuctionRepository) GetByID(_ context.Context, auctionID string) (auction.Auction, bool, error) {
	d, done := r.r.view()
	defer done()

	a, ok := d.auctions[auctionID]
	return a, ok, nil
}

func (r *AuctionRepository) GetOpenByItem(_ context.Context, leagueID, itemID string) (auction.Auction, bool, error) {
	d, done := r.r.view()
	defer done()

	for _, id := range d.auctionOrder {
		a := d.auctions[id]
		if a.LeagueID == leagueID && a.ItemID == itemID && a.Status.IsOpen() {
			return a, true, nil
		}
	}

	return auction.Auction{}, false, nil
}

func (r *AuctionRepository) ListOpenByLeague(_ context.Context, leagueID string) ([]auction.Auction, error) {
	d, done := r.r.view()
	defer done()

	out := make([]auction.Auction, 0)
	for _, id := range d.auctionOrder {
		a := d.auctions[id]
		if a.LeagueID == leagueID && a.Status.IsOpen() {
			out = append(out, a)
		}
	}

	return out, nil
}

func (r *AuctionRepository) ListExpiredActive(_ context.Context, now time.Time) ([]auction.Auction, error) {
	d, done := r.r.view()
	defer done()

	out := make([]auction.Auction, 0)
	for _, id := range d.auctionOrder {
		a := d.auctions[id]
		if a.Status == auction.StatusActive && a.Expired(now) {
			out = append(out, a)
		}
	}

	return out, nil
}

func (r *AuctionRepository) ListLeadingByUser(_ context.Context, leagueID, userID string) ([]auction.Auction, error) {
	d, done := r.r.view()
	defer done()

	out := make([]auction.Auction, 0)
	for _, id := range d.auctionOrder {
		a := d.auctions[id]
		if a.LeagueID == leagueID && a.CurrentBidderID == userID && a.Status.IsOpen() {
			out = append(out, a)
		}
	}

	return out, nil
}

func (r *AuctionRepository) SetCurrentBid(_ context.Context, auctionID string, amount int64, bidderID string) error {
	d, done := r.r.mutate()
	defer done()

	a, ok := d.auctions[auctionID]
	if !ok {
		return fmt.Errorf("auction %s not found", auctionID)
	}
	a.CurrentBidAmount = amount
	a.CurrentBidderID = bidderID
	d.auctions[auctionID] = a

	return nil
}

func (r *AuctionRepository) SetStatus(_ context.Context, auctionID string, status auction.Status) error {
	d, done := r.r.mutate()
	defer done()

	a, ok := d.auctions[auctionID]
	if !ok {
		return fmt.Errorf("auction %s not found", auctionID)
	}
	a.Status = status
	d.auctions[auctionID] = a

	return nil
}

func (r *AuctionRepository) InsertBid(_ context.Context, b auction.Bid) error {
	d, done := r.r.mutate()
	defer done()

	d.bids[b.AuctionID] = append(d.bids[b.AuctionID], b)

	return nil
}

func (r *AuctionRepository) ListBids(_ context.Context, auctionID string) ([]auction.Bid, error) {
	d, done := r.r.view()
	defer done()

	return append([]auction.Bid(nil), d.bids[auctionID]...), nil
}

func (r *AuctionRepository) UpsertProxyBid(_ context.Context, p auction.ProxyBid) error {
	d, done := r.r.mutate()
	defer done()

	key := pairKey(p.AuctionID, p.UserID)
	if existing, ok := d.proxies[key]; ok {
		// The original priority timestamp survives a raise.
		p.CreatedAt = existing.CreatedAt
	}
	d.proxies[key] = p

	return nil
}

func (r *AuctionRepository) GetProxyBid(_ context.Context, auctionID, userID string) (auction.ProxyBid, bool, error) {
	d, done := r.r.view()
	defer done()

	p, ok := d.proxies[pairKey(auctionID, userID)]
	return p, ok, nil
}

func (r *AuctionRepository) ListActiveProxyBids(_ context.Context, auctionID string) ([]auction.ProxyBid, error) {
	d, done := r.r.view()
	defer done()

	out := make([]auction.ProxyBid, 0)
	for _, p := range d.proxies {
		if p.AuctionID == auctionID && p.IsActive {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *AuctionRepository) ListActiveProxyBidsByUser(_ context.Context, leagueID, userID string) ([]auction.ProxyBid, error) {
	d, done := r.r.view()
	defer done()

	out := make([]auction.ProxyBid, 0)
	for _, p := range d.proxies {
		if p.UserID != userID || !p.IsActive {
			continue
		}
		a, ok := d.auctions[p.AuctionID]
		if !ok || a.LeagueID != leagueID || !a.Status.IsOpen() {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}

func (r *AuctionRepository) DeactivateProxyBid(_ context.Context, auctionID, userID string) error {
	d, done := r.r.mutate()
	defer done()

	key := pairKey(auctionID, userID)
	if p, ok := d.proxies[key]; ok {
		p.IsActive = false
		d.proxies[key] = p
	}

	return nil
}

func (r *AuctionRepository) DeactivateProxyBids(_ context.Context, auctionID string) error {
	d, done := r.r.mutate()
	defer done()

	for key, p := range d.proxies {
		if p.AuctionID == auctionID && p.IsActive {
			p.IsActive = false
			d.proxies[key] = p
		}
	}

	return nil
}

func (r *AuctionRepository) GetUserState(_ context.Context, auctionID, userID string) (auction.UserState, bool, error) {
	d, done := r.r.view()
	defer done()

	state, ok := d.userStates[pairKey(auctionID, userID)]
	return state, ok, nil
}

func (r *AuctionRepository) SetUserState(_ context.Context, auctionID, userID string, state auction.UserState) error {
	d, done := r.r.mutate()
	defer done()

	d.userStates[pairKey(auctionID, userID)] = state

	return nil
}
