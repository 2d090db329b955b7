package auction

import (
	"context"
	"time"
)

// Repository describes auction, bid and proxy-bid persistence needs from use
// cases. Implementations must enforce at most one open auction per
// (league, item): Create returns ErrDuplicateOpen on violation.
type Repository interface {
	Create(ctx context.Context, a Auction) error
	GetByID(ctx context.Context, auctionID string) (Auction, bool, error)
	GetOpenByItem(ctx context.Context, leagueID, itemID string) (Auction, bool, error)
	ListOpenByLeague(ctx context.Context, leagueID string) ([]Auction, error)
	ListExpiredActive(ctx context.Context, now time.Time) ([]Auction, error)
	ListLeadingByUser(ctx context.Context, leagueID, userID string) ([]Auction, error)
	SetCurrentBid(ctx context.Context, auctionID string, amount int64, bidderID string) error
	SetStatus(ctx context.Context, auctionID string, status Status) error

	InsertBid(ctx context.Context, b Bid) error
	ListBids(ctx context.Context, auctionID string) ([]Bid, error)

	UpsertProxyBid(ctx context.Context, p ProxyBid) error
	GetProxyBid(ctx context.Context, auctionID, userID string) (ProxyBid, bool, error)
	ListActiveProxyBids(ctx context.Context, auctionID string) ([]ProxyBid, error)
	ListActiveProxyBidsByUser(ctx context.Context, leagueID, userID string) ([]ProxyBid, error)
	DeactivateProxyBid(ctx context.Context, auctionID, userID string) error
	DeactivateProxyBids(ctx context.Context, auctionID string) error

	GetUserState(ctx context.Context, auctionID, userID string) (UserState, bool, error)
	SetUserState(ctx context.Context, auctionID, userID string, state UserState) error
}
