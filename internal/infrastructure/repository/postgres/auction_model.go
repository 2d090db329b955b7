package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
)

type auctionTableModel struct {
	ID               int64          `db:"id"`
	PublicID         string         `db:"public_id"`
	LeagueID         string         `db:"league_id"`
	ItemID           string         `db:"item_id"`
	Status           string         `db:"status"`
	CurrentBidAmount int64          `db:"current_bid_amount"`
	CurrentBidderID  sql.NullString `db:"current_bidder_id"`
	StartedAt        time.Time      `db:"started_at"`
	ScheduledEndAt   time.Time      `db:"scheduled_end_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (m auctionTableModel) toDomain() auction.Auction {
	return auction.Auction{
		ID:               m.PublicID,
		LeagueID:         m.LeagueID,
		ItemID:           m.ItemID,
		Status:           auction.Status(m.Status),
		CurrentBidAmount: m.CurrentBidAmount,
		CurrentBidderID:  m.CurrentBidderID.String,
		StartedAt:        m.StartedAt,
		ScheduledEndAt:   m.ScheduledEndAt,
	}
}

type bidTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	AuctionID string    `db:"auction_id"`
	UserID    string    `db:"user_id"`
	Amount    int64     `db:"amount"`
	BidType   string    `db:"bid_type"`
	PlacedAt  time.Time `db:"placed_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (m bidTableModel) toDomain() auction.Bid {
	return auction.Bid{
		ID:        m.PublicID,
		AuctionID: m.AuctionID,
		UserID:    m.UserID,
		Amount:    m.Amount,
		Type:      auction.BidType(m.BidType),
		PlacedAt:  m.PlacedAt,
	}
}

type proxyBidTableModel struct {
	AuctionID string    `db:"auction_id"`
	UserID    string    `db:"user_id"`
	MaxAmount int64     `db:"max_amount"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m proxyBidTableModel) toDomain() auction.ProxyBid {
	return auction.ProxyBid{
		AuctionID: m.AuctionID,
		UserID:    m.UserID,
		MaxAmount: m.MaxAmount,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}
}
