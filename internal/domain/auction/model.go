package auction

import (
	"errors"
	"fmt"
	"time"
)

// Status is the auction lifecycle state.
type Status string

const (
	StatusActive  Status = "active"
	StatusClosing Status = "closing"
	StatusSold    Status = "sold"
	StatusNotSold Status = "not_sold"
)

// IsOpen reports whether the auction still accepts bids or settlement.
func (s Status) IsOpen() bool {
	return s == StatusActive || s == StatusClosing
}

// UserState tracks each bidder's standing inside one auction.
// The current highest bidder is always treated as leading regardless of the
// stored value.
type UserState string

const (
	UserStateLeading    UserState = "leading"
	UserStateCanCounter UserState = "can_counter"
	UserStateAbandoned  UserState = "abandoned"
)

// BidType distinguishes how a settled bid was produced.
type BidType string

const (
	BidTypeManual BidType = "manual"
	BidTypeAuto   BidType = "auto"
	BidTypeQuick  BidType = "quick"
)

// ErrDuplicateOpen is returned when a second open auction is created for the
// same (league, item) pair. Creation must fail loudly, never merge.
var ErrDuplicateOpen = errors.New("an open auction already exists for this item")

// Auction is one open or settled auction for a (league, item) pair.
type Auction struct {
	ID               string
	LeagueID         string
	ItemID           string
	Status           Status
	CurrentBidAmount int64
	CurrentBidderID  string
	StartedAt        time.Time
	ScheduledEndAt   time.Time
}

// Expired reports whether the scheduled end has passed.
func (a Auction) Expired(now time.Time) bool {
	return !now.Before(a.ScheduledEndAt)
}

func (a Auction) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("auction id is required")
	}
	if a.LeagueID == "" {
		return fmt.Errorf("auction league id is required")
	}
	if a.ItemID == "" {
		return fmt.Errorf("auction item id is required")
	}
	if a.CurrentBidAmount <= 0 {
		return fmt.Errorf("auction current bid must be greater than zero")
	}
	if a.CurrentBidderID == "" {
		return fmt.Errorf("auction current bidder is required")
	}
	if !a.ScheduledEndAt.After(a.StartedAt) {
		return fmt.Errorf("auction scheduled end must be after start")
	}

	return nil
}

// Bid is an immutable, append-only record. Only the final settled amount per
// battle is recorded, not every intermediate simulated step. PlacedAt is the
// real submission time and is the tie-break key against proxy bids.
type Bid struct {
	ID        string
	AuctionID string
	UserID    string
	Amount    int64
	Type      BidType
	PlacedAt  time.Time
}

// ProxyBid is a standing maximum the engine bids on a user's behalf.
// CreatedAt is the tie-break key: the earlier commitment holds priority.
type ProxyBid struct {
	AuctionID string
	UserID    string
	MaxAmount int64
	IsActive  bool
	CreatedAt time.Time
}
