package participant

import (
	"fmt"
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/item"
)

// Participant is a (league, user) pair with its credit balances.
//
// LockedCredits is never adjusted by deltas: settlement recomputes it as the
// sum of the user's active proxy-bid maxima plus manually-winning bid amounts
// not backed by a proxy bid, across all open auctions in the league.
type Participant struct {
	LeagueID      string
	UserID        string
	CurrentBudget int64
	LockedCredits int64
}

// Available is the budget not reserved against open commitments.
func (p Participant) Available() int64 {
	return p.CurrentBudget - p.LockedCredits
}

func (p Participant) Validate() error {
	if p.LeagueID == "" {
		return fmt.Errorf("participant league id is required")
	}
	if p.UserID == "" {
		return fmt.Errorf("participant user id is required")
	}
	if p.CurrentBudget < 0 {
		return fmt.Errorf("participant budget cannot be negative")
	}
	if p.LockedCredits < 0 {
		return fmt.Errorf("participant locked credits cannot be negative")
	}

	return nil
}

// Assignment is a settled roster slot: the item a user won and what they paid.
// Per-role acquired counts are derived by counting assignments, never stored.
type Assignment struct {
	LeagueID   string
	ItemID     string
	UserID     string
	Role       item.Role
	Price      int64
	AssignedAt time.Time
}
