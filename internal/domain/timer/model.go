package timer

import (
	"fmt"
	"time"
)

// ResponseStatus is the state of a per-(auction, user) response window.
type ResponseStatus string

const (
	// StatusPending means the outbid user still has time to counter or abandon.
	StatusPending ResponseStatus = "pending"
	// StatusActionTaken means the user counter-bid or explicitly abandoned.
	StatusActionTaken ResponseStatus = "action_taken"
	// StatusDeadlineMissed means the sweep expired the window.
	StatusDeadlineMissed ResponseStatus = "deadline_missed"
)

// ResponseTimer tracks an outbid user's window to counter-bid or abandon.
// At most one pending timer exists per (auction, user); re-notifying refreshes
// the deadline in place rather than duplicating the row.
type ResponseTimer struct {
	AuctionID  string
	UserID     string
	NotifiedAt time.Time
	Deadline   time.Time
	Status     ResponseStatus
}

func (t ResponseTimer) Expired(now time.Time) bool {
	return t.Status == StatusPending && !now.Before(t.Deadline)
}

func (t ResponseTimer) Validate() error {
	if t.AuctionID == "" {
		return fmt.Errorf("response timer auction id is required")
	}
	if t.UserID == "" {
		return fmt.Errorf("response timer user id is required")
	}
	if !t.Deadline.After(t.NotifiedAt) {
		return fmt.Errorf("response timer deadline must be after notification")
	}

	return nil
}

// Cooldown blocks a user from re-bidding on an item they abandoned.
type Cooldown struct {
	ItemID      string
	UserID      string
	AbandonedAt time.Time
	EndsAt      time.Time
}

func (c Cooldown) Active(now time.Time) bool {
	return now.Before(c.EndsAt)
}
