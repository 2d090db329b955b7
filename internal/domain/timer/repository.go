package timer

import (
	"context"
	"time"
)

// Repository describes response-timer persistence needs from use cases.
type Repository interface {
	// UpsertPending creates the timer or refreshes an existing pending one in
	// place. The one-pending-per-(auction, user) invariant holds afterwards.
	UpsertPending(ctx context.Context, t ResponseTimer) error
	GetPending(ctx context.Context, auctionID, userID string) (ResponseTimer, bool, error)
	// MarkActionTaken is idempotent: acting with no pending timer is not an error.
	MarkActionTaken(ctx context.Context, auctionID, userID string) error
	MarkDeadlineMissed(ctx context.Context, auctionID, userID string) error
	ListExpiredPending(ctx context.Context, now time.Time) ([]ResponseTimer, error)
}

// CooldownRepository describes abandon-cooldown persistence needs.
type CooldownRepository interface {
	Upsert(ctx context.Context, c Cooldown) error
	Get(ctx context.Context, itemID, userID string) (Cooldown, bool, error)
}
