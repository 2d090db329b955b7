package compliance

import "context"

// Repository describes compliance-cycle persistence needs from use cases.
type Repository interface {
	Get(ctx context.Context, leagueID, userID, phase string) (Status, bool, error)
	Upsert(ctx context.Context, s Status) error
	// ListNonCompliant returns every row with a running violation timer for
	// the given league.
	ListNonCompliant(ctx context.Context, leagueID string) ([]Status, error)
}
