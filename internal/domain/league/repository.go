package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	ListByStatus(ctx context.Context, status Status) ([]League, error)
}
