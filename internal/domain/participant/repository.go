package participant

import (
	"context"

	"github.com/riskibarqy/draft-auction/internal/domain/item"
)

// Repository describes participant and roster persistence needs from use cases.
type Repository interface {
	Get(ctx context.Context, leagueID, userID string) (Participant, bool, error)
	SetBalances(ctx context.Context, leagueID, userID string, currentBudget, lockedCredits int64) error

	AssignmentByItem(ctx context.Context, leagueID, itemID string) (Assignment, bool, error)
	InsertAssignment(ctx context.Context, assignment Assignment) error
	ListAssignmentsByUser(ctx context.Context, leagueID, userID string) ([]Assignment, error)
	CountAssignmentsByRole(ctx context.Context, leagueID, userID string) (map[item.Role]int, error)
}
