package ledger

import "context"

// Repository describes budget-transaction persistence needs from use cases.
type Repository interface {
	Insert(ctx context.Context, t BudgetTransaction) error
	ListByUser(ctx context.Context, leagueID, userID string) ([]BudgetTransaction, error)
}
