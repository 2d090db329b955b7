package ledger

import (
	"fmt"
	"time"
)

// TransactionType is the business reason for a credit movement.
type TransactionType string

const (
	TypePurchase   TransactionType = "purchase"
	TypePenalty    TransactionType = "penalty"
	TypeRefund     TransactionType = "refund"
	TypeAdjustment TransactionType = "adjustment"
)

// BudgetTransaction is an immutable ledger row for one credit movement.
// Amount is signed (debits negative) and Balance carries the resulting
// budget, forming the audit trail for the locked-credits invariant.
type BudgetTransaction struct {
	ID        string
	LeagueID  string
	UserID    string
	Type      TransactionType
	Amount    int64
	Balance   int64
	Reference string
	CreatedAt time.Time
}

func (t BudgetTransaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("budget transaction id is required")
	}
	if t.LeagueID == "" {
		return fmt.Errorf("budget transaction league id is required")
	}
	if t.UserID == "" {
		return fmt.Errorf("budget transaction user id is required")
	}
	if t.Amount == 0 {
		return fmt.Errorf("budget transaction amount cannot be zero")
	}

	return nil
}
