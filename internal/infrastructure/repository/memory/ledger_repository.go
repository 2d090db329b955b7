package memory

import (
	"context"

	"github.com/riskibarqy/draft-auction/internal/domain/ledger"
)

type LedgerRepository struct {
	r repos
}

func (r *LedgerRepository) Insert(_ context.Context, t ledger.BudgetTransaction) error {
	d, done := r.r.mutate()
	defer done()

	d.ledger = append(d.ledger, t)

	return nil
}

func (r *LedgerRepository) ListByUser(_ context.Context, leagueID, userID string) ([]ledger.BudgetTransaction, error) {
	d, done := r.r.view()
	defer done()

	out := make([]ledger.BudgetTransaction, 0)
	for _, t := range d.ledger {
		if t.LeagueID == leagueID && t.UserID == userID {
			out = append(out, t)
		}
	}

	return out, nil
}
