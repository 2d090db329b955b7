package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/draft-auction/internal/domain/ledger"
	qb "github.com/riskibarqy/draft-auction/internal/platform/querybuilder"
)

type budgetTransactionTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	LeagueID  string    `db:"league_id"`
	UserID    string    `db:"user_id"`
	TxType    string    `db:"tx_type"`
	Amount    int64     `db:"amount"`
	Balance   int64     `db:"balance"`
	Reference string    `db:"reference"`
	CreatedAt time.Time `db:"created_at"`
}

func (m budgetTransactionTableModel) toDomain() ledger.BudgetTransaction {
	return ledger.BudgetTransaction{
		ID:        m.PublicID,
		LeagueID:  m.LeagueID,
		UserID:    m.UserID,
		Type:      ledger.TransactionType(m.TxType),
		Amount:    m.Amount,
		Balance:   m.Balance,
		Reference: m.Reference,
		CreatedAt: m.CreatedAt,
	}
}

type LedgerRepository struct {
	db sqlx.ExtContext
}

func NewLedgerRepository(db sqlx.ExtContext) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Insert(ctx context.Context, t ledger.BudgetTransaction) error {
	query, args, err := qb.InsertInto("budget_transactions").
		Columns("public_id", "league_id", "user_id", "tx_type", "amount", "balance", "reference", "created_at").
		Values(t.ID, t.LeagueID, t.UserID, string(t.Type), t.Amount, t.Balance, t.Reference, t.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert budget transaction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert budget transaction: %w", err)
	}

	return nil
}

func (r *LedgerRepository) ListByUser(ctx context.Context, leagueID, userID string) ([]ledger.BudgetTransaction, error) {
	query, args, err := qb.Select("*").From("budget_transactions").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("user_id", userID),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list budget transactions query: %w", err)
	}

	var rows []budgetTransactionTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list budget transactions: %w", err)
	}

	out := make([]ledger.BudgetTransaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
