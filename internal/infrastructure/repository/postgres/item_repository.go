package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/draft-auction/internal/domain/item"
	qb "github.com/riskibarqy/draft-auction/internal/platform/querybuilder"
)

type ItemRepository struct {
	db sqlx.ExtContext
}

func NewItemRepository(db sqlx.ExtContext) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) GetByID(ctx context.Context, itemID string) (item.Item, bool, error) {
	query, args, err := qb.Select("*").From("items").
		Where(
			qb.Eq("public_id", itemID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return item.Item{}, false, fmt.Errorf("build get item by id query: %w", err)
	}

	var row itemTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return item.Item{}, false, nil
		}
		return item.Item{}, false, fmt.Errorf("get item by id: %w", err)
	}

	return row.toDomain(), true, nil
}
