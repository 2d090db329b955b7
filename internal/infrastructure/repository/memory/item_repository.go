package memory

import (
	"context"

	"github.com/riskibarqy/draft-auction/internal/domain/item"
)

type ItemRepository struct {
	r repos
}

func (r *ItemRepository) GetByID(_ context.Context, itemID string) (item.Item, bool, error) {
	d, done := r.r.view()
	defer done()

	it, ok := d.items[itemID]
	return it, ok, nil
}
