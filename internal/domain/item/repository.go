package item

import "context"

// Repository describes item persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, itemID string) (Item, bool, error)
}
