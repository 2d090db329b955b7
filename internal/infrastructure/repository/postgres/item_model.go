package postgres

import (
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/item"
)

type itemTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	Name      string     `db:"name"`
	Role      string     `db:"role"`
	Quotation int64      `db:"quotation"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (m itemTableModel) toDomain() item.Item {
	return item.Item{
		ID:        m.PublicID,
		Name:      m.Name,
		Role:      item.Role(m.Role),
		Quotation: m.Quotation,
	}
}
