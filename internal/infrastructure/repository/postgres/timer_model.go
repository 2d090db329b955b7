package postgres

import (
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/timer"
)

type responseTimerTableModel struct {
	ID         int64     `db:"id"`
	AuctionID  string    `db:"auction_id"`
	UserID     string    `db:"user_id"`
	NotifiedAt time.Time `db:"notified_at"`
	Deadline   time.Time `db:"deadline"`
	Status     string    `db:"status"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (m responseTimerTableModel) toDomain() timer.ResponseTimer {
	return timer.ResponseTimer{
		AuctionID:  m.AuctionID,
		UserID:     m.UserID,
		NotifiedAt: m.NotifiedAt,
		Deadline:   m.Deadline,
		Status:     timer.ResponseStatus(m.Status),
	}
}

type cooldownTableModel struct {
	ItemID      string    `db:"item_id"`
	UserID      string    `db:"user_id"`
	AbandonedAt time.Time `db:"abandoned_at"`
	EndsAt      time.Time `db:"ends_at"`
}

func (m cooldownTableModel) toDomain() timer.Cooldown {
	return timer.Cooldown{
		ItemID:      m.ItemID,
		UserID:      m.UserID,
		AbandonedAt: m.AbandonedAt,
		EndsAt:      m.EndsAt,
	}
}
