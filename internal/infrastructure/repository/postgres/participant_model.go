package postgres

import (
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/participant"
)

type participantTableModel struct {
	ID            int64     `db:"id"`
	LeagueID      string    `db:"league_id"`
	UserID        string    `db:"user_id"`
	CurrentBudget int64     `db:"current_budget"`
	LockedCredits int64     `db:"locked_credits"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (m participantTableModel) toDomain() participant.Participant {
	return participant.Participant{
		LeagueID:      m.LeagueID,
		UserID:        m.UserID,
		CurrentBudget: m.CurrentBudget,
		LockedCredits: m.LockedCredits,
	}
}

type assignmentTableModel struct {
	ID         int64     `db:"id"`
	LeagueID   string    `db:"league_id"`
	ItemID     string    `db:"item_id"`
	UserID     string    `db:"user_id"`
	Role       string    `db:"role"`
	Price      int64     `db:"price"`
	AssignedAt time.Time `db:"assigned_at"`
}

func (m assignmentTableModel) toDomain() participant.Assignment {
	return participant.Assignment{
		LeagueID:   m.LeagueID,
		ItemID:     m.ItemID,
		UserID:     m.UserID,
		Role:       item.Role(m.Role),
		Price:      m.Price,
		AssignedAt: m.AssignedAt,
	}
}
