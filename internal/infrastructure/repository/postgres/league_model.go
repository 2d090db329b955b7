package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lib/pq"

	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/league"
)

type leagueTableModel struct {
	ID                   int64          `db:"id"`
	PublicID             string         `db:"public_id"`
	Name                 string         `db:"name"`
	Status               string         `db:"status"`
	ActiveRoles          pq.StringArray `db:"active_roles"`
	SlotsByRole          []byte         `db:"slots_by_role"`
	MinBidRule           string         `db:"min_bid_rule"`
	MinBidFloor          int64          `db:"min_bid_floor"`
	TimerDurationSeconds int64          `db:"timer_duration_seconds"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
	DeletedAt            *time.Time     `db:"deleted_at"`
}

func (m leagueTableModel) toDomain() (league.League, error) {
	roles := make([]item.Role, 0, len(m.ActiveRoles))
	for _, r := range m.ActiveRoles {
		roles = append(roles, item.Role(r))
	}

	slots := map[item.Role]int{}
	if len(m.SlotsByRole) > 0 {
		if err := sonic.Unmarshal(m.SlotsByRole, &slots); err != nil {
			return league.League{}, fmt.Errorf("decode slots_by_role for league %s: %w", m.PublicID, err)
		}
	}

	return league.League{
		ID:            m.PublicID,
		Name:          m.Name,
		Status:        league.Status(m.Status),
		ActiveRoles:   roles,
		SlotsByRole:   slots,
		MinBidRule:    league.MinBidRule(m.MinBidRule),
		MinBidFloor:   m.MinBidFloor,
		TimerDuration: time.Duration(m.TimerDurationSeconds) * time.Second,
	}, nil
}
