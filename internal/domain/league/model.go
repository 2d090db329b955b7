package league

import (
	"fmt"
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/item"
)

// Status is the league lifecycle phase. Bidding and compliance penalties run
// only while the league is in StatusDraftActive.
type Status string

const (
	StatusSetup               Status = "setup"
	StatusParticipantsJoining Status = "participants_joining"
	StatusDraftActive         Status = "draft_active"
	StatusRepairActive        Status = "repair_active"
	StatusMarketClosed        Status = "market_closed"
	StatusSeasonActive        Status = "season_active"
	StatusCompleted           Status = "completed"
	StatusArchived            Status = "archived"
)

var AllStatuses = map[Status]struct{}{
	StatusSetup:               {},
	StatusParticipantsJoining: {},
	StatusDraftActive:         {},
	StatusRepairActive:        {},
	StatusMarketClosed:        {},
	StatusSeasonActive:        {},
	StatusCompleted:           {},
	StatusArchived:            {},
}

// MinBidRule selects how the minimum opening bid for an item is derived.
type MinBidRule string

const (
	// MinBidQuotation uses the item's base quotation as the floor.
	MinBidQuotation MinBidRule = "quotation"
	// MinBidLeagueFloor uses a flat per-league floor amount.
	MinBidLeagueFloor MinBidRule = "league_floor"
)

// League holds the admin-managed configuration that drives which core
// behaviors are active for its participants.
type League struct {
	ID            string
	Name          string
	Status        Status
	ActiveRoles   []item.Role
	SlotsByRole   map[item.Role]int
	MinBidRule    MinBidRule
	MinBidFloor   int64
	TimerDuration time.Duration
}

// BiddingOpen reports whether bids may be placed and penalties accrue.
func (l League) BiddingOpen() bool {
	return l.Status == StatusDraftActive
}

// RoleActive reports whether items of the given role may currently be bid on.
func (l League) RoleActive(role item.Role) bool {
	for _, r := range l.ActiveRoles {
		if r == role {
			return true
		}
	}
	return false
}

// MinimumBid resolves the lowest acceptable opening bid for an item.
func (l League) MinimumBid(it item.Item) int64 {
	switch l.MinBidRule {
	case MinBidLeagueFloor:
		return l.MinBidFloor
	default:
		return it.Quotation
	}
}

// TotalSlots sums the configured slot counts across the active roles.
func (l League) TotalSlots() int {
	total := 0
	for _, role := range l.ActiveRoles {
		total += l.SlotsByRole[role]
	}
	return total
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if _, ok := AllStatuses[l.Status]; !ok {
		return fmt.Errorf("unknown league status: %s", l.Status)
	}
	for _, role := range l.ActiveRoles {
		if _, ok := item.AllRoles[role]; !ok {
			return fmt.Errorf("unknown active role: %s", role)
		}
		if l.SlotsByRole[role] <= 0 {
			return fmt.Errorf("slot count for role %s must be greater than zero", role)
		}
	}
	if l.MinBidRule == MinBidLeagueFloor && l.MinBidFloor <= 0 {
		return fmt.Errorf("league min bid floor must be greater than zero")
	}
	if l.TimerDuration <= 0 {
		return fmt.Errorf("league timer duration must be greater than zero")
	}

	return nil
}
