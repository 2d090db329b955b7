package compliance

import (
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/league"
)

// Status is one compliance cycle for a (league, user, phase) triple.
// TimerStartAt == nil means the user is compliant. Re-entering non-compliance
// starts a fresh cycle, never a continuation.
type Status struct {
	LeagueID         string
	UserID           string
	Phase            string
	TimerStartAt     *time.Time
	LastPenaltyAt    *time.Time
	PenaltiesApplied int
}

// Compliant reports whether no violation timer is running.
func (s Status) Compliant() bool {
	return s.TimerStartAt == nil
}

// PhaseKey derives the phase identifier from the league status and the active
// roles set, so that reconfiguring active roles starts a fresh cycle.
func PhaseKey(status league.Status, activeRoles []item.Role) string {
	roles := make([]string, 0, len(activeRoles))
	for _, role := range activeRoles {
		roles = append(roles, string(role))
	}
	sort.Strings(roles)

	return string(status) + ":" + strings.Join(roles, ",")
}
