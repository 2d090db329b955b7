package compliance

import (
	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/league"
)

// RoleCoverage is the per-role requirement versus what the user covers today.
type RoleCoverage struct {
	Required int
	Covered  int
}

// RequiredSlots applies the N-1 rule: one fewer covered slot than the
// configured count, never below zero.
func RequiredSlots(configured int) int {
	if configured <= 0 {
		return 0
	}
	return configured - 1
}

// Evaluate computes compliance for one user. A slot counts as covered when the
// user holds a settled roster assignment for it or currently leads an open
// auction for an item of that role.
func Evaluate(l league.League, assignedByRole, leadingByRole map[item.Role]int) (bool, map[item.Role]RoleCoverage) {
	coverage := make(map[item.Role]RoleCoverage, len(l.ActiveRoles))
	compliant := true

	for _, role := range l.ActiveRoles {
		c := RoleCoverage{
			Required: RequiredSlots(l.SlotsByRole[role]),
			Covered:  assignedByRole[role] + leadingByRole[role],
		}
		coverage[role] = c
		if c.Covered < c.Required {
			compliant = false
		}
	}

	return compliant, coverage
}
