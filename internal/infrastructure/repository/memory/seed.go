package memory

import (
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/league"
	"github.com/riskibarqy/draft-auction/internal/domain/participant"
)

const (
	LeagueIDDraftDemo = "demo-draft-2026"
)

func (s *Store) SeedLeagues(leagues ...league.League) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range leagues {
		s.d.leagues[l.ID] = l
	}
}

func (s *Store) SeedItems(items ...item.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range items {
		s.d.items[it.ID] = it
	}
}

func (s *Store) SeedParticipants(participants ...participant.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range participants {
		s.d.participants[pairKey(p.LeagueID, p.UserID)] = p
	}
}

// SeedDraftLeague is the default test fixture: a league mid-draft with every
// role active and a one hour auction timer.
func SeedDraftLeague() league.League {
	return league.League{
		ID:     LeagueIDDraftDemo,
		Name:   "Demo Draft League",
		Status: league.StatusDraftActive,
		ActiveRoles: []item.Role{
			item.RoleGoalkeeper,
			item.RoleDefender,
			item.RoleMidfielder,
			item.RoleForward,
		},
		SlotsByRole: map[item.Role]int{
			item.RoleGoalkeeper: 1,
			item.RoleDefender:   4,
			item.RoleMidfielder: 4,
			item.RoleForward:    2,
		},
		MinBidRule:    league.MinBidQuotation,
		TimerDuration: time.Hour,
	}
}

func SeedDemoItems() []item.Item {
	return []item.Item{
		{ID: "item-gk-1", Name: "First Keeper", Role: item.RoleGoalkeeper, Quotation: 10},
		{ID: "item-df-1", Name: "Left Back", Role: item.RoleDefender, Quotation: 8},
		{ID: "item-df-2", Name: "Right Back", Role: item.RoleDefender, Quotation: 6},
		{ID: "item-mf-1", Name: "Playmaker", Role: item.RoleMidfielder, Quotation: 25},
		{ID: "item-fw-1", Name: "Striker", Role: item.RoleForward, Quotation: 30},
	}
}

func SeedDemoParticipants(leagueID string, budget int64, userIDs ...string) []participant.Participant {
	out := make([]participant.Participant, 0, len(userIDs))
	for _, userID := range userIDs {
		out = append(out, participant.Participant{
			LeagueID:      leagueID,
			UserID:        userID,
			CurrentBudget: budget,
		})
	}

	return out
}
