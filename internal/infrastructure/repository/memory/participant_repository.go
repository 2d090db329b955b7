package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/participant"
)

type ParticipantRepository struct {
	r repos
}

func (r *ParticipantRepository) Get(_ context.Context, leagueID, userID string) (participant.Participant, bool, error) {
	d, done := r.r.view()
	defer done()

	p, ok := d.participants[pairKey(leagueID, userID)]
	return p, ok, nil
}

func (r *ParticipantRepository) SetBalances(_ context.Context, leagueID, userID string, currentBudget, lockedCredits int64) error {
	d, done := r.r.mutate()
	defer done()

	key := pairKey(leagueID, userID)
	p, ok := d.participants[key]
	if !ok {
		return fmt.Errorf("participant %s not found", key)
	}
	p.CurrentBudget = currentBudget
	p.LockedCredits = lockedCredits
	d.participants[key] = p

	return nil
}

func (r *ParticipantRepository) AssignmentByItem(_ context.Context, leagueID, itemID string) (participant.Assignment, bool, error) {
	d, done := r.r.view()
	defer done()

	a, ok := d.assignments[pairKey(leagueID, itemID)]
	return a, ok, nil
}

func (r *ParticipantRepository) InsertAssignment(_ context.Context, assignment participant.Assignment) error {
	d, done := r.r.mutate()
	defer done()

	key := pairKey(assignment.LeagueID, assignment.ItemID)
	if _, exists := d.assignments[key]; exists {
		return fmt.Errorf("item %s is already assigned in league %s", assignment.ItemID, assignment.LeagueID)
	}
	d.assignments[key] = assignment

	return nil
}

func (r *ParticipantRepository) ListAssignmentsByUser(_ context.Context, leagueID, userID string) ([]participant.Assignment, error) {
	d, done := r.r.view()
	defer done()

	out := make([]participant.Assignment, 0)
	for _, a := range d.assignments {
		if a.LeagueID == leagueID && a.UserID == userID {
			out = append(out, a)
		}
	}

	return out, nil
}

func (r *ParticipantRepository) CountAssignmentsByRole(_ context.Context, leagueID, userID string) (map[item.Role]int, error) {
	d, done := r.r.view()
	defer done()

	out := make(map[item.Role]int)
	for _, a := range d.assignments {
		if a.LeagueID == leagueID && a.UserID == userID {
			out[a.Role]++
		}
	}

	return out, nil
}
