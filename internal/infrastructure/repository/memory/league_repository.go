package memory

import (
	"context"

	"github.com/riskibarqy/draft-auction/internal/domain/league"
)

type LeagueRepository struct {
	r repos
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	d, done := r.r.view()
	defer done()

	l, ok := d.leagues[leagueID]
	return l, ok, nil
}

func (r *LeagueRepository) ListByStatus(_ context.Context, status league.Status) ([]league.League, error) {
	d, done := r.r.view()
	defer done()

	out := make([]league.League, 0)
	for _, l := range d.leagues {
		if l.Status == status {
			out = append(out, l)
		}
	}

	return out, nil
}
