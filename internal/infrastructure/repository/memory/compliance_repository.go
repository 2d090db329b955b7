package memory

import (
	"context"

	"github.com/riskibarqy/draft-auction/internal/domain/compliance"
)

type ComplianceRepository struct {
	r repos
}

func (r *ComplianceRepository) Get(_ context.Context, leagueID, userID, phase string) (compliance.Status, bool, error) {
	d, done := r.r.view()
	defer done()

	s, ok := d.compliance[tripleKey(leagueID, userID, phase)]
	return s, ok, nil
}

func (r *ComplianceRepository) Upsert(_ context.Context, s compliance.Status) error {
	d, done := r.r.mutate()
	defer done()

	d.compliance[tripleKey(s.LeagueID, s.UserID, s.Phase)] = s

	return nil
}

func (r *ComplianceRepository) ListNonCompliant(_ context.Context, leagueID string) ([]compliance.Status, error) {
	d, done := r.r.view()
	defer done()

	out := make([]compliance.Status, 0)
	for _, s := range d.compliance {
		if s.LeagueID == leagueID && s.TimerStartAt != nil {
			out = append(out, s)
		}
	}

	return out, nil
}
