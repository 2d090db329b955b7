package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/draft-auction/internal/domain/compliance"
	qb "github.com/riskibarqy/draft-auction/internal/platform/querybuilder"
)

type complianceTableModel struct {
	LeagueID         string     `db:"league_id"`
	UserID           string     `db:"user_id"`
	Phase            string     `db:"phase"`
	TimerStartAt     *time.Time `db:"timer_start_at"`
	LastPenaltyAt    *time.Time `db:"last_penalty_at"`
	PenaltiesApplied int        `db:"penalties_applied"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

func (m complianceTableModel) toDomain() compliance.Status {
	return compliance.Status{
		LeagueID:         m.LeagueID,
		UserID:           m.UserID,
		Phase:            m.Phase,
		TimerStartAt:     m.TimerStartAt,
		LastPenaltyAt:    m.LastPenaltyAt,
		PenaltiesApplied: m.PenaltiesApplied,
	}
}

type ComplianceRepository struct {
	db sqlx.ExtContext
}

func NewComplianceRepository(db sqlx.ExtContext) *ComplianceRepository {
	return &ComplianceRepository{db: db}
}

func (r *ComplianceRepository) Get(ctx context.Context, leagueID, userID, phase string) (compliance.Status, bool, error) {
	query, args, err := qb.Select("*").From("compliance_statuses").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("user_id", userID),
			qb.Eq("phase", phase),
		).
		ToSQL()
	if err != nil {
		return compliance.Status{}, false, fmt.Errorf("build get compliance status query: %w", err)
	}

	var row complianceTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return compliance.Status{}, false, nil
		}
		return compliance.Status{}, false, fmt.Errorf("get compliance status: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ComplianceRepository) Upsert(ctx context.Context, s compliance.Status) error {
	query, args, err := qb.InsertInto("compliance_statuses").
		Columns("league_id", "user_id", "phase", "timer_start_at", "last_penalty_at", "penalties_applied").
		Values(s.LeagueID, s.UserID, s.Phase, s.TimerStartAt, s.LastPenaltyAt, s.PenaltiesApplied).
		Suffix(`ON CONFLICT (league_id, user_id, phase) DO UPDATE SET
    timer_start_at = EXCLUDED.timer_start_at,
    last_penalty_at = EXCLUDED.last_penalty_at,
    penalties_applied = EXCLUDED.penalties_applied,
    updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert compliance status query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert compliance status: %w", err)
	}

	return nil
}

func (r *ComplianceRepository) ListNonCompliant(ctx context.Context, leagueID string) ([]compliance.Status, error) {
	query, args, err := qb.Select("*").From("compliance_statuses").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Expr("timer_start_at IS NOT NULL"),
		).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list non-compliant query: %w", err)
	}

	var rows []complianceTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list non-compliant: %w", err)
	}

	out := make([]compliance.Status, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
