package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/participant"
	qb "github.com/riskibarqy/draft-auction/internal/platform/querybuilder"
)

type ParticipantRepository struct {
	db sqlx.ExtContext
}

func NewParticipantRepository(db sqlx.ExtContext) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Get(ctx context.Context, leagueID, userID string) (participant.Participant, bool, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("build get participant query: %w", err)
	}

	var row participantTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, fmt.Errorf("get participant: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ParticipantRepository) SetBalances(ctx context.Context, leagueID, userID string, currentBudget, lockedCredits int64) error {
	query, args, err := qb.Update("participants").
		Set("current_budget", currentBudget).
		Set("locked_credits", lockedCredits).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set participant balances query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set participant balances: %w", err)
	}

	return nil
}

func (r *ParticipantRepository) AssignmentByItem(ctx context.Context, leagueID, itemID string) (participant.Assignment, bool, error) {
	query, args, err := qb.Select("*").From("roster_assignments").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("item_id", itemID),
		).
		ToSQL()
	if err != nil {
		return participant.Assignment{}, false, fmt.Errorf("build get assignment by item query: %w", err)
	}

	var row assignmentTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return participant.Assignment{}, false, nil
		}
		return participant.Assignment{}, false, fmt.Errorf("get assignment by item: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ParticipantRepository) InsertAssignment(ctx context.Context, assignment participant.Assignment) error {
	query, args, err := qb.InsertInto("roster_assignments").
		Columns("league_id", "item_id", "user_id", "role", "price", "assigned_at").
		Values(assignment.LeagueID, assignment.ItemID, assignment.UserID, string(assignment.Role), assignment.Price, assignment.AssignedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert assignment query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}

	return nil
}

func (r *ParticipantRepository) ListAssignmentsByUser(ctx context.Context, leagueID, userID string) ([]participant.Assignment, error) {
	query, args, err := qb.Select("*").From("roster_assignments").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("user_id", userID),
		).
		OrderBy("assigned_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list assignments by user query: %w", err)
	}

	var rows []assignmentTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments by user: %w", err)
	}

	out := make([]participant.Assignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *ParticipantRepository) CountAssignmentsByRole(ctx context.Context, leagueID, userID string) (map[item.Role]int, error) {
	query, args, err := qb.Select("role", "COUNT(*) AS total").From("roster_assignments").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("user_id", userID),
		).
		GroupBy("role").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build count assignments by role query: %w", err)
	}

	var rows []struct {
		Role  string `db:"role"`
		Total int    `db:"total"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count assignments by role: %w", err)
	}

	out := make(map[item.Role]int, len(rows))
	for _, row := range rows {
		out[item.Role(row.Role)] = row.Total
	}

	return out, nil
}
