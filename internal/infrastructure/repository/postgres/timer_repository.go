package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/draft-auction/internal/domain/timer"
	qb "github.com/riskibarqy/draft-auction/internal/platform/querybuilder"
)

type TimerRepository struct {
	db sqlx.ExtContext
}

func NewTimerRepository(db sqlx.ExtContext) *TimerRepository {
	return &TimerRepository{db: db}
}

func (r *TimerRepository) UpsertPending(ctx context.Context, t timer.ResponseTimer) error {
	// Re-notifying an already pending user refreshes the deadline in place;
	// the partial unique index keeps one pending row per (auction, user).
	query, args, err := qb.InsertInto("response_timers").
		Columns("auction_id", "user_id", "notified_at", "deadline", "status").
		Values(t.AuctionID, t.UserID, t.NotifiedAt, t.Deadline, string(timer.StatusPending)).
		Suffix(`ON CONFLICT (auction_id, user_id) WHERE status = 'pending' DO UPDATE SET
    notified_at = EXCLUDED.notified_at,
    deadline = EXCLUDED.deadline,
    updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert pending timer query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert pending timer: %w", err)
	}

	return nil
}

func (r *TimerRepository) GetPending(ctx context.Context, auctionID, userID string) (timer.ResponseTimer, bool, error) {
	query, args, err := qb.Select("*").From("response_timers").
		Where(
			qb.Eq("auction_id", auctionID),
			qb.Eq("user_id", userID),
			qb.Eq("status", string(timer.StatusPending)),
		).
		ToSQL()
	if err != nil {
		return timer.ResponseTimer{}, false, fmt.Errorf("build get pending timer query: %w", err)
	}

	var row responseTimerTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return timer.ResponseTimer{}, false, nil
		}
		return timer.ResponseTimer{}, false, fmt.Errorf("get pending timer: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *TimerRepository) MarkActionTaken(ctx context.Context, auctionID, userID string) error {
	return r.resolvePending(ctx, auctionID, userID, timer.StatusActionTaken)
}

func (r *TimerRepository) MarkDeadlineMissed(ctx context.Context, auctionID, userID string) error {
	return r.resolvePending(ctx, auctionID, userID, timer.StatusDeadlineMissed)
}

// resolvePending only transitions pending rows, so resolving twice or with no
// open window is a no-op.
func (r *TimerRepository) resolvePending(ctx context.Context, auctionID, userID string, status timer.ResponseStatus) error {
	query, args, err := qb.Update("response_timers").
		Set("status", string(status)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("auction_id", auctionID),
			qb.Eq("user_id", userID),
			qb.Eq("status", string(timer.StatusPending)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build resolve pending timer query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("resolve pending timer: %w", err)
	}

	return nil
}

func (r *TimerRepository) ListExpiredPending(ctx context.Context, now time.Time) ([]timer.ResponseTimer, error) {
	query, args, err := qb.Select("*").From("response_timers").
		Where(
			qb.Eq("status", string(timer.StatusPending)),
			qb.Expr("deadline <= ?", now),
		).
		OrderBy("deadline", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list expired timers query: %w", err)
	}

	var rows []responseTimerTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list expired timers: %w", err)
	}

	out := make([]timer.ResponseTimer, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

type CooldownRepository struct {
	db sqlx.ExtContext
}

func NewCooldownRepository(db sqlx.ExtContext) *CooldownRepository {
	return &CooldownRepository{db: db}
}

func (r *CooldownRepository) Upsert(ctx context.Context, c timer.Cooldown) error {
	query, args, err := qb.InsertInto("cooldowns").
		Columns("item_id", "user_id", "abandoned_at", "ends_at").
		Values(c.ItemID, c.UserID, c.AbandonedAt, c.EndsAt).
		Suffix(`ON CONFLICT (item_id, user_id) DO UPDATE SET
    abandoned_at = EXCLUDED.abandoned_at,
    ends_at = EXCLUDED.ends_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert cooldown query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert cooldown: %w", err)
	}

	return nil
}

func (r *CooldownRepository) Get(ctx context.Context, itemID, userID string) (timer.Cooldown, bool, error) {
	query, args, err := qb.Select("*").From("cooldowns").
		Where(
			qb.Eq("item_id", itemID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return timer.Cooldown{}, false, fmt.Errorf("build get cooldown query: %w", err)
	}

	var row cooldownTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return timer.Cooldown{}, false, nil
		}
		return timer.Cooldown{}, false, fmt.Errorf("get cooldown: %w", err)
	}

	return row.toDomain(), true, nil
}
