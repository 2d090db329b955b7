package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
	qb "github.com/riskibarqy/draft-auction/internal/platform/querybuilder"
)

type AuctionRepository struct {
	db sqlx.ExtContext
}

func NewAuctionRepository(db sqlx.ExtContext) *AuctionRepository {
	return &AuctionRepository{db: db}
}

func (r *AuctionRepository) Create(ctx context.Context, a auction.Auction) error {
	query, args, err := qb.InsertInto("auctions").
		Columns("public_id", "league_id", "item_id", "status", "current_bid_amount", "current_bidder_id", "started_at", "scheduled_end_at").
		Values(a.ID, a.LeagueID, a.ItemID, string(a.Status), a.CurrentBidAmount, a.CurrentBidderID, a.StartedAt, a.ScheduledEndAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert auction query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "auctions_one_open_per_item") {
			return auction.ErrDuplicateOpen
		}
		return fmt.Errorf("insert auction: %w", err)
	}

	return nil
}

func (r *AuctionRepository) GetByID(ctx context.Context, auctionID string) (auction.Auction, bool, error) {
	query, args, err := qb.Select("*").From("auctions").
		Where(qb.Eq("public_id", auctionID)).
		ToSQL()
	if err != nil {
		return auction.Auction{}, false, fmt.Errorf("build get auction by id query: %w", err)
	}

	var row auctionTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return auction.Auction{}, false, nil
		}
		return auction.Auction{}, false, fmt.Errorf("get auction by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *AuctionRepository) GetOpenByItem(ctx context.Context, leagueID, itemID string) (auction.Auction, bool, error) {
	query, args, err := qb.Select("*").From("auctions").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("item_id", itemID),
			qb.Expr("status IN ('active', 'closing')"),
		).
		ToSQL()
	if err != nil {
		return auction.Auction{}, false, fmt.Errorf("build get open auction by item query: %w", err)
	}

	var row auctionTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return auction.Auction{}, false, nil
		}
		return auction.Auction{}, false, fmt.Errorf("get open auction by item: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *AuctionRepository) ListOpenByLeague(ctx context.Context, leagueID string) ([]auction.Auction, error) {
	query, args, err := qb.Select("*").From("auctions").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Expr("status IN ('active', 'closing')"),
		).
		OrderBy("started_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list open auctions query: %w", err)
	}

	return r.selectAuctions(ctx, query, args, "list open auctions")
}

func (r *AuctionRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]auction.Auction, error) {
	query, args, err := qb.Select("*").From("auctions").
		Where(
			qb.Eq("status", string(auction.StatusActive)),
			qb.Expr("scheduled_end_at <= ?", now),
		).
		OrderBy("scheduled_end_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list expired auctions query: %w", err)
	}

	return r.selectAuctions(ctx, query, args, "list expired auctions")
}

func (r *AuctionRepository) ListLeadingByUser(ctx context.Context, leagueID, userID string) ([]auction.Auction, error) {
	query, args, err := qb.Select("*").From("auctions").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("current_bidder_id", userID),
			qb.Expr("status IN ('active', 'closing')"),
		).
		OrderBy("started_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leading auctions query: %w", err)
	}

	return r.selectAuctions(ctx, query, args, "list leading auctions")
}

func (r *AuctionRepository) selectAuctions(ctx context.Context, query string, args []any, op string) ([]auction.Auction, error) {
	var rows []auctionTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]auction.Auction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *AuctionRepository) SetCurrentBid(ctx context.Context, auctionID string, amount int64, bidderID string) error {
	query, args, err := qb.Update("auctions").
		Set("current_bid_amount", amount).
		Set("current_bidder_id", bidderID).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", auctionID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set current bid query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set current bid: %w", err)
	}

	return nil
}

func (r *AuctionRepository) SetStatus(ctx context.Context, auctionID string, status auction.Status) error {
	query, args, err := qb.Update("auctions").
		Set("status", string(status)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", auctionID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set auction status query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set auction status: %w", err)
	}

	return nil
}

func (r *AuctionRepository) InsertBid(ctx context.Context, b auction.Bid) error {
	query, args, err := qb.InsertInto("bids").
		Columns("public_id", "auction_id", "user_id", "amount", "bid_type", "placed_at").
		Values(b.ID, b.AuctionID, b.UserID, b.Amount, string(b.Type), b.PlacedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert bid query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}

	return nil
}

func (r *AuctionRepository) ListBids(ctx context.Context, auctionID string) ([]auction.Bid, error) {
	query, args, err := qb.Select("*").From("bids").
		Where(qb.Eq("auction_id", auctionID)).
		OrderBy("placed_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list bids query: %w", err)
	}

	var rows []bidTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}

	out := make([]auction.Bid, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *AuctionRepository) UpsertProxyBid(ctx context.Context, p auction.ProxyBid) error {
	// Raising an existing proxy keeps the original created_at so the earlier
	// commitment retains tie-break priority.
	query, args, err := qb.InsertInto("proxy_bids").
		Columns("auction_id", "user_id", "max_amount", "is_active", "created_at").
		Values(p.AuctionID, p.UserID, p.MaxAmount, p.IsActive, p.CreatedAt).
		Suffix(`ON CONFLICT (auction_id, user_id) DO UPDATE SET
    max_amount = EXCLUDED.max_amount,
    is_active = EXCLUDED.is_active,
    updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert proxy bid query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert proxy bid: %w", err)
	}

	return nil
}

func (r *AuctionRepository) GetProxyBid(ctx context.Context, auctionID, userID string) (auction.ProxyBid, bool, error) {
	query, args, err := qb.Select("*").From("proxy_bids").
		Where(
			qb.Eq("auction_id", auctionID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return auction.ProxyBid{}, false, fmt.Errorf("build get proxy bid query: %w", err)
	}

	var row proxyBidTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return auction.ProxyBid{}, false, nil
		}
		return auction.ProxyBid{}, false, fmt.Errorf("get proxy bid: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *AuctionRepository) ListActiveProxyBids(ctx context.Context, auctionID string) ([]auction.ProxyBid, error) {
	query, args, err := qb.Select("*").From("proxy_bids").
		Where(
			qb.Eq("auction_id", auctionID),
			qb.Expr("is_active"),
		).
		OrderBy("created_at", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active proxy bids query: %w", err)
	}

	var rows []proxyBidTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list active proxy bids: %w", err)
	}

	out := make([]auction.ProxyBid, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *AuctionRepository) ListActiveProxyBidsByUser(ctx context.Context, leagueID, userID string) ([]auction.ProxyBid, error) {
	const query = `
SELECT p.auction_id, p.user_id, p.max_amount, p.is_active, p.created_at, p.updated_at
FROM proxy_bids p
JOIN auctions a ON a.public_id = p.auction_id
WHERE p.user_id = $1
  AND p.is_active
  AND a.league_id = $2
  AND a.status IN ('active', 'closing')
ORDER BY p.created_at`

	var rows []proxyBidTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, userID, leagueID); err != nil {
		return nil, fmt.Errorf("list active proxy bids by user: %w", err)
	}

	out := make([]auction.ProxyBid, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *AuctionRepository) DeactivateProxyBid(ctx context.Context, auctionID, userID string) error {
	query, args, err := qb.Update("proxy_bids").
		Set("is_active", false).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("auction_id", auctionID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build deactivate proxy bid query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deactivate proxy bid: %w", err)
	}

	return nil
}

func (r *AuctionRepository) DeactivateProxyBids(ctx context.Context, auctionID string) error {
	query, args, err := qb.Update("proxy_bids").
		Set("is_active", false).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("auction_id", auctionID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build deactivate proxy bids query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deactivate proxy bids: %w", err)
	}

	return nil
}

func (r *AuctionRepository) GetUserState(ctx context.Context, auctionID, userID string) (auction.UserState, bool, error) {
	query, args, err := qb.Select("state").From("auction_user_states").
		Where(
			qb.Eq("auction_id", auctionID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build get user state query: %w", err)
	}

	var state string
	if err := sqlx.GetContext(ctx, r.db, &state, query, args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get user state: %w", err)
	}

	return auction.UserState(state), true, nil
}

func (r *AuctionRepository) SetUserState(ctx context.Context, auctionID, userID string, state auction.UserState) error {
	query, args, err := qb.InsertInto("auction_user_states").
		Columns("auction_id", "user_id", "state").
		Values(auctionID, userID, string(state)).
		Suffix(`ON CONFLICT (auction_id, user_id) DO UPDATE SET
    state = EXCLUDED.state,
    updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set user state query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set user state: %w", err)
	}

	return nil
}
