package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "item_id", "current_bid").
		From("auctions").
		Where(Eq("league_id", "league-1"), IsNull("settled_at")).
		OrderBy("deadline_at").
		Limit(25).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, item_id, current_bid FROM auctions WHERE league_id = $1 AND settled_at IS NULL ORDER BY deadline_at LIMIT 25"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "league-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_InCondition(t *testing.T) {
	query, args, err := Select("id").
		From("auctions").
		Where(In("status", []any{"active", "closing"})).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM auctions WHERE status IN ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "active" || args[1] != "closing" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, args, err := Select("id").
		From("auctions").
		Where(In("status", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	if query != "SELECT id FROM auctions WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("bids").
		Columns("id", "auction_id", "amount").
		Values("bid-1", "auction-1", int64(40)).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO bids (id, auction_id, amount) VALUES ($1, $2, $3) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "bid-1" || args[1] != "auction-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("auctions").
		Set("current_bid", int64(41)).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "auction-1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE auctions SET current_bid = $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(41) || args[1] != "auction-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder_ExprPlaceholders(t *testing.T) {
	query, args, err := Update("participants").
		SetExpr("locked_credits", "locked_credits + ?", int64(60)).
		Where(Eq("user_id", "user-1"), Expr("league_id = ?", "league-1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE participants SET locked_credits = locked_credits + $1 WHERE user_id = $2 AND league_id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != int64(60) || args[1] != "user-1" || args[2] != "league-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
