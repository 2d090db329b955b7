package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
	"github.com/riskibarqy/draft-auction/internal/domain/compliance"
	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/league"
	"github.com/riskibarqy/draft-auction/internal/domain/ledger"
	"github.com/riskibarqy/draft-auction/internal/domain/participant"
	"github.com/riskibarqy/draft-auction/internal/domain/timer"
	"github.com/riskibarqy/draft-auction/internal/storage"
)

// Store backs the transactional store with Postgres. Every WithinTx callback
// runs inside one serializable transaction, which is what linearizes two bids
// racing for the same item.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r storage.Repos) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, repos{ext: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (s *Store) Repos() storage.Repos {
	return repos{ext: s.db}
}

// repos binds the repositories to either the root handle or an open
// transaction; sqlx.ExtContext covers both.
type repos struct {
	ext sqlx.ExtContext
}

func (r repos) Leagues() league.Repository           { return &LeagueRepository{db: r.ext} }
func (r repos) Items() item.Repository               { return &ItemRepository{db: r.ext} }
func (r repos) Participants() participant.Repository { return &ParticipantRepository{db: r.ext} }
func (r repos) Auctions() auction.Repository         { return &AuctionRepository{db: r.ext} }
func (r repos) Timers() timer.Repository             { return &TimerRepository{db: r.ext} }
func (r repos) Cooldowns() timer.CooldownRepository  { return &CooldownRepository{db: r.ext} }
func (r repos) Compliance() compliance.Repository    { return &ComplianceRepository{db: r.ext} }
func (r repos) Ledger() ledger.Repository            { return &LedgerRepository{db: r.ext} }
