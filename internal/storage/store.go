package storage

import (
	"context"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
	"github.com/riskibarqy/draft-auction/internal/domain/compliance"
	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/league"
	"github.com/riskibarqy/draft-auction/internal/domain/ledger"
	"github.com/riskibarqy/draft-auction/internal/domain/participant"
	"github.com/riskibarqy/draft-auction/internal/domain/timer"
)

// Repos bundles the domain repositories reachable inside one transaction.
type Repos interface {
	Leagues() league.Repository
	Items() item.Repository
	Participants() participant.Repository
	Auctions() auction.Repository
	Timers() timer.Repository
	Cooldowns() timer.CooldownRepository
	Compliance() compliance.Repository
	Ledger() ledger.Repository
}

// Store is the ledger store: the single source of truth for all shared
// mutable state. WithinTx runs fn inside one serializable transaction; every
// check-and-write in fn commits together or not at all. Concurrent operations
// on the same rows are linearized by this boundary.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
	// Repos returns repositories bound to the store outside any transaction,
	// for read paths that tolerate bounded staleness.
	Repos() Repos
}
