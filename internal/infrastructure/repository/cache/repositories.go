package cache

import (
	"context"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
	"github.com/riskibarqy/draft-auction/internal/domain/compliance"
	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/league"
	"github.com/riskibarqy/draft-auction/internal/domain/ledger"
	"github.com/riskibarqy/draft-auction/internal/domain/participant"
	"github.com/riskibarqy/draft-auction/internal/domain/timer"
	basecache "github.com/riskibarqy/draft-auction/internal/platform/cache"
	"github.com/riskibarqy/draft-auction/internal/storage"
)

// Read-through decorators for reference data. Leagues and items change
// rarely, so reads running outside a transaction tolerate the cache TTL of
// staleness. Transactional reads bypass this layer entirely.

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

type leagueLookup struct {
	value league.League
	found bool
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "league:id:"+leagueID, func(ctx context.Context) (any, error) {
		value, found, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return leagueLookup{value: value, found: found}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	lookup, ok := v.(leagueLookup)
	if !ok {
		return r.next.GetByID(ctx, leagueID)
	}
	return lookup.value, lookup.found, nil
}

func (r *LeagueRepository) ListByStatus(ctx context.Context, status league.Status) ([]league.League, error) {
	v, err := r.cache.GetOrLoad(ctx, "league:status:"+string(status), func(ctx context.Context) (any, error) {
		items, err := r.next.ListByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		return append([]league.League(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	cached, ok := v.([]league.League)
	if !ok {
		return r.next.ListByStatus(ctx, status)
	}
	return append([]league.League(nil), cached...), nil
}

type ItemRepository struct {
	next  item.Repository
	cache *basecache.Store
}

func NewItemRepository(next item.Repository, cache *basecache.Store) *ItemRepository {
	return &ItemRepository{next: next, cache: cache}
}

type itemLookup struct {
	value item.Item
	found bool
}

func (r *ItemRepository) GetByID(ctx context.Context, itemID string) (item.Item, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "item:id:"+itemID, func(ctx context.Context) (any, error) {
		value, found, err := r.next.GetByID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		return itemLookup{value: value, found: found}, nil
	})
	if err != nil {
		return item.Item{}, false, err
	}

	lookup, ok := v.(itemLookup)
	if !ok {
		return r.next.GetByID(ctx, itemID)
	}
	return lookup.value, lookup.found, nil
}

// Store wraps a transactional store so repositories handed out by Repos()
// serve league and item reads through the cache. WithinTx is untouched;
// settlement math never reads stale data.
type Store struct {
	next  storage.Store
	cache *basecache.Store
}

func NewStore(next storage.Store, cache *basecache.Store) *Store {
	return &Store{next: next, cache: cache}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r storage.Repos) error) error {
	return s.next.WithinTx(ctx, fn)
}

func (s *Store) Repos() storage.Repos {
	return repos{next: s.next.Repos(), cache: s.cache}
}

type repos struct {
	next  storage.Repos
	cache *basecache.Store
}

func (r repos) Leagues() league.Repository {
	return NewLeagueRepository(r.next.Leagues(), r.cache)
}

func (r repos) Items() item.Repository {
	return NewItemRepository(r.next.Items(), r.cache)
}

func (r repos) Participants() participant.Repository { return r.next.Participants() }
func (r repos) Auctions() auction.Repository         { return r.next.Auctions() }
func (r repos) Timers() timer.Repository             { return r.next.Timers() }
func (r repos) Cooldowns() timer.CooldownRepository  { return r.next.Cooldowns() }
func (r repos) Compliance() compliance.Repository    { return r.next.Compliance() }
func (r repos) Ledger() ledger.Repository            { return r.next.Ledger() }
