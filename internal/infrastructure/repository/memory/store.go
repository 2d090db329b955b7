package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
	"github.com/riskibarqy/draft-auction/internal/domain/compliance"
	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/league"
	"github.com/riskibarqy/draft-auction/internal/domain/ledger"
	"github.com/riskibarqy/draft-auction/internal/domain/participant"
	"github.com/riskibarqy/draft-auction/internal/domain/timer"
	"github.com/riskibarqy/draft-auction/internal/storage"
)

// data holds every table as plain maps. Keys are composite where the schema
// has a composite primary key.
type data struct {
	leagues      map[string]league.League
	items        map[string]item.Item
	participants map[string]participant.Participant // league|user
	assignments  map[string]participant.Assignment  // league|item
	auctions     map[string]auction.Auction
	auctionOrder []string
	bids         map[string][]auction.Bid           // by auction
	proxies      map[string]auction.ProxyBid        // auction|user
	userStates   map[string]auction.UserState       // auction|user
	timers       map[string]timer.ResponseTimer     // auction|user
	cooldowns    map[string]timer.Cooldown          // item|user
	compliance   map[string]compliance.Status       // league|user|phase
	ledger       []ledger.BudgetTransaction
}

func newData() *data {
	return &data{
		leagues:      map[string]league.League{},
		items:        map[string]item.Item{},
		participants: map[string]participant.Participant{},
		assignments:  map[string]participant.Assignment{},
		auctions:     map[string]auction.Auction{},
		bids:         map[string][]auction.Bid{},
		proxies:      map[string]auction.ProxyBid{},
		userStates:   map[string]auction.UserState{},
		timers:       map[string]timer.ResponseTimer{},
		cooldowns:    map[string]timer.Cooldown{},
		compliance:   map[string]compliance.Status{},
	}
}

func (d *data) clone() *data {
	c := &data{
		leagues:      make(map[string]league.League, len(d.leagues)),
		items:        make(map[string]item.Item, len(d.items)),
		participants: make(map[string]participant.Participant, len(d.participants)),
		assignments:  make(map[string]participant.Assignment, len(d.assignments)),
		auctions:     make(map[string]auction.Auction, len(d.auctions)),
		auctionOrder: append([]string(nil), d.auctionOrder...),
		bids:         make(map[string][]auction.Bid, len(d.bids)),
		proxies:      make(map[string]auction.ProxyBid, len(d.proxies)),
		userStates:   make(map[string]auction.UserState, len(d.userStates)),
		timers:       make(map[string]timer.ResponseTimer, len(d.timers)),
		cooldowns:    make(map[string]timer.Cooldown, len(d.cooldowns)),
		compliance:   make(map[string]compliance.Status, len(d.compliance)),
		ledger:       append([]ledger.BudgetTransaction(nil), d.ledger...),
	}
	for k, v := range d.leagues {
		c.leagues[k] = v
	}
	for k, v := range d.items {
		c.items[k] = v
	}
	for k, v := range d.participants {
		c.participants[k] = v
	}
	for k, v := range d.assignments {
		c.assignments[k] = v
	}
	for k, v := range d.auctions {
		c.auctions[k] = v
	}
	for k, v := range d.bids {
		c.bids[k] = append([]auction.Bid(nil), v...)
	}
	for k, v := range d.proxies {
		c.proxies[k] = v
	}
	for k, v := range d.userStates {
		c.userStates[k] = v
	}
	for k, v := range d.timers {
		c.timers[k] = v
	}
	for k, v := range d.cooldowns {
		c.cooldowns[k] = v
	}
	for k, v := range d.compliance {
		c.compliance[k] = v
	}
	return c
}

// Store is an in-memory implementation of the transactional store, used by
// unit tests. WithinTx clones the dataset, runs the callback against the
// clone and swaps it in only on success, which gives tests real rollback
// semantics without a database.
type Store struct {
	mu sync.RWMutex
	d  *data
}

func NewStore() *Store {
	return &Store{d: newData()}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r storage.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := s.d.clone()
	if err := fn(ctx, repos{d: clone}); err != nil {
		return err
	}
	s.d = clone

	return nil
}

func (s *Store) Repos() storage.Repos {
	return repos{s: s}
}

// repos resolves either to the live (locked per call) dataset or, inside a
// transaction, to the transaction's clone.
type repos struct {
	s *Store
	d *data
}

func (r repos) view() (*data, func()) {
	if r.d != nil {
		return r.d, func() {}
	}
	r.s.mu.RLock()
	return r.s.d, r.s.mu.RUnlock
}

func (r repos) mutate() (*data, func()) {
	if r.d != nil {
		return r.d, func() {}
	}
	r.s.mu.Lock()
	return r.s.d, r.s.mu.Unlock
}

func (r repos) Leagues() league.Repository           { return &LeagueRepository{r} }
func (r repos) Items() item.Repository               { return &ItemRepository{r} }
func (r repos) Participants() participant.Repository { return &ParticipantRepository{r} }
func (r repos) Auctions() auction.Repository         { return &AuctionRepository{r} }
func (r repos) Timers() timer.Repository             { return &TimerRepository{r} }
func (r repos) Cooldowns() timer.CooldownRepository  { return &CooldownRepository{r} }
func (r repos) Compliance() compliance.Repository    { return &ComplianceRepository{r} }
func (r repos) Ledger() ledger.Repository            { return &LedgerRepository{r} }

func pairKey(a, b string) string {
	return a + "|" + b
}

func tripleKey(a, b, c string) string {
	return a + "|" + b + "|" + c
}
