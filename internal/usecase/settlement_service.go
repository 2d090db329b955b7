package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/draft-auction/internal/domain/auction"
	"github.com/riskibarqy/draft-auction/internal/domain/ledger"
	"github.com/riskibarqy/draft-auction/internal/domain/participant"
	idgen "github.com/riskibarqy/draft-auction/internal/platform/id"
	"github.com/riskibarqy/draft-auction/internal/platform/logging"
	"github.com/riskibarqy/draft-auction/internal/storage"
)

// SettlementService closes expired auctions: the winner is debited, the item
// assigned, every proxy bid on the auction retired and credits recomputed.
type SettlementService struct {
	store      storage.Store
	notifier   Notifier
	compliance *ComplianceService
	idGen      idgen.Generator
	logger     *logging.Logger
	poolSize   int
	now        func() time.Time
}

func NewSettlementService(
	store storage.Store,
	notifier Notifier,
	complianceSvc *ComplianceService,
	idGen idgen.Generator,
	poolSize int,
	logger *logging.Logger,
) *SettlementService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if idGen == nil {
		idGen = idgen.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if poolSize <= 0 {
		poolSize = 8
	}

	return &SettlementService{
		store:      store,
		notifier:   notifier,
		compliance: complianceSvc,
		idGen:      idGen,
		logger:     logger,
		poolSize:   poolSize,
		now:        time.Now,
	}
}

// SweepExpired settles every active auction whose scheduled end has passed.
// Each auction settles in its own transaction on a bounded worker pool, so a
// slow or conflicting row cannot stall the rest of the batch.
func (s *SettlementService) SweepExpired(ctx context.Context) (SweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SweepExpired")
	defer span.End()

	now := s.now().UTC()
	expired, err := s.store.Repos().Auctions().ListExpiredActive(ctx, now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list expired auctions: %w", err)
	}
	if len(expired) == 0 {
		return SweepResult{}, nil
	}

	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return SweepResult{}, fmt.Errorf("create settlement pool: %w", err)
	}
	defer pool.Release()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result SweepResult
	)
	for _, a := range expired {
		auctionID := a.ID
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := s.SettleOne(ctx, auctionID); err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Sprintf("auction %s: %v", auctionID, err))
				mu.Unlock()
				return
			}
			mu.Lock()
			result.Processed++
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			result.Errors = append(result.Errors, fmt.Sprintf("auction %s: submit: %v", auctionID, submitErr))
			mu.Unlock()
		}
	}
	wg.Wait()

	return result, nil
}

// SettleOne re-reads the auction inside a serializable transaction and, if it
// is still active and past its end, marks it sold to the highest bidder.
func (s *SettlementService) SettleOne(ctx context.Context, auctionID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.SettleOne")
	defer span.End()

	var effects []Effect

	err := s.store.WithinTx(ctx, func(ctx context.Context, r storage.Repos) error {
		effects = effects[:0]

		a, ok, err := r.Auctions().GetByID(ctx, auctionID)
		if err != nil {
			return fmt.Errorf("get auction: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: auction=%s", ErrNotFound, auctionID)
		}
		if a.Status != auction.StatusActive {
			return nil
		}

		now := s.now().UTC()
		if !a.Expired(now) {
			return nil
		}

		proxies, err := r.Auctions().ListActiveProxyBids(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("list active proxy bids: %w", err)
		}
		if err := r.Auctions().DeactivateProxyBids(ctx, a.ID); err != nil {
			return fmt.Errorf("deactivate proxy bids: %w", err)
		}

		if a.CurrentBidderID == "" || a.CurrentBidAmount <= 0 {
			if err := r.Auctions().SetStatus(ctx, a.ID, auction.StatusNotSold); err != nil {
				return fmt.Errorf("set not_sold: %w", err)
			}
			for _, p := range proxies {
				if err := s.recompute(ctx, r, a.LeagueID, p.UserID); err != nil {
					return err
				}
			}
			return nil
		}

		winner, ok, err := r.Participants().Get(ctx, a.LeagueID, a.CurrentBidderID)
		if err != nil {
			return fmt.Errorf("get winner: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: winner league=%s user=%s", ErrNotFound, a.LeagueID, a.CurrentBidderID)
		}

		it, ok, err := r.Items().GetByID(ctx, a.ItemID)
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: item=%s", ErrNotFound, a.ItemID)
		}

		if err := r.Auctions().SetStatus(ctx, a.ID, auction.StatusSold); err != nil {
			return fmt.Errorf("set sold: %w", err)
		}

		winner.CurrentBudget -= a.CurrentBidAmount
		txID, err := s.idGen.NewID()
		if err != nil {
			return fmt.Errorf("generate transaction id: %w", err)
		}
		entry := ledger.BudgetTransaction{
			ID:        txID,
			LeagueID:  a.LeagueID,
			UserID:    winner.UserID,
			Type:      ledger.TypePurchase,
			Amount:    -a.CurrentBidAmount,
			Balance:   winner.CurrentBudget,
			Reference: a.ID,
			CreatedAt: now,
		}
		if err := r.Ledger().Insert(ctx, entry); err != nil {
			return fmt.Errorf("insert purchase transaction: %w", err)
		}
		if err := r.Participants().SetBalances(ctx, a.LeagueID, winner.UserID, winner.CurrentBudget, winner.LockedCredits); err != nil {
			return fmt.Errorf("debit winner: %w", err)
		}

		assignment := participant.Assignment{
			LeagueID:   a.LeagueID,
			ItemID:     a.ItemID,
			UserID:     winner.UserID,
			Role:       it.Role,
			Price:      a.CurrentBidAmount,
			AssignedAt: now,
		}
		if err := r.Participants().InsertAssignment(ctx, assignment); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}

		// Losing commitments and the winner's own proxy are gone; rebuild
		// locked credits from what remains on other open auctions.
		touched := map[string]struct{}{winner.UserID: {}}
		for _, p := range proxies {
			touched[p.UserID] = struct{}{}
		}
		bids, err := r.Auctions().ListBids(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("list bids: %w", err)
		}
		for _, b := range bids {
			touched[b.UserID] = struct{}{}
		}
		for userID := range touched {
			if err := s.recompute(ctx, r, a.LeagueID, userID); err != nil {
				return err
			}
		}

		effects = append(effects, publishEffect(s.notifier, s.logger, LeagueRoom(a.LeagueID), EventAuctionClosed, map[string]any{
			"auction_id": a.ID,
			"item_id":    a.ItemID,
			"item_name":  it.Name,
			"role":       it.Role,
			"winner_id":  winner.UserID,
			"price":      a.CurrentBidAmount,
		}))
		for userID := range touched {
			effects = append(effects, s.compliance.ReevaluateEffect(a.LeagueID, userID))
		}

		return nil
	})
	if err != nil {
		return err
	}

	runEffects(ctx, effects)

	return nil
}

func (s *SettlementService) recompute(ctx context.Context, r storage.Repos, leagueID, userID string) error {
	locked, err := lockedCreditsFromSource(ctx, r, leagueID, userID)
	if err != nil {
		return err
	}

	p, ok, err := r.Participants().Get(ctx, leagueID, userID)
	if err != nil {
		return fmt.Errorf("get participant for recompute: %w", err)
	}
	if !ok {
		return nil
	}

	if err := r.Participants().SetBalances(ctx, leagueID, userID, p.CurrentBudget, locked); err != nil {
		return fmt.Errorf("set balances: %w", err)
	}

	return nil
}

// lockedCreditsFromSource rebuilds one user's locked total: active proxy
// maxima across open auctions plus manual leads without a backing proxy.
func lockedCreditsFromSource(ctx context.Context, r storage.Repos, leagueID, userID string) (int64, error) {
	proxies, err := r.Auctions().ListActiveProxyBidsByUser(ctx, leagueID, userID)
	if err != nil {
		return 0, fmt.Errorf("list proxy bids: %w", err)
	}
	proxyByAuction := make(map[string]struct{}, len(proxies))
	var locked int64
	for _, p := range proxies {
		proxyByAuction[p.AuctionID] = struct{}{}
		locked += p.MaxAmount
	}

	leading, err := r.Auctions().ListLeadingByUser(ctx, leagueID, userID)
	if err != nil {
		return 0, fmt.Errorf("list leading auctions: %w", err)
	}
	for _, a := range leading {
		if _, backed := proxyByAuction[a.ID]; !backed {
			locked += a.CurrentBidAmount
		}
	}

	return locked, nil
}
