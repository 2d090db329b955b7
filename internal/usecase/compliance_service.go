package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/compliance"
	"github.com/riskibarqy/draft-auction/internal/domain/item"
	"github.com/riskibarqy/draft-auction/internal/domain/league"
	"github.com/riskibarqy/draft-auction/internal/domain/ledger"
	"github.com/riskibarqy/draft-auction/internal/platform/cache"
	idgen "github.com/riskibarqy/draft-auction/internal/platform/id"
	"github.com/riskibarqy/draft-auction/internal/platform/logging"
	"github.com/riskibarqy/draft-auction/internal/storage"
)

// SessionDirectory reports whether a user has ever had an active session in a
// league. Users who never showed up are exempt from penalty timers.
type SessionDirectory interface {
	HasEverBeenActive(ctx context.Context, leagueID, userID string) (bool, error)
}

type neverActiveDirectory struct{}

func (neverActiveDirectory) HasEverBeenActive(context.Context, string, string) (bool, error) {
	return true, nil
}

type ComplianceService struct {
	store    storage.Store
	notifier Notifier
	sessions SessionDirectory
	cache    *cache.Store
	idGen    idgen.Generator
	logger   *logging.Logger

	gracePeriod   time.Duration
	penaltyAmount int64
	penaltyCap    int

	now func() time.Time
}

func NewComplianceService(
	store storage.Store,
	notifier Notifier,
	sessions SessionDirectory,
	readCache *cache.Store,
	idGen idgen.Generator,
	gracePeriod time.Duration,
	penaltyAmount int64,
	penaltyCap int,
	logger *logging.Logger,
) *ComplianceService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if sessions == nil {
		sessions = neverActiveDirectory{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if gracePeriod <= 0 {
		gracePeriod = time.Hour
	}
	if penaltyAmount <= 0 {
		penaltyAmount = 5
	}
	if penaltyCap <= 0 {
		penaltyCap = 5
	}

	if idGen == nil {
		idGen = idgen.NewRandomGenerator()
	}

	return &ComplianceService{
		store:         store,
		notifier:      notifier,
		sessions:      sessions,
		cache:         readCache,
		idGen:         idGen,
		logger:        logger,
		gracePeriod:   gracePeriod,
		penaltyAmount: penaltyAmount,
		penaltyCap:    penaltyCap,
		now:           time.Now,
	}
}

// Status returns the stored compliance row for the user's current league
// phase. Results go through a short-lived read cache; write paths always
// re-read source rows inside their own transaction.
func (s *ComplianceService) Status(ctx context.Context, leagueID, userID string) (compliance.Status, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ComplianceService.Status")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if leagueID == "" || userID == "" {
		return compliance.Status{}, fmt.Errorf("%w: league_id and user_id are required", ErrInvalidInput)
	}

	load := func(ctx context.Context) (any, error) {
		r := s.store.Repos()
		l, ok, err := r.Leagues().GetByID(ctx, leagueID)
		if err != nil {
			return nil, fmt.Errorf("get league: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
		}

		phase := compliance.PhaseKey(l.Status, l.ActiveRoles)
		status, ok, err := r.Compliance().Get(ctx, leagueID, userID, phase)
		if err != nil {
			return nil, fmt.Errorf("get compliance status: %w", err)
		}
		if !ok {
			return compliance.Status{
				LeagueID: leagueID,
				UserID:   userID,
				Phase:    phase,
			}, nil
		}
		return status, nil
	}

	if s.cache == nil {
		v, err := load(ctx)
		if err != nil {
			return compliance.Status{}, err
		}
		return v.(compliance.Status), nil
	}

	key := "compliance:" + leagueID + ":" + userID
	v, err := s.cache.GetOrLoad(ctx, key, load)
	if err != nil {
		return compliance.Status{}, err
	}

	return v.(compliance.Status), nil
}

// Reevaluate recomputes the user's roster coverage for the league's current
// phase and moves the stored status through the timer state machine:
// compliant clears any running timer, newly non-compliant starts one.
func (s *ComplianceService) Reevaluate(ctx context.Context, leagueID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ComplianceService.Reevaluate")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if leagueID == "" || userID == "" {
		return fmt.Errorf("%w: league_id and user_id are required", ErrInvalidInput)
	}

	active, err := s.sessions.HasEverBeenActive(ctx, leagueID, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "session directory unavailable, assuming active",
			"league_id", leagueID, "user_id", userID, "error", err)
		active = true
	}
	if !active {
		return nil
	}

	var effects []Effect

	err = s.store.WithinTx(ctx, func(ctx context.Context, r storage.Repos) error {
		effects = effects[:0]

		l, ok, err := r.Leagues().GetByID(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("get league: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
		}
		if !l.BiddingOpen() {
			return nil
		}

		if _, ok, err := r.Participants().Get(ctx, leagueID, userID); err != nil {
			return fmt.Errorf("get participant: %w", err)
		} else if !ok {
			return fmt.Errorf("%w: participant league=%s user=%s", ErrNotFound, leagueID, userID)
		}

		compliant, coverage, err := s.evaluate(ctx, r, l, userID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		phase := compliance.PhaseKey(l.Status, l.ActiveRoles)
		status, exists, err := r.Compliance().Get(ctx, leagueID, userID, phase)
		if err != nil {
			return fmt.Errorf("get compliance status: %w", err)
		}
		if !exists {
			status = compliance.Status{
				LeagueID: leagueID,
				UserID:   userID,
				Phase:    phase,
			}
		}

		wasCompliant := status.Compliant()
		switch {
		case compliant && !wasCompliant:
			// Coverage restored: full reset, not a pause.
			status.TimerStartAt = nil
			status.LastPenaltyAt = nil
			status.PenaltiesApplied = 0
		case !compliant && wasCompliant:
			startAt := now
			status.TimerStartAt = &startAt
			status.LastPenaltyAt = nil
			status.PenaltiesApplied = 0
		default:
			return nil
		}

		if err := r.Compliance().Upsert(ctx, status); err != nil {
			return fmt.Errorf("upsert compliance status: %w", err)
		}

		effects = append(effects, publishEffect(s.notifier, s.logger, UserRoom(userID), EventComplianceChanged, map[string]any{
			"league_id": leagueID,
			"phase":     phase,
			"compliant": compliant,
			"coverage":  coverage,
		}))

		return nil
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Delete(ctx, "compliance:"+leagueID+":"+userID)
	}

	runEffects(ctx, effects)

	return nil
}

// ReevaluateEffect wraps Reevaluate as a best-effort post-commit effect.
func (s *ComplianceService) ReevaluateEffect(leagueID, userID string) Effect {
	return func(ctx context.Context) {
		if s == nil {
			return
		}
		if err := s.Reevaluate(ctx, leagueID, userID); err != nil {
			s.logger.WarnContext(ctx, "compliance re-evaluation failed",
				"league_id", leagueID, "user_id", userID, "error", err)
		}
	}
}

// SweepPenalties walks every non-compliant participant of every league in its
// bidding phase and applies the hourly penalty schedule: nothing during the
// grace period, then one penalty per elapsed hour, capped per phase.
func (s *ComplianceService) SweepPenalties(ctx context.Context) (SweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ComplianceService.SweepPenalties")
	defer span.End()

	leagues, err := s.store.Repos().Leagues().ListByStatus(ctx, league.StatusDraftActive)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list leagues: %w", err)
	}

	var result SweepResult
	for _, l := range leagues {
		rows, err := s.store.Repos().Compliance().ListNonCompliant(ctx, l.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("league %s: list non-compliant: %v", l.ID, err))
			continue
		}
		for _, row := range rows {
			applied, err := s.penalizeOne(ctx, row.LeagueID, row.UserID, row.Phase)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("league %s user %s: %v", row.LeagueID, row.UserID, err))
				continue
			}
			result.Processed += applied
		}
	}

	return result, nil
}

func (s *ComplianceService) penalizeOne(ctx context.Context, leagueID, userID, phase string) (int, error) {
	active, err := s.sessions.HasEverBeenActive(ctx, leagueID, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "session directory unavailable, skipping penalty",
			"league_id", leagueID, "user_id", userID, "error", err)
		return 0, nil
	}
	if !active {
		return 0, nil
	}

	var (
		applied   int
		recovered bool
		effects   []Effect
	)

	err = s.store.WithinTx(ctx, func(ctx context.Context, r storage.Repos) error {
		applied = 0
		recovered = false
		effects = effects[:0]

		l, ok, err := r.Leagues().GetByID(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("get league: %w", err)
		}
		if !ok || !l.BiddingOpen() {
			return nil
		}
		if compliance.PhaseKey(l.Status, l.ActiveRoles) != phase {
			// The phase moved on since the row was written; a fresh
			// re-evaluation will produce the row for the new phase.
			return nil
		}

		status, ok, err := r.Compliance().Get(ctx, leagueID, userID, phase)
		if err != nil {
			return fmt.Errorf("get compliance status: %w", err)
		}
		if !ok || status.TimerStartAt == nil {
			return nil
		}
		if status.PenaltiesApplied >= s.penaltyCap {
			return nil
		}

		// Re-check coverage from source rows before charging anything.
		compliant, coverage, err := s.evaluate(ctx, r, l, userID)
		if err != nil {
			return err
		}
		if compliant {
			// Coverage restored between re-evaluations: the same full reset
			// Reevaluate performs, announced the same way.
			status.TimerStartAt = nil
			status.LastPenaltyAt = nil
			status.PenaltiesApplied = 0
			if err := r.Compliance().Upsert(ctx, status); err != nil {
				return fmt.Errorf("clear compliance timer: %w", err)
			}
			recovered = true
			effects = append(effects, publishEffect(s.notifier, s.logger, UserRoom(userID), EventComplianceChanged, map[string]any{
				"league_id": leagueID,
				"phase":     phase,
				"compliant": true,
				"coverage":  coverage,
			}))
			return nil
		}

		now := s.now().UTC()
		due := penaltiesDue(*status.TimerStartAt, status.LastPenaltyAt, s.gracePeriod, now)
		if due == 0 {
			return nil
		}
		if remaining := s.penaltyCap - status.PenaltiesApplied; due > remaining {
			due = remaining
		}

		p, ok, err := r.Participants().Get(ctx, leagueID, userID)
		if err != nil {
			return fmt.Errorf("get participant: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: participant league=%s user=%s", ErrNotFound, leagueID, userID)
		}

		for i := 0; i < due; i++ {
			txID, err := s.idGen.NewID()
			if err != nil {
				return fmt.Errorf("generate transaction id: %w", err)
			}
			p.CurrentBudget -= s.penaltyAmount
			entry := ledger.BudgetTransaction{
				ID:        txID,
				LeagueID:  leagueID,
				UserID:    userID,
				Type:      ledger.TypePenalty,
				Amount:    -s.penaltyAmount,
				Balance:   p.CurrentBudget,
				Reference: status.Phase,
				CreatedAt: now,
			}
			if err := r.Ledger().Insert(ctx, entry); err != nil {
				return fmt.Errorf("insert penalty transaction: %w", err)
			}
		}
		if err := r.Participants().SetBalances(ctx, leagueID, userID, p.CurrentBudget, p.LockedCredits); err != nil {
			return fmt.Errorf("set balances: %w", err)
		}

		status.PenaltiesApplied += due
		status.LastPenaltyAt = &now
		if err := r.Compliance().Upsert(ctx, status); err != nil {
			return fmt.Errorf("upsert compliance status: %w", err)
		}

		applied = due
		effects = append(effects, publishEffect(s.notifier, s.logger, UserRoom(userID), EventPenaltyApplied, map[string]any{
			"league_id":         leagueID,
			"phase":             phase,
			"penalties":         due,
			"amount_each":       s.penaltyAmount,
			"penalties_applied": status.PenaltiesApplied,
			"current_budget":    p.CurrentBudget,
		}))

		return nil
	})
	if err != nil {
		return 0, err
	}

	if (applied > 0 || recovered) && s.cache != nil {
		s.cache.Delete(ctx, "compliance:"+leagueID+":"+userID)
	}

	runEffects(ctx, effects)

	return applied, nil
}

// evaluate computes roster coverage from assignments plus auctions the user
// currently leads. Leading an open auction covers a slot for timer purposes.
func (s *ComplianceService) evaluate(ctx context.Context, r storage.Repos, l league.League, userID string) (bool, map[item.Role]compliance.RoleCoverage, error) {
	assignedByRole, err := r.Participants().CountAssignmentsByRole(ctx, l.ID, userID)
	if err != nil {
		return false, nil, fmt.Errorf("count assignments: %w", err)
	}

	leading, err := r.Auctions().ListLeadingByUser(ctx, l.ID, userID)
	if err != nil {
		return false, nil, fmt.Errorf("list leading auctions: %w", err)
	}
	leadingByRole := make(map[item.Role]int)
	for _, a := range leading {
		if it, ok, err := r.Items().GetByID(ctx, a.ItemID); err != nil {
			return false, nil, fmt.Errorf("get leading item: %w", err)
		} else if ok {
			leadingByRole[it.Role]++
		}
	}

	compliant, coverage := compliance.Evaluate(l, assignedByRole, leadingByRole)
	return compliant, coverage, nil
}

// penaltiesDue counts hourly penalty boundaries crossed since the later of
// the grace expiry and the last penalty already charged.
func penaltiesDue(timerStart time.Time, lastPenaltyAt *time.Time, grace time.Duration, now time.Time) int {
	graceEnd := timerStart.Add(grace)
	if now.Before(graceEnd) {
		return 0
	}

	effectiveStart := graceEnd
	if lastPenaltyAt != nil && lastPenaltyAt.After(effectiveStart) {
		effectiveStart = *lastPenaltyAt
	}

	if lastPenaltyAt == nil {
		// The grace boundary itself charges the first penalty, then one more
		// per full hour elapsed since.
		return 1 + int(now.Sub(graceEnd)/time.Hour)
	}

	return int(now.Sub(effectiveStart) / time.Hour)
}
