package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/draft-auction/internal/domain/timer"
)

type TimerRepository struct {
	r repos
}

func (r *TimerRepository) UpsertPending(_ context.Context, t timer.ResponseTimer) error {
	d, done := r.r.mutate()
	defer done()

	t.Status = timer.StatusPending
	d.timers[pairKey(t.AuctionID, t.UserID)] = t

	return nil
}

func (r *TimerRepository) GetPending(_ context.Context, auctionID, userID string) (timer.ResponseTimer, bool, error) {
	d, done := r.r.view()
	defer done()

	t, ok := d.timers[pairKey(auctionID, userID)]
	if !ok || t.Status != timer.StatusPending {
		return timer.ResponseTimer{}, false, nil
	}

	return t, true, nil
}

func (r *TimerRepository) MarkActionTaken(_ context.Context, auctionID, userID string) error {
	return r.resolve(auctionID, userID, timer.StatusActionTaken)
}

func (r *TimerRepository) MarkDeadlineMissed(_ context.Context, auctionID, userID string) error {
	return r.resolve(auctionID, userID, timer.StatusDeadlineMissed)
}

func (r *TimerRepository) resolve(auctionID, userID string, status timer.ResponseStatus) error {
	d, done := r.r.mutate()
	defer done()

	key := pairKey(auctionID, userID)
	t, ok := d.timers[key]
	if !ok || t.Status != timer.StatusPending {
		return nil
	}
	t.Status = status
	d.timers[key] = t

	return nil
}

func (r *TimerRepository) ListExpiredPending(_ context.Context, now time.Time) ([]timer.ResponseTimer, error) {
	d, done := r.r.view()
	defer done()

	out := make([]timer.ResponseTimer, 0)
	for _, t := range d.timers {
		if t.Status == timer.StatusPending && t.Expired(now) {
			out = append(out, t)
		}
	}

	return out, nil
}

type CooldownRepository struct {
	r repos
}

func (r *CooldownRepository) Upsert(_ context.Context, c timer.Cooldown) error {
	d, done := r.r.mutate()
	defer done()

	d.cooldowns[pairKey(c.ItemID, c.UserID)] = c

	return nil
}

func (r *CooldownRepository) Get(_ context.Context, itemID, userID string) (timer.Cooldown, bool, error) {
	d, done := r.r.view()
	defer done()

	c, ok := d.cooldowns[pairKey(itemID, userID)]
	return c, ok, nil
}
