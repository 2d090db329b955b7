package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/draft-auction/internal/platform/logging"
	"github.com/riskibarqy/draft-auction/internal/usecase"
)

// Job is one periodic sweep: auction expiry, response timers or compliance
// penalties. Jobs are idempotent and safe to run concurrently with
// user-driven bids; the store transactions serialize them.
type Job struct {
	Name string
	Run  func(ctx context.Context) (usecase.SweepResult, error)
}

// Scheduler drives every time-based transition through a fixed polling
// interval. There is no event loop beyond this; anything waiting on a
// deadline simply waits for the next tick.
type Scheduler struct {
	interval time.Duration
	jobs     []Job
	logger   *logging.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

func New(interval time.Duration, logger *logging.Logger, jobs ...Job) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Scheduler{
		interval: interval,
		jobs:     jobs,
		logger:   logger,
	}
}

// Start launches the polling loop. The first pass runs immediately so a
// restart does not extend expiry staleness by a full interval.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return fmt.Errorf("scheduler already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stopped = make(chan struct{})

	go s.loop(ctx)

	return nil
}

// Stop halts the loop and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	stopped := s.stopped
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes every job concurrently and logs their outcomes. A failing
// job never blocks the others; per-item errors are already accumulated inside
// each sweep.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	var wg conc.WaitGroup
	for _, job := range s.jobs {
		job := job
		wg.Go(func() {
			started := time.Now()
			result, err := job.Run(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "sweep failed",
					"job", job.Name,
					"error", err,
					"elapsed", time.Since(started).String(),
				)
				return
			}

			if len(result.Errors) > 0 {
				s.logger.WarnContext(ctx, "sweep finished with item errors",
					"job", job.Name,
					"processed", result.Processed,
					"errors", result.Errors,
					"elapsed", time.Since(started).String(),
				)
				return
			}

			if result.Processed > 0 {
				s.logger.InfoContext(ctx, "sweep finished",
					"job", job.Name,
					"processed", result.Processed,
					"elapsed", time.Since(started).String(),
				)
			}
		})
	}
	wg.Wait()
}
