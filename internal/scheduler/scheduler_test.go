package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/draft-auction/internal/platform/logging"
	"github.com/riskibarqy/draft-auction/internal/usecase"
)

func countingJob(name string, calls *atomic.Int64) Job {
	return Job{
		Name: name,
		Run: func(context.Context) (usecase.SweepResult, error) {
			calls.Add(1)
			return usecase.SweepResult{Processed: 1}, nil
		},
	}
}

func TestStartRunsImmediatelyAndTicks(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	s := New(20*time.Millisecond, logging.NewNop(), countingJob("sweep", &calls))

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 3 passes, got %d", calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartTwiceFails(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	s := New(time.Minute, logging.NewNop(), countingJob("sweep", &calls))

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer s.Stop()

	if err := s.Start(); err == nil {
		t.Fatal("expected second start to fail")
	}
}

func TestStopWaitsForLoopAndIsIdempotent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	s := New(10*time.Millisecond, logging.NewNop(), countingJob("sweep", &calls))

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	s.Stop()
	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != settled {
		t.Fatalf("loop kept running after stop: %d -> %d", settled, calls.Load())
	}

	s.Stop()
}

func TestRunOnceExecutesAllJobsDespiteFailures(t *testing.T) {
	t.Parallel()

	var good, bad atomic.Int64
	s := New(time.Minute, logging.NewNop(),
		Job{Name: "failing", Run: func(context.Context) (usecase.SweepResult, error) {
			bad.Add(1)
			return usecase.SweepResult{}, fmt.Errorf("boom")
		}},
		countingJob("healthy", &good),
	)

	s.RunOnce(context.Background())

	if bad.Load() != 1 || good.Load() != 1 {
		t.Fatalf("expected both jobs to run once, got failing=%d healthy=%d", bad.Load(), good.Load())
	}
}
