package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRunner struct {
	calls []time.Time
	err   error
	clock *fakeClock
}

func (r *fakeRunner) RunScheduled(ctx context.Context) error {
	r.calls = append(r.calls, r.clock.now)
	return r.err
}

// fakeClock advances by the requested sleep and cancels the loop after a
// bounded number of sleeps so tests terminate.
type fakeClock struct {
	now       time.Time
	sleeps    []time.Duration
	maxSleeps int
	cancel    context.CancelFunc
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) bool {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	if len(c.sleeps) >= c.maxSleeps {
		c.cancel()
		return false
	}
	return ctx.Err() == nil
}

func newTestScheduler(start time.Time, maxSleeps int, runErr error) (*Scheduler, *fakeRunner, *fakeClock, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	clock := &fakeClock{now: start, maxSleeps: maxSleeps, cancel: cancel}
	runner := &fakeRunner{clock: clock, err: runErr}
	s := New(runner, time.Monday, 12)
	s.now = clock.Now
	s.sleep = clock.Sleep
	return s, runner, clock, ctx
}

func TestSchedulerTriggersInWindow(t *testing.T) {
	// Monday 2025-06-02 12:00 UTC.
	start := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	s, runner, clock, ctx := newTestScheduler(start, 1, nil)

	s.Run(ctx)

	if len(runner.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(runner.calls))
	}
	if clock.sleeps[0] != postRunSleep {
		t.Fatalf("post-run sleep = %v, want %v", clock.sleeps[0], postRunSleep)
	}
}

func TestSchedulerWaitsOutsideWindow(t *testing.T) {
	// Monday 08:00: before the trigger hour, must poll hourly until 12:00.
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	s, runner, clock, ctx := newTestScheduler(start, 5, nil)

	s.Run(ctx)

	if len(runner.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(runner.calls))
	}
	if got := runner.calls[0].Hour(); got != 12 {
		t.Fatalf("triggered at hour %d, want 12", got)
	}
	for _, d := range clock.sleeps[:4] {
		if d != pollInterval {
			t.Fatalf("pre-window sleep = %v, want %v", d, pollInterval)
		}
	}
}

func TestSchedulerWrongWeekdayNeverTriggers(t *testing.T) {
	// Tuesday: with only a few hourly polls the window is never reached.
	start := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	s, runner, _, ctx := newTestScheduler(start, 3, nil)

	s.Run(ctx)

	if len(runner.calls) != 0 {
		t.Fatalf("calls = %d, want 0", len(runner.calls))
	}
}

func TestSchedulerAtMostOncePerDay(t *testing.T) {
	start := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	s, runner, _, ctx := newTestScheduler(start, 6, errors.New("pipeline down"))

	// Each failure falls back to hourly polling; the same Monday must not
	// retrigger within the day.
	s.Run(ctx)

	if len(runner.calls) != 1 {
		t.Fatalf("calls = %d, want 1 attempt per day", len(runner.calls))
	}
}

func TestSchedulerRetriesNextWeekAfterError(t *testing.T) {
	start := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	// Enough sleeps to reach the following Monday's window.
	s, runner, _, ctx := newTestScheduler(start, 24*8, errors.New("pipeline down"))

	s.Run(ctx)

	if len(runner.calls) < 2 {
		t.Fatalf("calls = %d, want a retry on a later day", len(runner.calls))
	}
	first, second := runner.calls[0], runner.calls[1]
	if first.YearDay() == second.YearDay() {
		t.Fatal("retry must land on a different day")
	}
}
