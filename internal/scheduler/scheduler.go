package scheduler

import (
	"context"
	"time"

	"kri-backend/internal/shared/telemetry"
)

// Runner is the pipeline entrypoint the scheduler drives.
type Runner interface {
	RunScheduled(ctx context.Context) error
}

const (
	// pollInterval is the wake cadence outside the trigger window.
	pollInterval = time.Hour
	// postRunSleep parks the loop until shortly before the next weekly
	// window, leaving an hour of slack for clock drift.
	postRunSleep = 7*24*time.Hour - time.Hour
)

// Scheduler fires the pipeline once per week at a configured weekday and
// hour. Runs are attempted at most once per calendar day; the pipeline's own
// idempotency gate makes repeated attempts harmless.
type Scheduler struct {
	Runner  Runner
	Weekday time.Weekday
	Hour    int

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool

	lastAttempt time.Time
}

// New constructs a Scheduler with the real clock.
func New(runner Runner, weekday time.Weekday, hour int) *Scheduler {
	return &Scheduler{
		Runner:  runner,
		Weekday: weekday,
		Hour:    hour,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

// Run loops until ctx is cancelled. Pipeline errors are logged and the loop
// continues; a failed week is retried at the next window.
func (s *Scheduler) Run(ctx context.Context) {
	telemetry.Info("scheduler.started", map[string]any{
		"weekday": s.Weekday.String(),
		"hour":    s.Hour,
	})
	for {
		now := s.now()
		if s.shouldTrigger(now) {
			s.lastAttempt = now
			telemetry.Info("scheduler.triggering", map[string]any{
				"at": now.Format(time.RFC3339),
			})
			if err := s.Runner.RunScheduled(ctx); err != nil {
				telemetry.Error("scheduler.run_failed", map[string]any{
					"error": err.Error(),
				})
				if !s.sleep(ctx, pollInterval) {
					return
				}
				continue
			}
			if !s.sleep(ctx, postRunSleep) {
				return
			}
			continue
		}
		if !s.sleep(ctx, pollInterval) {
			return
		}
	}
}

// shouldTrigger reports whether now falls in the weekly window and no attempt
// was made today.
func (s *Scheduler) shouldTrigger(now time.Time) bool {
	if now.Weekday() != s.Weekday || now.Hour() < s.Hour {
		return false
	}
	return !sameDay(s.lastAttempt, now)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// sleepCtx waits for d or until ctx is done. Returns false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
