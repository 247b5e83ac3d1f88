// Package scheduler runs the booking lifecycle sweep on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rentals/internal/lock"
	"rentals/internal/modules/booking"

	"github.com/robfig/cron/v3"
)

const sweepLockKey = "lock:lifecycle-sweep"

type Sweeper interface {
	SweepLifecycle(ctx context.Context, now time.Time) (booking.SweepResult, error)
}

// LifecycleScheduler expires stale pending bookings and completes finished
// ones. The sweep lock keeps several API instances from sweeping at once.
type LifecycleScheduler struct {
	cron     *cron.Cron
	sweeper  Sweeper
	locker   lock.Locker
	schedule string
	timeout  time.Duration
	now      func() time.Time
}

func NewLifecycleScheduler(sweeper Sweeper, locker lock.Locker, schedule string) *LifecycleScheduler {
	logger := cron.PrintfLogger(log.Default())
	return &LifecycleScheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		sweeper:  sweeper,
		locker:   locker,
		schedule: schedule,
		timeout:  time.Minute,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the sweep and starts the cron loop.
func (s *LifecycleScheduler) Start() error {
	log.Println("Starting booking lifecycle scheduler...")

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			log.Printf("lifecycle_sweep_failed error=%v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid lifecycle schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	log.Printf("booking lifecycle scheduler started schedule=%q", s.schedule)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *LifecycleScheduler) Stop() {
	log.Println("Stopping booking lifecycle scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("booking lifecycle scheduler stopped")
}

// RunOnce performs a single sweep. If another instance holds the sweep lock
// the run is skipped right away and reported as an empty result.
func (s *LifecycleScheduler) RunOnce(ctx context.Context) (booking.SweepResult, error) {
	if s.locker != nil {
		release, err := s.locker.TryAcquire(ctx, sweepLockKey, s.timeout)
		if errors.Is(err, lock.ErrNotAcquired) {
			log.Println("lifecycle_sweep_skipped reason=locked")
			return booking.SweepResult{}, nil
		}
		if err != nil {
			return booking.SweepResult{}, err
		}
		defer release()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.sweeper.SweepLifecycle(ctx, s.now())
	if err != nil {
		return res, err
	}
	if res.Expired > 0 || res.Completed > 0 {
		log.Printf("lifecycle_sweep expired=%d completed=%d", res.Expired, res.Completed)
	}
	return res, nil
}
