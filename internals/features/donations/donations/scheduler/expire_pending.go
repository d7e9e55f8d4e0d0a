package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"k9medics_backend/internals/features/donations/donations/service"
)

type pendingExpirer interface {
	ExpirePending(ctx context.Context, before time.Time) (int64, error)
}

// ExpirePendingOnce marks pending donations created before now-ttl as expired.
func ExpirePendingOnce(ctx context.Context, repo pendingExpirer, ttl time.Duration, now time.Time) (int64, error) {
	n, err := repo.ExpirePending(ctx, now.Add(-ttl))
	if err != nil {
		log.Printf("[CLEANUP ERROR] failed to expire pending donations: %v", err)
		return 0, err
	}
	if n > 0 {
		log.Printf("[CLEANUP] %d pending donations expired", n)
	}
	return n, nil
}

// StartPendingExpiryScheduler runs ExpirePendingOnce on schedule (a cron
// expression or "@every 1h") until ctx is done. A non-positive ttl disables it.
func StartPendingExpiryScheduler(ctx context.Context, repo service.Repository, ttl time.Duration, schedule string) (*cron.Cron, error) {
	if ttl <= 0 {
		log.Println("[INFO] pending donation expiry disabled")
		return nil, nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		_, _ = ExpirePendingOnce(runCtx, repo, ttl, time.Now())
	}); err != nil {
		return nil, fmt.Errorf("expiry schedule %q: %w", schedule, err)
	}

	log.Printf("[INFO] pending donation expiry started schedule=%q ttl=%s", schedule, ttl)
	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
