package jobs

import (
	"context" // Context for Redis operations
	"time"    // Tick interval and month keys

	"mutual_aid/internal/ops"   // Badge operations
	"mutual_aid/internal/utils" // Redis lock helpers

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

const (
	// resetTickInterval is how often the runner checks whether the current
	// month has been closed out yet
	resetTickInterval = time.Hour
	// resetMarkerTTL keeps the done marker alive for longer than any month,
	// so the same month can never run twice
	resetMarkerTTL = 40 * 24 * time.Hour
	// resetMarkerPrefix keys the per-month done marker in Redis
	resetMarkerPrefix = "badge:monthly_reset:"
)

// MonthKey renders the month a timestamp belongs to, e.g. "2026-08"
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// RunMonthlyReset closes out the month exactly once across all processes.
// The per-month Redis marker doubles as the mutual-exclusion lock: only the
// caller that sets it runs the reset, and a failed run drops the marker so
// the next tick retries.
func RunMonthlyReset(db *gorm.DB, rdb *redis.Client, now time.Time) error {
	ctx := context.Background()
	key := resetMarkerPrefix + MonthKey(now)
	acquired, err := utils.AcquireLock(ctx, rdb, key, resetMarkerTTL)
	if err != nil {
		return err
	}
	if !acquired {
		// Another process already ran (or is running) this month's reset
		return nil
	}
	if err := ops.ResetMonthlyCounts(db); err != nil {
		// Drop the marker so a later tick can retry the failed month
		if rerr := utils.ReleaseLock(ctx, rdb, key); rerr != nil {
			logrus.WithField("key", key).Warnf("failed to release reset marker: %v", rerr)
		}
		return err
	}
	logrus.WithField("month", MonthKey(now)).Info("Monthly reset completed")
	return nil
}

// StartMonthlyReset launches the background runner and returns a function
// that stops it. Each tick is a cheap no-op once the month's marker exists.
func StartMonthlyReset(db *gorm.DB, rdb *redis.Client) func() {
	ticker := time.NewTicker(resetTickInterval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := RunMonthlyReset(db, rdb, time.Now()); err != nil {
					logrus.Errorf("monthly reset failed: %v", err)
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
