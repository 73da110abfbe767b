package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"techrobotics-site/internal/presence"
)

// PresenceSweepJob drops users whose last activity is older than the
// presence TTL. Only the leader sweeps so instances sharing a redis store
// don't race each other.
type PresenceSweepJob struct {
	tracker  presence.Tracker
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewPresenceSweepJob(tracker presence.Tracker, ttl, interval time.Duration, logger *slog.Logger) *PresenceSweepJob {
	return &PresenceSweepJob{
		tracker:  tracker,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

func (j *PresenceSweepJob) Name() string {
	return "presence_sweep"
}

func (j *PresenceSweepJob) RequiresLeadership() bool {
	return true
}

func (j *PresenceSweepJob) Interval() time.Duration {
	return j.interval
}

func (j *PresenceSweepJob) Run(ctx context.Context) error {
	if j.interval <= 0 {
		return fmt.Errorf("presence sweep job interval must be positive")
	}
	if j.ttl <= 0 {
		return fmt.Errorf("presence ttl must be positive")
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	if err := j.sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
		j.logger.Error("initial presence sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := j.sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				j.logger.Error("presence sweep failed", "error", err)
			}
		}
	}
}

func (j *PresenceSweepJob) sweep(ctx context.Context) error {
	removed, err := j.tracker.Sweep(ctx, j.now().Add(-j.ttl))
	if err != nil {
		return fmt.Errorf("failed to sweep presence: %w", err)
	}

	if removed > 0 {
		j.logger.Info("removed stale active users", "count", removed)
	}
	return nil
}
