package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/presence"
)

// ActiveUsersJob refreshes the active users gauge on every instance, so each
// scrape target reports the shared count even when it served no logins.
type ActiveUsersJob struct {
	tracker  presence.Tracker
	store    string
	interval time.Duration
	logger   *slog.Logger
}

func NewActiveUsersJob(tracker presence.Tracker, store string, interval time.Duration, logger *slog.Logger) *ActiveUsersJob {
	return &ActiveUsersJob{
		tracker:  tracker,
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

func (j *ActiveUsersJob) Name() string {
	return "active_users_gauge"
}

func (j *ActiveUsersJob) RequiresLeadership() bool {
	return false
}

func (j *ActiveUsersJob) Interval() time.Duration {
	return j.interval
}

func (j *ActiveUsersJob) Run(ctx context.Context) error {
	if j.interval <= 0 {
		return fmt.Errorf("active users job interval must be positive")
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if err := j.refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
			j.logger.Warn("failed to refresh active users gauge", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (j *ActiveUsersJob) refresh(ctx context.Context) error {
	count, err := j.tracker.Count(ctx)
	if err != nil {
		return err
	}
	metrics.ActiveUsers.WithLabelValues(j.store).Set(float64(count))
	return nil
}
