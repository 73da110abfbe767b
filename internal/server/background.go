package server

import (
	"log/slog"

	"techrobotics-site/internal/config"
	"techrobotics-site/internal/jobs"
	"techrobotics-site/internal/presence"
)

func registerJobs(jm *jobs.JobManager, cfg *config.Config, tracker presence.Tracker, logger *slog.Logger) {
	interval := cfg.Presence.SweepInterval
	if interval <= 0 {
		interval = config.DefaultPresenceConfig.SweepInterval
	}

	jm.Register(jobs.NewPresenceSweepJob(tracker, cfg.Presence.TTL, interval, logger.With("job", "presence_sweep")))

	// Only a shared store makes the gauge differ between instances.
	if cfg.Presence.Store == "redis" {
		jm.Register(jobs.NewActiveUsersJob(tracker, cfg.Presence.Store, interval, logger.With("job", "active_users_gauge")))
	}
}
