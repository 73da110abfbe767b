// Package jobs runs periodic background work, some of it only on the elected
// leader instance.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
	RequiresLeadership() bool
	Interval() time.Duration
}

// Leader reports whether this instance currently holds leadership.
type Leader interface {
	IsLeader() bool
	CheckInterval() time.Duration
}

type JobManager struct {
	jobs        []Job
	election    Leader
	logger      *slog.Logger
	wg          sync.WaitGroup
	cancelFuncs map[string]context.CancelFunc
	mu          sync.Mutex
}

// NewJobManager runs leader-only jobs immediately when election is nil.
func NewJobManager(election Leader, logger *slog.Logger) *JobManager {
	return &JobManager{
		jobs:        make([]Job, 0),
		election:    election,
		logger:      logger,
		cancelFuncs: make(map[string]context.CancelFunc),
	}
}

func (jm *JobManager) Register(job Job) {
	jm.jobs = append(jm.jobs, job)
}

func (jm *JobManager) Start(ctx context.Context) {
	jm.startNonLeaderJobs(ctx)

	if jm.election != nil {
		jm.wg.Add(1)
		go jm.monitorLeadership(ctx)
	} else {
		jm.startLeaderJobs(ctx)
	}
}

func (jm *JobManager) Shutdown(ctx context.Context) {
	jm.logger.Debug("Shutting down job manager...")
	jm.stopAllJobs()

	done := make(chan struct{})
	go func() {
		jm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		jm.logger.Debug("All jobs stopped cleanly")
	case <-ctx.Done():
		jm.logger.Warn("Jobs failed to shut down in time")
		return
	}
}

func (jm *JobManager) monitorLeadership(ctx context.Context) {
	defer jm.wg.Done()
	ticker := time.NewTicker(jm.election.CheckInterval())
	defer ticker.Stop()

	var wasLeader bool

	for {
		select {
		case <-ctx.Done():
			jm.stopLeaderJobs()
			return
		case <-ticker.C:
			isLeader := jm.election.IsLeader()

			if isLeader && !wasLeader {
				jm.logger.Debug("Became leader, starting leader jobs")
				jm.startLeaderJobs(ctx)
			} else if !isLeader && wasLeader {
				jm.logger.Debug("Lost leadership, stopping leader jobs")
				jm.stopLeaderJobs()
			}

			wasLeader = isLeader
		}
	}
}

func (jm *JobManager) startLeaderJobs(ctx context.Context) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	for _, job := range jm.jobs {
		if !job.RequiresLeadership() {
			continue
		}

		if _, exists := jm.cancelFuncs[job.Name()]; exists {
			continue
		}

		jm.runJob(ctx, job)
	}
}

func (jm *JobManager) stopLeaderJobs() {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	for _, job := range jm.jobs {
		if !job.RequiresLeadership() {
			continue
		}

		if cancel, exists := jm.cancelFuncs[job.Name()]; exists {
			jm.logger.Debug("Stopping job", "job", job.Name())
			cancel()
			delete(jm.cancelFuncs, job.Name())
		}
	}
}

func (jm *JobManager) startNonLeaderJobs(ctx context.Context) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	for _, job := range jm.jobs {
		if job.RequiresLeadership() {
			continue
		}

		if _, exists := jm.cancelFuncs[job.Name()]; exists {
			continue
		}

		jm.runJob(ctx, job)
	}
}

// runJob must be called with jm.mu held.
func (jm *JobManager) runJob(ctx context.Context, job Job) {
	jobCtx, cancel := context.WithCancel(ctx)
	jm.cancelFuncs[job.Name()] = cancel

	jm.wg.Add(1)
	go func(j Job) {
		defer jm.wg.Done()
		jm.logger.Info("Starting job", "job", j.Name(), "interval", j.Interval(), "leader_only", j.RequiresLeadership())
		if err := j.Run(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			jm.logger.Error("Job failed", "job", j.Name(), "error", err)
		}
	}(job)
}

// Running reports whether the named job is currently scheduled.
func (jm *JobManager) Running(name string) bool {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	_, ok := jm.cancelFuncs[name]
	return ok
}

func (jm *JobManager) stopAllJobs() {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	for _, job := range jm.jobs {
		if cancel, exists := jm.cancelFuncs[job.Name()]; exists {
			jm.logger.Debug("Stopping job", "job", job.Name())
			cancel()
			delete(jm.cancelFuncs, job.Name())
		}
	}
}
