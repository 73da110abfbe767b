package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/mocks"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeJob struct {
	name   string
	leader bool
	runs   atomic.Int32
	err    error
}

func (j *fakeJob) Name() string             { return j.name }
func (j *fakeJob) RequiresLeadership() bool { return j.leader }
func (j *fakeJob) Interval() time.Duration  { return time.Millisecond }

func (j *fakeJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.err != nil {
		return j.err
	}
	<-ctx.Done()
	return ctx.Err()
}

type fakeLeader struct {
	mu     sync.Mutex
	leader bool
}

func (l *fakeLeader) IsLeader() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.leader
}

func (l *fakeLeader) set(v bool) {
	l.mu.Lock()
	l.leader = v
	l.mu.Unlock()
}

func (l *fakeLeader) CheckInterval() time.Duration { return 5 * time.Millisecond }

func TestJobManager_WithoutElectionRunsEverything(t *testing.T) {
	jm := NewJobManager(nil, slog.New(slog.DiscardHandler))
	follower := &fakeJob{name: "follower"}
	leader := &fakeJob{name: "leader", leader: true}
	jm.Register(follower)
	jm.Register(leader)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	jm.Start(ctx)

	assert.Eventually(t, func() bool {
		return follower.runs.Load() == 1 && leader.runs.Load() == 1
	}, time.Second, 5*time.Millisecond)

	shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	jm.Shutdown(shutdownCtx)

	assert.False(t, jm.Running("follower"))
	assert.False(t, jm.Running("leader"))
}

func TestJobManager_LeaderJobsFollowLeadership(t *testing.T) {
	election := &fakeLeader{}
	jm := NewJobManager(election, slog.New(slog.DiscardHandler))
	leader := &fakeJob{name: "leader", leader: true}
	jm.Register(leader)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	jm.Start(ctx)

	time.Sleep(20 * time.Millisecond)
	assert.False(t, jm.Running("leader"), "followers must not run leader jobs")

	election.set(true)
	assert.Eventually(t, func() bool { return jm.Running("leader") }, time.Second, 5*time.Millisecond)

	election.set(false)
	assert.Eventually(t, func() bool { return !jm.Running("leader") }, time.Second, 5*time.Millisecond)

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	jm.Shutdown(shutdownCtx)
}

func TestJobManager_FailedJobIsLogged(t *testing.T) {
	jm := NewJobManager(nil, slog.New(slog.DiscardHandler))
	failing := &fakeJob{name: "failing", err: errors.New("boom")}
	jm.Register(failing)

	jm.Start(context.Background())

	assert.Eventually(t, func() bool { return failing.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
	defer done()
	jm.Shutdown(shutdownCtx)
}

func TestPresenceSweepJob_Sweep(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracker := mocks.NewMockTracker(ctrl)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	job := NewPresenceSweepJob(tracker, time.Hour, time.Minute, slog.New(slog.DiscardHandler))
	job.now = func() time.Time { return now }

	tracker.EXPECT().Sweep(gomock.Any(), now.Add(-time.Hour)).Return(2, nil)
	require.NoError(t, job.sweep(context.Background()))

	tracker.EXPECT().Sweep(gomock.Any(), gomock.Any()).Return(0, errors.New("redis down"))
	assert.Error(t, job.sweep(context.Background()))

	assert.True(t, job.RequiresLeadership())
	assert.Equal(t, "presence_sweep", job.Name())
}

func TestPresenceSweepJob_InvalidSettings(t *testing.T) {
	job := NewPresenceSweepJob(nil, time.Hour, 0, slog.New(slog.DiscardHandler))
	assert.Error(t, job.Run(context.Background()))

	job = NewPresenceSweepJob(nil, 0, time.Minute, slog.New(slog.DiscardHandler))
	assert.Error(t, job.Run(context.Background()))
}

func TestPresenceSweepJob_RunSweepsImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracker := mocks.NewMockTracker(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	tracker.EXPECT().Sweep(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, time.Time) (int, error) {
		cancel()
		return 1, nil
	})

	job := NewPresenceSweepJob(tracker, time.Hour, time.Hour, slog.New(slog.DiscardHandler))
	assert.NoError(t, job.Run(ctx))
}

func TestActiveUsersJob_Refresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracker := mocks.NewMockTracker(ctrl)
	tracker.EXPECT().Count(gomock.Any()).Return(7, nil)

	job := NewActiveUsersJob(tracker, "test_store", time.Minute, slog.New(slog.DiscardHandler))
	require.NoError(t, job.refresh(context.Background()))

	assert.Equal(t, float64(7), testutil.ToFloat64(metrics.ActiveUsers.WithLabelValues("test_store")))
	assert.False(t, job.RequiresLeadership())
}
