// Package distributed coordinates the instances of a horizontally scaled
// deployment through redis.
package distributed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"techrobotics-site/internal/config"
	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/utils"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisprometheus/v9"
	"github.com/redis/go-redis/v9"
)

const leaderKey = "techrobotics:leader"

const resignScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

// LeaderClient is the subset of the redis client the election needs.
type LeaderClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Election holds a redis lease so only one instance runs leader-only jobs.
type Election struct {
	Redis      LeaderClient
	InstanceID string
	TTL        time.Duration
	logger     *slog.Logger
	isLeader   bool
	mu         sync.RWMutex
}

func NewElection(client LeaderClient, ttl time.Duration, logger *slog.Logger) *Election {
	if ttl <= 0 {
		ttl = config.DefaultDistributedConfig.TTL
	}
	return &Election{
		Redis:      client,
		InstanceID: uuid.NewString(),
		TTL:        ttl,
		logger:     logger,
	}
}

// NewElectionFromConfig returns nil when distributed mode is off.
func NewElectionFromConfig(cfg *config.Config, logger *slog.Logger) (*Election, error) {
	if cfg.Distributed == nil || !cfg.Distributed.Enabled {
		return nil, nil
	}
	if cfg.Redis == nil {
		return nil, errors.New("distributed mode requires a redis configuration")
	}
	client := utils.NewRedisClient(cfg.Redis, cfg.Redis.LeaderIndex)

	if cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
		collector := redisprometheus.NewCollector(metrics.Namespace, "election", client)
		if err := prometheus.Register(collector); err != nil {
			logger.Debug("failed to register redis election collector: already registered", "error", err)
		}
	}

	return NewElection(client, cfg.Distributed.TTL, logger), nil
}

func (e *Election) IsLeader() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isLeader
}

// CheckInterval is how often leadership is renewed and observed.
func (e *Election) CheckInterval() time.Duration {
	return e.TTL / 3
}

func (e *Election) campaign(ctx context.Context) {
	ok, err := e.Redis.SetNX(ctx, leaderKey, e.InstanceID, e.TTL).Result()
	if err != nil {
		e.logger.Error("failed to campaign for leadership", "error", err, "instance", e.InstanceID)
		return
	}

	leader := ok
	if !ok {
		current, err := e.Redis.Get(ctx, leaderKey).Result()
		if err == nil && current == e.InstanceID {
			leader = true
			e.Redis.Expire(ctx, leaderKey, e.TTL)
		}
	}

	e.mu.Lock()
	wasLeader := e.isLeader
	e.isLeader = leader
	e.mu.Unlock()

	if leader && !wasLeader {
		e.logger.Info("became leader", "instance", e.InstanceID)
		metrics.IsLeader.Set(1)
		metrics.LeadershipChanges.Inc()
	} else if !leader && wasLeader {
		e.logger.Info("lost leadership", "instance", e.InstanceID)
		metrics.IsLeader.Set(0)
		metrics.LeadershipChanges.Inc()
	}
}

// Start campaigns until ctx is cancelled, then gives the lease up.
func (e *Election) Start(ctx context.Context) {
	ticker := time.NewTicker(e.CheckInterval())
	defer ticker.Stop()

	e.campaign(ctx)

	for {
		select {
		case <-ctx.Done():
			// The run context is gone; resign on a short one of our own.
			resignCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			e.resign(resignCtx)
			cancel()
			return
		case <-ticker.C:
			e.campaign(ctx)
		}
	}
}

func (e *Election) resign(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isLeader {
		return
	}

	if err := e.Redis.Eval(ctx, resignScript, []string{leaderKey}, e.InstanceID).Err(); err != nil {
		e.logger.Error("failed to resign leadership", "error", err, "instance", e.InstanceID)
	} else {
		e.logger.Info("resigned leadership", "instance", e.InstanceID)
		metrics.IsLeader.Set(0)
	}

	e.isLeader = false
}
