package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/models"

	"github.com/redis/go-redis/v9"
)

const activeUsersKey = "presence:active"

// RedisPresenceClient is the subset of the redis client the tracker uses.
type RedisPresenceClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HLen(ctx context.Context, key string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

type RedisTracker struct {
	client RedisPresenceClient
	logger *slog.Logger
	now    func() time.Time
}

func NewRedisTracker(client RedisPresenceClient, logger *slog.Logger) *RedisTracker {
	return &RedisTracker{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

func (r *RedisTracker) MarkActive(ctx context.Context, user models.User) error {
	defer observe(metrics.StoreTypeRedis, metrics.PresenceOperationMarkActive, time.Now())

	data, err := json.Marshal(activeUserFrom(user, r.now()))
	if err != nil {
		return fmt.Errorf("failed to marshal active user: %w", err)
	}

	if err := r.client.HSet(ctx, activeUsersKey, user.ID, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to mark user active: %w", err)
	}
	return nil
}

func (r *RedisTracker) MarkInactive(ctx context.Context, userID string) error {
	defer observe(metrics.StoreTypeRedis, metrics.PresenceOperationMarkInactive, time.Now())

	if err := r.client.HDel(ctx, activeUsersKey, userID).Err(); err != nil {
		return fmt.Errorf("failed to mark user inactive: %w", err)
	}
	return nil
}

func (r *RedisTracker) ListActive(ctx context.Context) ([]ActiveUser, error) {
	defer observe(metrics.StoreTypeRedis, metrics.PresenceOperationList, time.Now())

	entries, err := r.client.HGetAll(ctx, activeUsersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}

	users := make([]ActiveUser, 0, len(entries))
	for id, raw := range entries {
		var user ActiveUser
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			r.logger.Error("error unmarshalling active user", "id", id, "error", err)
			continue
		}
		users = append(users, user)
	}

	metrics.ActiveUsers.WithLabelValues(metrics.StoreTypeRedis).Set(float64(len(users)))
	sortByLastSeen(users)
	return users, nil
}

func (r *RedisTracker) Count(ctx context.Context) (int, error) {
	defer observe(metrics.StoreTypeRedis, metrics.PresenceOperationCount, time.Now())

	count, err := r.client.HLen(ctx, activeUsersKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	metrics.ActiveUsers.WithLabelValues(metrics.StoreTypeRedis).Set(float64(count))
	return int(count), nil
}

// Sweep removes entries last seen before olderThan. Entries that fail to decode are removed too.
func (r *RedisTracker) Sweep(ctx context.Context, olderThan time.Time) (int, error) {
	defer observe(metrics.StoreTypeRedis, metrics.PresenceOperationSweep, time.Now())

	entries, err := r.client.HGetAll(ctx, activeUsersKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read active users: %w", err)
	}

	var stale []string
	for id, raw := range entries {
		var user ActiveUser
		if err := json.Unmarshal([]byte(raw), &user); err != nil || user.LastSeen.Before(olderThan) {
			stale = append(stale, id)
		}
	}

	if len(stale) == 0 {
		return 0, nil
	}

	removed, err := r.client.HDel(ctx, activeUsersKey, stale...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to remove stale users: %w", err)
	}
	return int(removed), nil
}

func (r *RedisTracker) Close() error {
	return r.client.Close()
}
