package presence

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"techrobotics-site/internal/config"
	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/models"
	"techrobotics-site/internal/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisprometheus/v9"
)

//go:generate mockgen -source=tracker.go -destination=../mocks/presence.go -package=mocks

// Tracker records which users are currently signed in.
type Tracker interface {
	MarkActive(ctx context.Context, user models.User) error
	MarkInactive(ctx context.Context, userID string) error
	ListActive(ctx context.Context) ([]ActiveUser, error)
	Count(ctx context.Context) (int, error)
	Sweep(ctx context.Context, olderThan time.Time) (int, error)
	Close() error
}

type ActiveUser struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	LastSeen time.Time   `json:"last_seen"`
}

func activeUserFrom(user models.User, now time.Time) ActiveUser {
	return ActiveUser{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		LastSeen: now,
	}
}

// sortByLastSeen orders most recent first.
func sortByLastSeen(users []ActiveUser) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].LastSeen.Equal(users[j].LastSeen) {
			return users[i].ID < users[j].ID
		}
		return users[i].LastSeen.After(users[j].LastSeen)
	})
}

func observe(store, operation string, start time.Time) {
	metrics.PresenceOperationDuration.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
}

// NewTracker returns the tracker named by presence.store.
func NewTracker(cfg *config.Config, logger *slog.Logger) (Tracker, error) {
	switch cfg.Presence.Store {
	case "redis":
		if cfg.Redis == nil {
			return nil, fmt.Errorf("presence store redis requires a redis configuration")
		}
		client := utils.NewRedisClient(cfg.Redis, cfg.Redis.PresenceIndex)

		if cfg.Server.Debug != nil && cfg.Server.Debug.Enabled {
			collector := redisprometheus.NewCollector(metrics.Namespace, "presence", client)
			if err := prometheus.Register(collector); err != nil {
				logger.Debug("failed to register redis presence collector: already registered", "error", err)
			}
		}

		return NewRedisTracker(client, logger), nil
	case "memory":
		fallthrough
	default:
		return NewMemTracker(), nil
	}
}
