package utils

import (
	"techrobotics-site/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the configured redis, through sentinel when one is set.
func NewRedisClient(cfg *config.RedisConfig, db int) *redis.Client {
	if cfg.Sentinel != nil {
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.Sentinel.MasterName,
			SentinelAddrs:    cfg.Sentinel.SentinelAddresses,
			SentinelUsername: cfg.Sentinel.SentinelUsername,
			SentinelPassword: cfg.Sentinel.SentinelPassword,
			Username:         cfg.Username,
			Password:         cfg.Password,
			DB:               db,
			MinIdleConns:     2,
		})
	}

	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           db,
		MinIdleConns: 2,
	})
}
