package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis returns nil when no address is configured; callers fall back to
// in-process state.
func InitRedis(ctx context.Context, cfg *Config) (*redis.Client, error) {
	if cfg.Redis.Address == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: 50,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
