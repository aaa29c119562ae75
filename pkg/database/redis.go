package database

import (
	"context"
	"fmt"
	"time"

	"stay-concierge/pkg/utils"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis returns nil, nil when no address is configured.
func InitRedis(ctx context.Context, config utils.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	if config.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	err := retry.Do(func() error {
		return client.Ping(ctx).Err()
	},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			log.Warn("Redis ping failed, retrying", zap.Uint("attempt", attempt+1), zap.Error(err))
		}),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", config.Addr, err)
	}

	return client, nil
}
