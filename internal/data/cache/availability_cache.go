package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stay-concierge/internal/domain/availability"
	"stay-concierge/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AvailabilityCache keeps computed calendars per property and window.
// Invalidate drops every window of a property at once.
type AvailabilityCache interface {
	Get(ctx context.Context, propertyID uuid.UUID, from, to time.Time) ([]availability.BlockedDate, bool, error)
	Set(ctx context.Context, propertyID uuid.UUID, from, to time.Time, dates []availability.BlockedDate) error
	Invalidate(ctx context.Context, propertyID uuid.UUID) error
}

type redisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewAvailabilityCache returns the Redis cache, or a no-op cache when client is nil.
func NewAvailabilityCache(client *redis.Client, ttl time.Duration, log *zap.Logger) AvailabilityCache {
	if client == nil {
		return noopAvailabilityCache{}
	}
	return &redisAvailabilityCache{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("cache", "availability")),
	}
}

func availabilityKey(propertyID uuid.UUID) string {
	return fmt.Sprintf("availability:%s", propertyID.String())
}

func windowField(from, to time.Time) string {
	return utils.FormatDate(from) + ":" + utils.FormatDate(to)
}

func (c *redisAvailabilityCache) Get(ctx context.Context, propertyID uuid.UUID, from, to time.Time) ([]availability.BlockedDate, bool, error) {
	val, err := c.client.HGet(ctx, availabilityKey(propertyID), windowField(from, to)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get calendar from redis: %w", err)
	}

	var dates []availability.BlockedDate
	if err := json.Unmarshal([]byte(val), &dates); err != nil {
		return nil, false, fmt.Errorf("unmarshal calendar: %w", err)
	}

	return dates, true, nil
}

func (c *redisAvailabilityCache) Set(ctx context.Context, propertyID uuid.UUID, from, to time.Time, dates []availability.BlockedDate) error {
	if dates == nil {
		dates = []availability.BlockedDate{}
	}
	data, err := json.Marshal(dates)
	if err != nil {
		return fmt.Errorf("marshal calendar: %w", err)
	}

	key := availabilityKey(propertyID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, windowField(from, to), data)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set calendar in redis: %w", err)
	}

	return nil
}

func (c *redisAvailabilityCache) Invalidate(ctx context.Context, propertyID uuid.UUID) error {
	if err := c.client.Del(ctx, availabilityKey(propertyID)).Err(); err != nil {
		c.log.Warn("Failed to invalidate calendar", zap.Error(err), zap.String("property_id", propertyID.String()))
		return fmt.Errorf("delete calendar from redis: %w", err)
	}
	return nil
}

type noopAvailabilityCache struct{}

func (noopAvailabilityCache) Get(context.Context, uuid.UUID, time.Time, time.Time) ([]availability.BlockedDate, bool, error) {
	return nil, false, nil
}

func (noopAvailabilityCache) Set(context.Context, uuid.UUID, time.Time, time.Time, []availability.BlockedDate) error {
	return nil
}

func (noopAvailabilityCache) Invalidate(context.Context, uuid.UUID) error {
	return nil
}
