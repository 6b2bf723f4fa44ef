package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladimiradmaev/nutrition-bot/internal/config"
)

// RedisManager keeps message markers and day counters in Redis so that
// several bot instances share them
type RedisManager struct {
	client *redis.Client
}

// NewRedisManager creates a new Redis-based state manager
func NewRedisManager(cfg config.RedisConfig) (*RedisManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisManagerWithClient(client), nil
}

// NewRedisManagerWithClient wraps an existing client
func NewRedisManagerWithClient(client *redis.Client) *RedisManager {
	return &RedisManager{client: client}
}

// MarkProcessed sets the marker only if it does not exist yet
func (m *RedisManager) MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := m.client.SetNX(ctx, processedPrefix+id, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message processed: %w", err)
	}
	return ok, nil
}

// IncrDaily increments the counter and refreshes its expiry
func (m *RedisManager) IncrDaily(ctx context.Context, key, day string) (int64, error) {
	k := dailyKey(key, day)

	pipe := m.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, DailyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment daily counter: %w", err)
	}
	return incr.Val(), nil
}

// DailyCount gets the counter, 0 when it does not exist
func (m *RedisManager) DailyCount(ctx context.Context, key, day string) (int64, error) {
	n, err := m.client.Get(ctx, dailyKey(key, day)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read daily counter: %w", err)
	}
	return n, nil
}

// Close closes the Redis connection
func (m *RedisManager) Close() error {
	return m.client.Close()
}
