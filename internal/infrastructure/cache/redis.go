package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SapotaDA/TaskFlow/pkg/config"
	"github.com/SapotaDA/TaskFlow/pkg/logger"
)

var (
	// ErrCacheMiss is returned when a key is absent
	ErrCacheMiss = errors.New("cache: key not found")
)

const (
	keyPrefix        = "taskflow:"
	unreadCountTTL   = 5 * time.Minute
	operationTimeout = 2 * time.Second
)

// RedisClient caches derived notification state. Losing it is harmless:
// every read falls back to the store.
type RedisClient struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisClient(cfg *config.Config, log *logger.Logger) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client, logger: log}, nil
}

func unreadCountKey(userID uuid.UUID) string {
	return keyPrefix + "notifications:unread:" + userID.String()
}

// GetUnreadCount returns the cached unread-notification count for a user
func (r *RedisClient) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	val, err := r.client.Get(ctx, unreadCountKey(userID)).Result()
	if err == redis.Nil {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, ErrCacheMiss
	}
	return count, nil
}

// SetUnreadCount stores the unread-notification count for a user
func (r *RedisClient) SetUnreadCount(ctx context.Context, userID uuid.UUID, count int) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	if err := r.client.Set(ctx, unreadCountKey(userID), count, unreadCountTTL).Err(); err != nil {
		r.logger.Warn("Failed to cache unread count", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// InvalidateUnreadCount drops the cached count after any notification write
func (r *RedisClient) InvalidateUnreadCount(ctx context.Context, userID uuid.UUID) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	if err := r.client.Del(ctx, unreadCountKey(userID)).Err(); err != nil {
		r.logger.Warn("Failed to invalidate unread count", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// Close shuts down the redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}
