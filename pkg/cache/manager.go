package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidTTL is returned by Set for a non-positive TTL.
	ErrInvalidTTL = errors.New("cache ttl must be positive")
)

// Manager handles caching operations with Redis backend.
type Manager struct {
	redis *redis.Client
}

// NewManager creates a new cache manager with Redis backend.
func NewManager(redisClient *redis.Client) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{
		redis: redisClient,
	}
}

// Get reads key and its remaining TTL in one round trip.
// Returns ErrCacheMiss if the key doesn't exist.
func (m *Manager) Get(ctx context.Context, key Key) (*Entry, error) {
	cacheKey := key.String()

	pipe := m.redis.Pipeline()
	getCmd := pipe.Get(ctx, cacheKey)
	ttlCmd := pipe.PTTL(ctx, cacheKey)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get %s: %w", cacheKey, err)
	}

	data, err := getCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(cacheKey).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get %s: %w", cacheKey, err)
	}

	entry := &Entry{Key: cacheKey, Data: data}
	// PTTL reports -1 for keys without expiry and -2 for missing keys.
	if ttl := ttlCmd.Val(); ttl > 0 {
		entry.Expires = time.Now().Add(ttl)
	}

	CacheHits.WithLabelValues(cacheKey).Inc()
	return entry, nil
}

// Set stores data under key; Redis drops it after ttl.
func (m *Manager) Set(ctx context.Context, key Key, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	cacheKey := key.String()
	if err := m.redis.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set %s: %w", cacheKey, err)
	}

	CachePayloadBytes.WithLabelValues(cacheKey).Set(float64(len(data)))
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (m *Manager) Delete(ctx context.Context, key Key) error {
	cacheKey := key.String()

	if err := m.redis.Del(ctx, cacheKey).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del %s: %w", cacheKey, err)
	}

	CacheInvalidations.WithLabelValues(cacheKey).Inc()
	return nil
}

// Ping checks connectivity to Redis.
func (m *Manager) Ping(ctx context.Context) error {
	if err := m.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
