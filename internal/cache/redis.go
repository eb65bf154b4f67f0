package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisClient is a Store backed by Redis. Expiry is delegated to Redis key
// TTLs, so an expired key simply reads as absent.
type RedisClient struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects to redisURL and verifies the connection.
func NewRedisClient(redisURL, prefix string, ttl time.Duration) (*RedisClient, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisFromClient(client, prefix, ttl), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisClient {
	return &RedisClient{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// WithTTL returns a store sharing the connection and prefix of r whose
// entries live for ttl.
func (r *RedisClient) WithTTL(ttl time.Duration) *RedisClient {
	return &RedisClient{client: r.client, prefix: r.prefix, ttl: ttl}
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Get reads and decodes the list stored under key. Redis errors are logged
// and reported as a miss so callers fall back to fetching.
func (r *RedisClient) Get(ctx context.Context, key string) ([]models.NewsItem, bool) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Get().Warn().Err(err).Str("key", key).Msg("redis get failed")
		return nil, false
	}

	var items []models.NewsItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Get().Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		r.Delete(ctx, key)
		return nil, false
	}
	return items, true
}

// Put encodes items and stores them with the cache TTL.
func (r *RedisClient) Put(ctx context.Context, key string, items []models.NewsItem) {
	data, err := json.Marshal(items)
	if err != nil {
		logger.Get().Error().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		logger.Get().Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

// Delete removes key.
func (r *RedisClient) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		logger.Get().Warn().Err(err).Str("key", key).Msg("redis del failed")
	}
}

// Clear removes every key under the configured prefix.
func (r *RedisClient) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning keys: %w", err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("error deleting keys: %w", err)
		}
	}

	return nil
}
