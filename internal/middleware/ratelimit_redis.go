// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimitStore implements RateLimitStore using Redis.
// It uses a fixed window counter (INCR + EXPIRE), so limits are shared
// across all API instances pointing at the same Redis.
//
// The store fails open: if Redis is unreachable, requests are allowed
// rather than blocked. Fail-open events are logged and counted when a
// metrics instance is attached.
type RedisRateLimitStore struct {
	client  *redis.Client
	logger  *slog.Logger
	metrics *Metrics
}

// NewRedisRateLimitStore creates a rate limit store backed by the given Redis client.
func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{
		client: client,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger used for fail-open events. Returns the store for chaining.
func (s *RedisRateLimitStore) WithLogger(logger *slog.Logger) *RedisRateLimitStore {
	s.logger = logger
	return s
}

// WithMetrics sets the metrics instance used to count Redis errors. Returns the store for chaining.
func (s *RedisRateLimitStore) WithMetrics(m *Metrics) *RedisRateLimitStore {
	s.metrics = m
	return s
}

// Allow checks if a request from the given key should be allowed.
// Implements the RateLimitStore interface.
func (s *RedisRateLimitStore) Allow(ctx context.Context, key string, config RateLimitConfig) (bool, int) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// Setting the expiry only on the first increment keeps the window fixed;
	// NX makes the subsequent calls no-ops.
	pipe.ExpireNX(ctx, key, config.WindowDuration)

	if _, err := pipe.Exec(ctx); err != nil {
		s.failOpen(ctx, key, err)
		return true, 0
	}

	count := incr.Val()
	if count <= int64(config.RequestsPerWindow) {
		return true, 0
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		s.failOpen(ctx, key, err)
		return true, 0
	}

	retryAfter := int(ttl.Seconds())
	if retryAfter <= 0 {
		retryAfter = 1
	}
	return false, retryAfter
}

func (s *RedisRateLimitStore) failOpen(ctx context.Context, key string, err error) {
	s.logger.WarnContext(ctx, "rate limit store unavailable, failing open",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
	if s.metrics != nil {
		s.metrics.IncRateLimitRedisErrors()
	}
}
