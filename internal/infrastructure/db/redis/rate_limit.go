package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitStore implements the shared fixed-window counter on Redis.
// INCR and EXPIRE NX are pipelined into one round trip, so concurrent
// processes see a single atomic check-and-increment with a TTL that is set
// exactly once per window.
type RateLimitStore struct {
	client *redis.Client
}

// NewRateLimitStore wraps the given Redis client.
func NewRateLimitStore(client *redis.Client) *RateLimitStore {
	return &RateLimitStore{client: client}
}

// Hit records one request under key and returns the count observed in the
// current window, including this request.
func (s *RateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limit hit: %w", err)
	}
	return incr.Val(), nil
}
