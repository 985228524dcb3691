package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "rl:send:"

// SendLimiter is a per-caller fixed-window counter guarding chat sends.
// The check runs before any remote call, so rejected requests consume no
// thread or run resources.
type SendLimiter struct {
	client *Client
	window time.Duration
	burst  int
}

// NewSendLimiter creates a send limiter allowing burst sends per window.
func NewSendLimiter(client *Client, window time.Duration, burst int) *SendLimiter {
	return &SendLimiter{
		client: client,
		window: window,
		burst:  burst,
	}
}

// Allow counts one send attempt and reports whether it is admitted.
// Returns (allowed, remaining, error).
func (l *SendLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	fullKey := rateLimitPrefix + key

	pipe := l.client.rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, l.window)

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return false, 0, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count := incrCmd.Val()
	remaining := l.burst - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return count <= int64(l.burst), remaining, nil
}

// Reset clears the counter for a key
func (l *SendLimiter) Reset(ctx context.Context, key string) error {
	return l.client.rdb.Del(ctx, rateLimitPrefix+key).Err()
}
