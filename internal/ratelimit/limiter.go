package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the caller's counter and starts the window
// on the first hit. Running it as one script keeps INCR and PEXPIRE atomic,
// so a counter can never be left without an expiry.
var fixedWindowScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('PTTL', KEYS[1])
	return {current, ttl}
`)

// Limiter caps how many tracking events one client may submit per window.
// Counters live in Redis so every instance shares them.
type Limiter struct {
	client      *redis.Client
	prefix      string
	maxRequests int
	window      time.Duration
}

// NewFixedWindowLimiter creates a limiter allowing maxRequests per window
// for each key. prefix namespaces the Redis keys, e.g. "ratelimit:track".
func NewFixedWindowLimiter(client *redis.Client, prefix string, maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		client:      client,
		prefix:      prefix,
		maxRequests: maxRequests,
		window:      window,
	}
}

func (l *Limiter) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", l.prefix, key)
}

// Allow counts one request for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()

	result, err := fixedWindowScript.Run(
		ctx,
		l.client,
		[]string{l.redisKey(key)},
		l.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(result) != 2 {
		return false, 0, time.Time{}, fmt.Errorf("unexpected rate limit result: %v", result)
	}

	current, ttlMillis := int(result[0]), result[1]
	if ttlMillis < 0 {
		ttlMillis = l.window.Milliseconds()
	}

	remaining := l.maxRequests - current
	if remaining < 0 {
		remaining = 0
	}

	return current <= l.maxRequests, remaining, now.Add(time.Duration(ttlMillis) * time.Millisecond), nil
}

// MaxRequests returns the maximum number of requests allowed per window
func (l *Limiter) MaxRequests() int {
	return l.maxRequests
}
