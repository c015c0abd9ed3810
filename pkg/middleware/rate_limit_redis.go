package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter shares fixed-window counters between instances.
type RedisRateLimiter struct {
	rdb    redis.Scripter
	prefix string
}

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

func NewRedisRateLimiter(rdb redis.Scripter, prefix string) *RedisRateLimiter {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisRateLimiter{rdb: rdb, prefix: prefix}
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	ms := window.Milliseconds()
	if ms <= 0 {
		ms = time.Minute.Milliseconds()
	}

	res, err := fixedWindowScript.Run(ctx, rl.rdb, []string{rl.prefix + ":" + key}, ms).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script: %w", err)
	}

	count, ttl, err := parseWindowResult(res)
	if err != nil {
		return false, 0, err
	}
	if count > int64(limit) {
		if ttl < 0 {
			ttl = ms
		}
		return false, time.Duration(ttl) * time.Millisecond, nil
	}
	return true, 0, nil
}

// Stop is a no-op; the Redis client is owned by the client bundle.
func (rl *RedisRateLimiter) Stop() {}

func parseWindowResult(res any) (count, ttl int64, err error) {
	values, ok := res.([]any)
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit script result %T", res)
	}
	if count, err = toInt64(values[0]); err != nil {
		return 0, 0, err
	}
	if ttl, err = toInt64(values[1]); err != nil {
		return 0, 0, err
	}
	return count, ttl, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected rate limit value type %T", v)
	}
}
