package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// bucketScript refills and takes one token atomically. It returns 1 when the
// request is allowed and 0 otherwise.
var bucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + intervals)
		last_refill = last_refill + (intervals * interval_ms)
	end

	local allowed = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return allowed
`)

// Redis is a token-bucket limiter whose state lives in Redis, shared by
// every process pointing at the same server and prefix.
type Redis struct {
	rdb      *redis.Client
	prefix   string
	burst    int
	interval time.Duration
	ttl      time.Duration
}

// NewRedis creates a Redis limiter granting one token every 1/rps seconds
// up to burst tokens.
func NewRedis(rdb *redis.Client, prefix string, rps float64, burst int) *Redis {
	interval := time.Duration(float64(time.Second) / rps)
	if interval < time.Millisecond {
		interval = time.Millisecond
	}

	ttl := time.Duration(burst) * interval * 5
	if ttl < time.Minute {
		ttl = time.Minute
	}

	return &Redis{
		rdb:      rdb,
		prefix:   prefix,
		burst:    burst,
		interval: interval,
		ttl:      ttl,
	}
}

func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	args := []any{
		time.Now().UnixMilli(),
		l.burst,
		l.interval.Milliseconds(),
		int64(math.Ceil(l.ttl.Seconds())),
	}

	n, err := bucketScript.Run(ctx, l.rdb, []string{l.prefix + ":" + key}, args...).Int64()
	if err != nil {
		return false, fmt.Errorf("ratelimit: redis: %w", err)
	}
	return n == 1, nil
}
