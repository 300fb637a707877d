package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements Limiter using Redis sorted sets and a sliding window.
// Counters survive restarts and are shared between instances.
type RedisLimiter struct {
	client *redis.Client
	log    *slog.Logger
	now    func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a Redis-backed Limiter implementation.
func NewRedisLimiter(client *redis.Client, log *slog.Logger) *RedisLimiter {
	if log == nil {
		log = slog.Default()
	}
	return &RedisLimiter{client: client, log: log, now: time.Now}
}

// slidingWindow trims the window, records the hit only when it fits and reports
// {allowed, count, oldest score}. Running it as one script keeps concurrent checks
// from overshooting the limit.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[2])
local count = redis.call('ZCARD', key)
local allowed = 0
if count < tonumber(ARGV[3]) then
	redis.call('ZADD', key, ARGV[1], ARGV[5])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, ARGV[4])
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local first = ARGV[1]
if oldest[2] then
	first = oldest[2]
end
return {allowed, count, tonumber(first)}
`)

// Check evaluates the rate limit for a given key using a sliding window algorithm.
// Rejected hits are not recorded.
func (l *RedisLimiter) Check(ctx context.Context, key string, rule Rule) (*Result, error) {
	if l.client == nil {
		return nil, errors.New("redis client is not configured for rate limiting")
	}

	now := l.now()
	if rule.Limit <= 0 {
		return &Result{Allowed: false, ResetAt: now.Add(rule.Window)}, nil
	}

	nowMs := now.UnixMilli()
	cutoff := now.Add(-rule.Window).UnixMilli()

	raw, err := slidingWindow.Run(ctx, l.client, []string{"ratelimit:" + key},
		nowMs,
		"("+strconv.FormatInt(cutoff, 10),
		rule.Limit,
		(rule.Window * 2).Milliseconds(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		l.log.Error("rate limiter script failed", slog.String("key", key), slog.Any("error", err))
		return nil, err
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("rate limiter: unexpected reply %v", raw)
	}

	allowed := raw[0] == 1
	remaining := rule.Limit - int(raw[1])
	if remaining < 0 {
		remaining = 0
	}
	if !allowed {
		l.log.Debug("rate limit exceeded", slog.String("key", key), slog.Int("limit", rule.Limit))
	}

	return &Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   time.UnixMilli(raw[2]).Add(rule.Window),
	}, nil
}
