package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Action names a rate-limited operation.
type Action string

const (
	ActionStart  Action = "quiz_start"
	ActionAnswer Action = "quiz_answer"
)

// Limit is a fixed-window allowance.
type Limit struct {
	Max    int64
	Window time.Duration
}

// DefaultLimits apply per identifier: a client address for starts, a
// session id for answers.
var DefaultLimits = map[Action]Limit{
	ActionStart:  {Max: 50, Window: time.Hour},
	ActionAnswer: {Max: 1000, Window: time.Hour},
}

// Decision is the outcome of a limit check.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter checks and counts one request.
type Limiter interface {
	Allow(ctx context.Context, action Action, identifier string) (Decision, error)
}

// RateLimitError carries how long the caller should wait.
type RateLimitError struct {
	Action     Action
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "Rate limit exceeded. Please try again later."
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// RedisLimiter counts with INCR under ratelimit:<action>:<identifier>; the
// first hit in a window sets the expiry.
type RedisLimiter struct {
	client  *redis.Client
	limits  map[Action]Limit
	enabled bool
}

// NewRedisLimiter returns a limiter using DefaultLimits. A disabled limiter
// allows everything without touching Redis.
func NewRedisLimiter(client *redis.Client, enabled bool) *RedisLimiter {
	return &RedisLimiter{client: client, limits: DefaultLimits, enabled: enabled}
}

func (l *RedisLimiter) Allow(ctx context.Context, action Action, identifier string) (Decision, error) {
	limit, ok := l.limits[action]
	if !l.enabled || l.client == nil || !ok {
		return Decision{Allowed: true, Remaining: limit.Max}, nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s", action, identifier)
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, limit.Window)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("session: rate limit %s: %w", action, err)
	}

	count := incr.Val()
	if count > limit.Max {
		retry := ttl.Val()
		if retry <= 0 {
			retry = limit.Window
		}
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}
	return Decision{Allowed: true, Remaining: limit.Max - count}, nil
}
