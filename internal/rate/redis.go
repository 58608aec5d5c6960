package rate

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGate keeps counters in Redis so every replica shares one window.
type RedisGate struct {
	redis  redis.UniversalClient
	rules  Rules
	prefix string
}

// NewRedisGate returns a gate over client. prefix namespaces its keys.
func NewRedisGate(client redis.UniversalClient, rules Rules, prefix string) *RedisGate {
	if prefix == "" {
		prefix = "otpauth:rl"
	}
	return &RedisGate{redis: client, rules: rules, prefix: prefix}
}

// Admit increments the counter for key and denies once it passes the limit.
func (g *RedisGate) Admit(ctx context.Context, class Class, key string) (Decision, error) {
	rule, ok := g.rules[class]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	k := g.key(class, key)

	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	if _, err := g.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pttl = pipe.PTTL(ctx, k)
		return nil
	}); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	count, ttl := incr.Val(), pttl.Val()
	if ttl < 0 {
		// A fresh counter, or one whose expiry was lost: start the window now.
		if err := g.redis.PExpire(ctx, k, rule.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		ttl = rule.Window
	}
	return decide(rule, count, ceilSecond(ttl)), nil
}

// ceilSecond rounds a positive remaining ttl up to whole seconds so a window
// about to close never reports zero.
func ceilSecond(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	return time.Duration(math.Ceil(ttl.Seconds())) * time.Second
}

func (g *RedisGate) key(class Class, client string) string {
	return g.prefix + ":" + string(class) + ":" + client
}
