package admin

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptCounter is the subset of the redis client the login limiter needs.
type AttemptCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LoginLimiter blocks a client after too many failed logins within a window.
// Redis errors never block a login.
type LoginLimiter struct {
	client      AttemptCounter
	prefix      string
	maxAttempts int64
	window      time.Duration
}

func NewLoginLimiter(client AttemptCounter, prefix string, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		client:      client,
		prefix:      prefix,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func (l *LoginLimiter) key(ip, username string) string {
	return l.prefix + "login:fail:" + ip + ":" + strings.ToLower(username)
}

// Blocked reports whether the ip/username pair has used up its attempts.
func (l *LoginLimiter) Blocked(ctx context.Context, ip, username string) bool {
	if l == nil {
		return false
	}
	count, err := l.client.Get(ctx, l.key(ip, username)).Int64()
	if err != nil {
		return false
	}
	return count >= l.maxAttempts
}

// Fail records a failed attempt and returns the count within the window.
func (l *LoginLimiter) Fail(ctx context.Context, ip, username string) (int64, error) {
	if l == nil {
		return 0, nil
	}
	return incrWithTTL(ctx, l.client, l.key(ip, username), l.window)
}

func (l *LoginLimiter) Reset(ctx context.Context, ip, username string) {
	if l == nil {
		return
	}
	_ = l.client.Del(ctx, l.key(ip, username)).Err()
}

func incrWithTTL(ctx context.Context, client AttemptCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}
