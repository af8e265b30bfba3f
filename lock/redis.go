package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
)

// Redis is a Locker backed by redislock, for several processes sharing one
// store.
type Redis struct {
	client *redislock.Client
	prefix string
	ttl    time.Duration
	retry  redislock.RetryStrategy
	logger *slog.Logger
}

var _ Locker = (*Redis)(nil)

// RedisOption configures a Redis locker.
type RedisOption func(*Redis)

// WithPrefix namespaces lock keys (default "haulage:lock:").
func WithPrefix(p string) RedisOption { return func(r *Redis) { r.prefix = p } }

// WithTTL sets how long a lock survives a crashed holder (default 30s).
func WithTTL(d time.Duration) RedisOption { return func(r *Redis) { r.ttl = d } }

// WithRetry sets the retry strategy used while a lock is held elsewhere.
func WithRetry(s redislock.RetryStrategy) RedisOption { return func(r *Redis) { r.retry = s } }

// WithLogger sets the logger used for release failures.
func WithLogger(l *slog.Logger) RedisOption { return func(r *Redis) { r.logger = l } }

// NewRedis creates a Redis locker. rdb is usually a *redis.Client.
func NewRedis(rdb redislock.RedisClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client: redislock.New(rdb),
		prefix: "haulage:lock:",
		ttl:    30 * time.Second,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire obtains the lock or returns ErrNotObtained once retries run out.
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	l, err := r.client.Obtain(ctx, r.prefix+key, r.ttl, &redislock.Options{RetryStrategy: r.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrNotObtained, key)
	}
	if err != nil {
		return nil, fmt.Errorf("lock: obtain %s: %w", key, err)
	}
	return func() {
		if err := l.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			r.logger.Warn("lock release failed", "key", key, "error", err)
		}
	}, nil
}
