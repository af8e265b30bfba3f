// Package sequence provides bill-number counters that live outside the
// record store.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/haulage/store"
)

// DefaultKey is the Redis key holding the counter.
const DefaultKey = "haulage:bill_counter"

// Redis is a bill-number counter driven by INCR, shared by every process
// pointed at the same Redis.
type Redis struct {
	rdb redis.Cmdable
	key string
}

var _ store.Sequence = (*Redis)(nil)

// NewRedis returns a counter stored under key (DefaultKey when empty).
func NewRedis(rdb redis.Cmdable, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{rdb: rdb, key: key}
}

// CurrentBillNumber returns the last number handed out.
func (s *Redis) CurrentBillNumber(ctx context.Context) (int64, error) {
	n, err := s.rdb.Get(ctx, s.key).Int64()
	if errors.Is(err, redis.Nil) {
		return store.InitialBillNumber, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sequence/redis: get: %w", err)
	}
	return n, nil
}

// NextBillNumber seeds the key on first use and increments it atomically.
func (s *Redis) NextBillNumber(ctx context.Context) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, s.key, store.InitialBillNumber, 0)
		incr = pipe.Incr(ctx, s.key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sequence/redis: incr: %w", err)
	}
	return incr.Val(), nil
}

// SetBillNumber overwrites the counter.
func (s *Redis) SetBillNumber(ctx context.Context, n int64) error {
	if err := s.rdb.Set(ctx, s.key, n, 0).Err(); err != nil {
		return fmt.Errorf("sequence/redis: set: %w", err)
	}
	return nil
}
