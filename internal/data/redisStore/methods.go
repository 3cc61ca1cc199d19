package redisStore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxWatchRetries bounds optimistic retries when another writer touches the same list.
const maxWatchRetries = 8

var ErrConflict = errors.New("redis: too many concurrent writers")

func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, key).Result()
	return count > 0, err
}

func (s *Store) ListGetAll(ctx context.Context, key string) ([]string, error) {
	return s.client.LRange(ctx, key, 0, -1).Result()
}

// ListAppendAfterLast appends the value built from the list's current tail. The read and
// the push happen under WATCH, so two writers can never both build from the same tail.
// build receives "" when the list is empty.
func (s *Store) ListAppendAfterLast(ctx context.Context, key string, ttl time.Duration, build func(last string) (string, error)) (string, error) {
	var appended string
	txf := func(tx *redis.Tx) error {
		last, err := tx.LIndex(ctx, key, -1).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		value, err := build(last)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, key, value)
			if ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
			return nil
		})
		if err == nil {
			appended = value
		}
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return appended, err
	}
	return "", ErrConflict
}
