package query

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/furniture-storefront/pkg/logger"
)

// RedisStore keeps query results in redis under a per-session namespace
type RedisStore struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisStore creates a store writing keys as "<namespace>:<key>"
func NewRedisStore(client *redis.Client, namespace string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, namespace: namespace, ttl: ttl}
}

func (s *RedisStore) key(k Key) string {
	return s.namespace + ":" + k.Encode()
}

func (s *RedisStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key Key, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	exact := s.key(key)
	if err := s.client.Del(ctx, exact).Err(); err != nil {
		return err
	}
	return s.deleteMatching(ctx, escapeGlob(exact)+":*")
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.deleteMatching(ctx, escapeGlob(s.namespace)+":*")
}

func (s *RedisStore) deleteMatching(ctx context.Context, pattern string) error {
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}

		logger.Logger.Debug().
			Int("count", len(keys)).
			Str("pattern", pattern).
			Msg("Cache invalidated")
	}
	return nil
}
