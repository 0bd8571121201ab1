package store

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisNamespace = "artbook:"

// RedisStore is a Local backed by redis. Keys are namespaced so the
// instance can be shared with other data such as FCM tokens.
type RedisStore struct {
	rd *redis.Client
}

func NewRedisStore(rd *redis.Client) *RedisStore {
	return &RedisStore{rd: rd}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rd.Get(ctx, redisNamespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return r.rd.Set(ctx, redisNamespace+key, value, 0).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.rd.Del(ctx, redisNamespace+key).Err()
}

func (r *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	var cursor uint64
	for {
		batch, next, err := r.rd.Scan(ctx, cursor, redisNamespace+prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, redisNamespace))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}
