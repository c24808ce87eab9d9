package draft

import (
	"context"
	stderrors "errors"
	"time"

	"listings-console/internal/common/database"

	"github.com/redis/go-redis/v9"
)

// RedisKV backs the draft slot with Redis through the shared client wrapper.
type RedisKV struct {
	client *database.RedisClient
}

func NewRedisKV(client *database.RedisClient) *RedisKV {
	return &RedisKV{client: client}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key)
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl)
}

func (r *RedisKV) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key)
}

func (r *RedisKV) Exists(ctx context.Context, key string) (bool, error) {
	return r.client.Exists(ctx, key)
}
