package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrKeyNotFound is returned by Get for a missing or expired key.
var ErrKeyNotFound = errors.New("key does not exist")

type RedisRepositories struct {
	Client *redis.Client
}

type IRedisRepositories interface {
	Set(key string, data []byte, expiredTime time.Duration, ctx context.Context) error
	Get(key string, ctx context.Context) ([]byte, error)
	Del(key string, ctx context.Context) error
	Expire(key string, expiredTime time.Duration, ctx context.Context) error
	TTL(key string, ctx context.Context) (time.Duration, error)
	ScanKeys(pattern string, ctx context.Context) ([]string, error)
}

func NewRedisRepositories(client *redis.Client) *RedisRepositories {
	return &RedisRepositories{
		Client: client,
	}
}

func (r *RedisRepositories) Set(key string, data []byte, expiredTime time.Duration, ctx context.Context) error {
	return r.Client.Set(ctx, key, data, expiredTime).Err()
}

func (r *RedisRepositories) Get(key string, ctx context.Context) ([]byte, error) {
	result, err := r.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrKeyNotFound
	} else if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *RedisRepositories) Del(key string, ctx context.Context) error {
	return r.Client.Del(ctx, key).Err()
}

func (r *RedisRepositories) Expire(key string, expiredTime time.Duration, ctx context.Context) error {
	return r.Client.Expire(ctx, key, expiredTime).Err()
}

func (r *RedisRepositories) TTL(key string, ctx context.Context) (time.Duration, error) {
	duration, err := r.Client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	return duration, nil
}

// ScanKeys walks the keyspace with SCAN and returns every key matching pattern.
func (r *RedisRepositories) ScanKeys(pattern string, ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		batch, nextCursor, err := r.Client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)

		// Break if SCAN iteration is complete
		if nextCursor == 0 {
			break
		}
		cursor = nextCursor
	}

	return keys, nil
}
